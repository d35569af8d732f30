package share

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/antoine-paris/moontracker-sub002/astro"
	"github.com/antoine-paris/moontracker-sub002/internal/logging"
	"github.com/antoine-paris/moontracker-sub002/internal/observability"
	"github.com/antoine-paris/moontracker-sub002/locations"
	"github.com/antoine-paris/moontracker-sub002/model"
	"github.com/antoine-paris/moontracker-sub002/optics"
	"github.com/antoine-paris/moontracker-sub002/timectrl"
	"github.com/antoine-paris/moontracker-sub002/urlstate"
)

// Config carries the server's collaborators. Log, Metrics, and Provider may
// be nil; Locations and Devices must be set.
type Config struct {
	Log      logging.Logger
	Metrics  *observability.ShareCollector
	Tracer   trace.Tracer
	BaseURL  string
	Location *locations.Directory
	Devices  *optics.Catalog
	Provider astro.Provider
}

// Server is the share-URL HTTP service.
type Server struct {
	log      logging.Logger
	metrics  *observability.ShareCollector
	tracer   trace.Tracer
	baseURL  string
	dir      *locations.Directory
	catalog  *optics.Catalog
	provider astro.Provider
	clock    *timectrl.Controller
	hub      *Hub
	started  time.Time
}

// NewServer wires a server from its collaborators.
func NewServer(cfg Config) *Server {
	log := cfg.Log
	if log == nil {
		log = logging.Noop()
	}
	provider := cfg.Provider
	if provider == nil {
		provider = astro.NewEphemeris()
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer("share")
	}

	def := model.Default()
	clock := timectrl.NewController(time.UnixMilli(def.WhenMs).UTC(), def.SpeedMinPerSec)

	s := &Server{
		log:      log,
		metrics:  cfg.Metrics,
		tracer:   tracer,
		baseURL:  cfg.BaseURL,
		dir:      cfg.Location,
		catalog:  cfg.Devices,
		provider: provider,
		clock:    clock,
		started:  time.Now(),
	}
	s.hub = NewHub(log, cfg.Metrics, clock, s.resolveQuery)
	clock.AddListener(func(t time.Time) {
		s.hub.Broadcast(tickMessage{Type: "tick", WhenMs: t.UnixMilli()})
	})

	if cfg.Metrics != nil && s.dir != nil && s.catalog != nil {
		cfg.Metrics.SetDirectoryCounts(s.dir.Len(), s.catalog.Len())
		s.dir.Subscribe(func(locations.Event) {
			cfg.Metrics.SetDirectoryCounts(s.dir.Len(), s.catalog.Len())
		})
	}

	return s
}

// Hub exposes the websocket hub, mainly so main can Close it on shutdown.
func (s *Server) Hub() *Hub { return s.hub }

// Clock exposes the playback clock; main runs its ticker loop.
func (s *Server) Clock() *timectrl.Controller { return s.clock }

// Routes builds the HTTP handler with per-route instrumentation.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/resolve", s.route("/api/resolve", http.HandlerFunc(s.handleResolve)))
	mux.Handle("/api/share", s.route("/api/share", http.HandlerFunc(s.handleShare)))
	mux.Handle("/api/sky", s.route("/api/sky", http.HandlerFunc(s.handleSky)))
	mux.Handle("/ws", s.hub)
	mux.Handle("/healthz", s.route("/healthz", http.HandlerFunc(s.handleHealthz)))
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	return mux
}

// route threads a request id, a span, and Prometheus instrumentation around
// a handler.
func (s *Server) route(name string, next http.Handler) http.Handler {
	instrumented := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, log := logging.WithRequestLogger(r.Context(), s.log)
		ctx, span := s.tracer.Start(ctx, name,
			trace.WithAttributes(attribute.String("http.method", r.Method)),
		)
		defer span.End()

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		log.Debug(ctx, "request handled",
			logging.String("route", name),
			logging.String("method", r.Method),
			logging.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		)
	})
	if s.metrics == nil {
		return instrumented
	}
	return s.metrics.Middleware(name, instrumented)
}

// resolveQuery decodes share-URL parameters over the default state and
// returns the snapshot plus its canonical permalink.
func (s *Server) resolveQuery(q url.Values) (StatePayload, string) {
	st := model.Default()
	urlstate.ParseQuery(q, s.parseOptions(), urlstate.StateSetters(&st))
	return PayloadFromState(st), s.buildURL(st)
}

func (s *Server) parseOptions() urlstate.ParseOptions {
	opts := urlstate.ParseOptions{}
	if s.dir != nil {
		opts.Locations = s.dir
	}
	if s.catalog != nil {
		opts.Devices = s.catalog
	}
	if s.metrics != nil {
		opts.Observer = s.metrics
	}
	return opts
}

func (s *Server) buildURL(st model.State) string {
	opts := urlstate.BuildOptions{BaseURL: s.baseURL}
	if s.dir != nil {
		opts.Locations = s.dir
	}
	return urlstate.BuildShareURL(st, opts)
}

type resolveResponse struct {
	State StatePayload `json:"state"`
	URL   string       `json:"url"`
}

// handleResolve decodes a share URL. The link to decode arrives either whole
// in the "url" parameter, or as the request's own query parameters.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	if raw := q.Get("url"); raw != "" {
		parsed, err := url.Parse(raw)
		if err != nil {
			http.Error(w, "malformed url parameter", http.StatusBadRequest)
			return
		}
		q = parsed.Query()
	}

	payload, link := s.resolveQuery(q)
	writeJSON(w, http.StatusOK, resolveResponse{State: payload, URL: link})
}

type shareResponse struct {
	URL string `json:"url"`
}

// handleShare mints a permalink from a posted state snapshot.
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload StatePayload
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		http.Error(w, "malformed state payload", http.StatusBadRequest)
		return
	}

	st := payload.ToState()
	link := s.buildURL(st)

	s.hub.Broadcast(permalinkMessage{Type: "permalink", URL: link, State: PayloadFromState(st)})
	writeJSON(w, http.StatusOK, shareResponse{URL: link})
}

type skyBody struct {
	Body                string  `json:"body"`
	AzDeg               float64 `json:"azDeg"`
	AltDeg              float64 `json:"altDeg"`
	RADeg               float64 `json:"raDeg"`
	DecDeg              float64 `json:"decDeg"`
	DistanceKm          float64 `json:"distanceKm"`
	IlluminatedFraction float64 `json:"illuminatedFraction"`
	PhaseAngleDeg       float64 `json:"phaseAngleDeg"`
}

type skyResponse struct {
	WhenMs   int64           `json:"whenMs"`
	Location LocationPayload `json:"location"`
	Bodies   []skyBody       `json:"bodies"`
}

// handleSky answers where bodies sit in the sky for a time and place given
// in share-URL notation. The "body" parameter narrows the body list, comma
// separated; absent means all.
func (s *Server) handleSky(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	st := model.Default()
	urlstate.ParseQuery(q, s.parseOptions(), urlstate.Setters{
		WhenMs:   func(ms int64) { st.WhenMs = ms },
		Location: func(loc model.Location) { st.Location = loc },
	})

	bodies := astro.Bodies
	if raw := q.Get("body"); raw != "" {
		bodies = nil
		for _, name := range strings.Split(raw, ",") {
			bodies = append(bodies, astro.Body(strings.TrimSpace(name)))
		}
	}

	at := time.UnixMilli(st.WhenMs).UTC()
	obs := astro.Observer{LatDeg: st.Location.Lat, LngDeg: st.Location.Lng}

	resp := skyResponse{
		WhenMs: st.WhenMs,
		Location: LocationPayload{
			ID:       st.Location.ID,
			Label:    st.Location.Label,
			Lat:      st.Location.Lat,
			Lng:      st.Location.Lng,
			TimeZone: st.Location.TimeZone,
		},
	}
	for _, b := range bodies {
		state, err := s.provider.Body(r.Context(), b, at, obs)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp.Bodies = append(resp.Bodies, skyBody{
			Body:                string(b),
			AzDeg:               state.AzDeg,
			AltDeg:              state.AltDeg,
			RADeg:               state.RADeg,
			DecDeg:              state.DecDeg,
			DistanceKm:          state.DistanceKm,
			IlluminatedFraction: state.IlluminatedFraction,
			PhaseAngleDeg:       state.PhaseAngleDeg,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime_s":  int64(time.Since(s.started).Seconds()),
		"locations": s.locationCount(),
	})
}

func (s *Server) locationCount() int {
	if s.dir == nil {
		return 0
	}
	return s.dir.Len()
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
