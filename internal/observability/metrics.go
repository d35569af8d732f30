package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ShareCollector bundles Prometheus metrics for the share-URL service and
// provides helpers to wire them into HTTP handlers.
type ShareCollector struct {
	gatherer prometheus.Gatherer

	Requests  *prometheus.CounterVec
	Durations *prometheus.HistogramVec

	DecodeFailures *prometheus.CounterVec
	LegacyParams   *prometheus.CounterVec

	LoadedLocations  prometheus.Gauge
	CatalogDevices   prometheus.Gauge
	WebsocketClients prometheus.Gauge
}

// NewShareCollector registers share-service Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when nil.
func NewShareCollector(reg prometheus.Registerer) (*ShareCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "share_requests_total",
		Help: "Total number of handled HTTP requests, labeled by route and status code.",
	}, []string{"route", "code"})
	requests, err := registerCounterVec(reg, requests, "share_requests_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "share_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"route"})
	durations, err = registerHistogramVec(reg, durations, "share_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	decodeFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "url_decode_failures_total",
		Help: "Query parameters that failed to decode, labeled by field key.",
	}, []string{"field"})
	decodeFailures, err = registerCounterVec(reg, decodeFailures, "url_decode_failures_total")
	if err != nil {
		return nil, err
	}

	legacyParams := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "url_legacy_params_total",
		Help: "Legacy query parameters seen while parsing, labeled by key.",
	}, []string{"key"})
	legacyParams, err = registerCounterVec(reg, legacyParams, "url_legacy_params_total")
	if err != nil {
		return nil, err
	}

	locations, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "share_loaded_locations",
		Help: "Current number of locations in the directory.",
	}), "share_loaded_locations")
	if err != nil {
		return nil, err
	}
	devices, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "share_catalog_devices",
		Help: "Current number of devices in the optics catalog.",
	}), "share_catalog_devices")
	if err != nil {
		return nil, err
	}
	wsClients, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "share_websocket_clients",
		Help: "Currently connected websocket clients.",
	}), "share_websocket_clients")
	if err != nil {
		return nil, err
	}

	return &ShareCollector{
		gatherer:         gatherer,
		Requests:         requests,
		Durations:        durations,
		DecodeFailures:   decodeFailures,
		LegacyParams:     legacyParams,
		LoadedLocations:  locations,
		CatalogDevices:   devices,
		WebsocketClients: wsClients,
	}, nil
}

// Middleware records request counts and durations for an HTTP route.
func (c *ShareCollector) Middleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		if c.Requests != nil {
			c.Requests.WithLabelValues(route, strconv.Itoa(sw.code)).Inc()
		}
		if c.Durations != nil {
			c.Durations.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	})
}

// Handler exposes a ready-to-use /metrics handler.
func (c *ShareCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// DecodeFailure records a query parameter that could not be decoded.
func (c *ShareCollector) DecodeFailure(field string) {
	if c == nil || c.DecodeFailures == nil {
		return
	}
	c.DecodeFailures.WithLabelValues(field).Inc()
}

// LegacyKey records a legacy-generation query parameter seen during parsing.
func (c *ShareCollector) LegacyKey(key string) {
	if c == nil || c.LegacyParams == nil {
		return
	}
	c.LegacyParams.WithLabelValues(key).Inc()
}

// SetDirectoryCounts updates the location and device gauges. The server calls
// it at startup and from directory reload events.
func (c *ShareCollector) SetDirectoryCounts(locations, devices int) {
	if c == nil {
		return
	}
	if c.LoadedLocations != nil {
		c.LoadedLocations.Set(float64(locations))
	}
	if c.CatalogDevices != nil {
		c.CatalogDevices.Set(float64(devices))
	}
}

// statusWriter captures the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	code  int
	wrote bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wrote {
		w.code = code
		w.wrote = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wrote = true
	return w.ResponseWriter.Write(b)
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
