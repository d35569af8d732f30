package share

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/antoine-paris/moontracker-sub002/internal/logging"
	"github.com/antoine-paris/moontracker-sub002/internal/observability"
	"github.com/antoine-paris/moontracker-sub002/timectrl"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second

	maxMessageBytes = 8 << 10
)

// inboundMessage is what clients send over the websocket. Only "state" is
// understood: its query carries share-URL parameters describing the client's
// current view.
type inboundMessage struct {
	Type  string `json:"type"`
	Query string `json:"query"`
}

// permalinkMessage is pushed to every subscriber whenever any client reports
// new state.
type permalinkMessage struct {
	Type  string       `json:"type"`
	URL   string       `json:"url"`
	State StatePayload `json:"state"`
}

type errorMessage struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// tickMessage carries playback clock updates while the shared view animates.
type tickMessage struct {
	Type   string `json:"type"`
	WhenMs int64  `json:"whenMs"`
}

// Hub fans permalink updates out to connected websocket clients.
type Hub struct {
	log     logging.Logger
	metrics *observability.ShareCollector

	// resolve turns share-URL query parameters into a state payload and its
	// canonical permalink.
	resolve func(url.Values) (StatePayload, string)

	// clock mirrors the playback state of the most recent shared view. Nil
	// disables clock syncing.
	clock *timectrl.Controller

	upgrader websocket.Upgrader

	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*subscriber
}

// subscriber serializes writes to one connection; gorilla connections allow a
// single concurrent writer.
type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *subscriber) send(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(v)
}

func (s *subscriber) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// NewHub creates a hub. resolve must be non-nil; clock may be nil.
func NewHub(log logging.Logger, metrics *observability.ShareCollector, clock *timectrl.Controller, resolve func(url.Values) (StatePayload, string)) *Hub {
	if log == nil {
		log = logging.Noop()
	}
	return &Hub{
		log:     log,
		metrics: metrics,
		resolve: resolve,
		clock:   clock,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		subs: make(map[uint64]*subscriber),
	}
}

// ServeHTTP upgrades the request and runs the subscriber's read loop until
// the connection drops.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade failed", logging.String("error", err.Error()))
		return
	}

	sub := &subscriber{conn: conn}
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs[id] = sub
	count := len(h.subs)
	h.mu.Unlock()

	if h.metrics != nil && h.metrics.WebsocketClients != nil {
		h.metrics.WebsocketClients.Set(float64(count))
	}
	h.log.Info(r.Context(), "websocket client connected", logging.Int("clients", count))

	stop := make(chan struct{})
	go h.pingLoop(sub, stop)

	h.readLoop(r.Context(), sub)

	close(stop)
	h.drop(r.Context(), id)
}

func (h *Hub) readLoop(ctx context.Context, sub *subscriber) {
	conn := sub.conn
	conn.SetReadLimit(maxMessageBytes)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn(ctx, "websocket read failed", logging.String("error", err.Error()))
			}
			return
		}

		switch msg.Type {
		case "state":
			q, err := url.ParseQuery(msg.Query)
			if err != nil {
				sub.send(errorMessage{Type: "error", Reason: "malformed query"})
				continue
			}
			payload, link := h.resolve(q)
			h.log.Debug(ctx, "state shared",
				logging.Float("speed_min_per_sec", payload.SpeedMinPerSec),
				logging.Any("planets", payload.Planets))
			h.Broadcast(permalinkMessage{Type: "permalink", URL: link, State: payload})
			h.syncClock(payload)
		default:
			sub.send(errorMessage{Type: "error", Reason: "unknown message type"})
		}
	}
}

// syncClock points the playback clock at the newly shared view.
func (h *Hub) syncClock(p StatePayload) {
	if h.clock == nil {
		return
	}
	h.clock.SetRate(p.SpeedMinPerSec)
	if p.Animating {
		h.clock.Play()
	} else {
		h.clock.Pause()
	}
	// SetTime last: it notifies listeners, and the resulting tick must carry
	// the final rate and play state.
	h.clock.SetTime(time.UnixMilli(p.WhenMs).UTC())
}

func (h *Hub) pingLoop(sub *subscriber, stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := sub.ping(); err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}

// Broadcast sends a message to every connected subscriber, dropping the ones
// whose writes fail.
func (h *Hub) Broadcast(msg any) {
	h.mu.Lock()
	targets := make(map[uint64]*subscriber, len(h.subs))
	for id, sub := range h.subs {
		targets[id] = sub
	}
	h.mu.Unlock()

	for id, sub := range targets {
		if err := sub.send(msg); err != nil {
			sub.conn.Close()
			h.drop(context.Background(), id)
		}
	}
}

func (h *Hub) drop(ctx context.Context, id uint64) {
	h.mu.Lock()
	_, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	count := len(h.subs)
	h.mu.Unlock()

	if !ok {
		return
	}
	if h.metrics != nil && h.metrics.WebsocketClients != nil {
		h.metrics.WebsocketClients.Set(float64(count))
	}
	h.log.Info(ctx, "websocket client disconnected", logging.Int("clients", count))
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[uint64]*subscriber)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.conn.Close()
	}
	if h.metrics != nil && h.metrics.WebsocketClients != nil {
		h.metrics.WebsocketClients.Set(0)
	}
}
