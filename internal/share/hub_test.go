package share

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestHubBroadcastsPermalinkOnStateMessage(t *testing.T) {
	srv := testServer(t)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()
	defer srv.Hub().Close()

	sender := dialWS(t, ts)
	watcher := dialWS(t, ts)

	if err := sender.WriteJSON(inboundMessage{Type: "state", Query: "l=tokyo&s=5"}); err != nil {
		t.Fatalf("write state message: %v", err)
	}

	for _, conn := range []*websocket.Conn{sender, watcher} {
		var msg permalinkMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read permalink: %v", err)
		}
		if msg.Type != "permalink" {
			t.Fatalf("type = %q, want permalink", msg.Type)
		}
		if !strings.Contains(msg.URL, "l=tokyo") || !strings.Contains(msg.URL, "s=5") {
			t.Errorf("url = %q, want l=tokyo and s=5", msg.URL)
		}
		if msg.State.Location.ID != "tokyo" {
			t.Errorf("state location = %q, want tokyo", msg.State.Location.ID)
		}
	}
}

func TestStateMessageSyncsPlaybackClock(t *testing.T) {
	srv := testServer(t)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()
	defer srv.Hub().Close()

	conn := dialWS(t, ts)
	if err := conn.WriteJSON(inboundMessage{Type: "state", Query: "t=s44we8&s=5&play=1"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	// The permalink reply, then the tick emitted by the clock sync.
	var msg permalinkMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read permalink: %v", err)
	}
	var tick tickMessage
	if err := conn.ReadJSON(&tick); err != nil {
		t.Fatalf("read tick: %v", err)
	}
	if tick.Type != "tick" || tick.WhenMs != 1700000000000 {
		t.Fatalf("tick = %+v, want whenMs 1700000000000", tick)
	}

	clock := srv.Clock()
	if got := clock.Rate(); got != 5 {
		t.Errorf("clock rate = %v, want 5", got)
	}
	if !clock.Playing() {
		t.Error("clock paused, want playing")
	}
	if got := clock.Now().UnixMilli(); got != 1700000000000 {
		t.Errorf("clock time = %d, want 1700000000000", got)
	}
}

func TestHubRejectsUnknownMessageType(t *testing.T) {
	srv := testServer(t)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()
	defer srv.Hub().Close()

	conn := dialWS(t, ts)
	if err := conn.WriteJSON(inboundMessage{Type: "teleport"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var msg errorMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read error reply: %v", err)
	}
	if msg.Type != "error" || msg.Reason != "unknown message type" {
		t.Fatalf("reply = %+v, want unknown message type error", msg)
	}
}

func TestSharePostReachesWebsocketSubscribers(t *testing.T) {
	srv := testServer(t)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()
	defer srv.Hub().Close()

	conn := dialWS(t, ts)

	resp, err := ts.Client().Post(ts.URL+"/api/share", "application/json",
		strings.NewReader(`{"whenMs":0,"location":{"id":"paris","lat":48.8566,"lng":2.3522,"timeZone":"Europe/Paris"},"follow":"moon","projection":"recti-panini","optics":{"deviceId":"eye","zoomId":"eye-normal","fovXDeg":60,"fovYDeg":42,"linkFov":false},"toggles":{"sun":true,"moon":true,"phase":false,"earthshine":false,"earth":false,"atmosphere":false,"stars":false,"markers":false,"grid":false,"suncard":false,"mooncard":false,"enlarge":false,"debug":false},"panelsVisible":true,"animating":false,"planets":["mars"],"speedMinPerSec":1}`))
	if err != nil {
		t.Fatalf("POST /api/share: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var msg permalinkMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if msg.Type != "permalink" {
		t.Fatalf("type = %q, want permalink", msg.Type)
	}
	if msg.State.Location.ID != "paris" {
		t.Errorf("location = %q, want paris", msg.State.Location.ID)
	}
	if len(msg.State.Planets) != 1 || msg.State.Planets[0] != "mars" {
		t.Errorf("planets = %v, want [mars]", msg.State.Planets)
	}
}
