package stream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"vehicletracker/internal/core/model"

	"golang.org/x/net/websocket"
)

type gauge struct{ last int }

func (g *gauge) SubscribersChanged(n int) { g.last = n }

func newServer(h *Hub) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/live/{vehicle_id}", h.ServeWS)
	return httptest.NewServer(mux)
}

func dial(t *testing.T, srv *httptest.Server, vehicleID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/live/" + vehicleID
	ws, err := websocket.Dial(url, "", srv.URL)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return ws
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_BroadcastToSubscribers(t *testing.T) {
	hub := NewHub(nil)
	srv := newServer(hub)
	defer srv.Close()

	ws := dial(t, srv, "V1")
	defer ws.Close()
	other := dial(t, srv, "V2")
	defer other.Close()
	waitFor(t, func() bool { return hub.Subscribers("V1") == 1 && hub.Subscribers("V2") == 1 })

	ts := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	hub.Broadcast("V1", []model.Sample{
		model.NewSample("V1", ts, 12.9, 77.5, model.StatusRide),
		model.NewSample("V1", ts.Add(30*time.Second), 12.91, 77.51, model.StatusBreak),
	})

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := websocket.JSON.Receive(ws, &msg); err != nil {
		t.Fatalf("receive: %v", err)
	}
	if msg.Type != "trace" || msg.VehicleID != "V1" || len(msg.Data) != 2 {
		t.Fatalf("unexpected frame: %+v", msg)
	}
	if msg.Data[1].Status != model.StatusBreak {
		t.Errorf("status = %q", msg.Data[1].Status)
	}

	// V2 is not watching V1
	other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if err := websocket.JSON.Receive(other, &msg); err == nil {
		t.Error("subscriber of another vehicle received a frame")
	}
}

func TestHub_UnregisterOnClose(t *testing.T) {
	g := &gauge{}
	hub := NewHub(g)
	srv := newServer(hub)
	defer srv.Close()

	ws := dial(t, srv, "V1")
	waitFor(t, func() bool { return hub.Subscribers("V1") == 1 })
	if g.last != 1 {
		t.Errorf("gauge = %d, want 1", g.last)
	}

	ws.Close()
	waitFor(t, func() bool { return hub.Subscribers("V1") == 0 })

	// broadcasting with nobody listening is a no-op
	hub.Broadcast("V1", nil)
}

func TestHub_CloseAll(t *testing.T) {
	hub := NewHub(nil)
	srv := newServer(hub)
	defer srv.Close()

	ws := dial(t, srv, "V1")
	defer ws.Close()
	waitFor(t, func() bool { return hub.Subscribers("V1") == 1 })

	hub.CloseAll()
	if hub.Subscribers("V1") != 0 {
		t.Error("CloseAll left subscribers behind")
	}
}
