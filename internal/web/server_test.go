package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/segclock/internal/clock"
	"github.com/sweeney/segclock/internal/history"
	"github.com/sweeney/segclock/internal/status"
)

func newTestServer(t *testing.T, events EventSource) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		TickMs:      1,
		SecondMs:    1000,
		HeartbeatMs: 3600000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":8080",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr, events)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func newTestHistory(t *testing.T) *history.Store {
	t.Helper()
	s, err := history.NewMemory()
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.Update(clock.Snapshot{
		Mode:    clock.ModeRunning,
		Current: clock.Digits{TensMinutes: 3, OnesHours: 7},
		Alarm:   clock.Digits{TensMinutes: 4, OnesHours: 7},
		Armed:   true,
	}, clock.EventCounts{TimeSet: 1, Armed: 2})
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.Mode != "RUNNING" {
		t.Errorf("Mode: got %q, want RUNNING", sj.Status.Mode)
	}
	if sj.Status.Time != "07:30" {
		t.Errorf("Time: got %q, want 07:30", sj.Status.Time)
	}
	if sj.Status.Alarm != "07:40" {
		t.Errorf("Alarm: got %q, want 07:40", sj.Status.Alarm)
	}
	if !sj.Status.Armed {
		t.Error("expected Armed=true")
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("MQTT.Broker: got %q", sj.Status.MQTT.Broker)
	}
	if sj.Status.Counts.Armed != 2 {
		t.Errorf("Counts.Armed: got %d, want 2", sj.Status.Counts.Armed)
	}
	if sj.Status.Config.TickMs != 1 {
		t.Errorf("Config.TickMs: got %d, want 1", sj.Status.Config.TickMs)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.Update(clock.Snapshot{Mode: clock.ModeRunning}, clock.EventCounts{})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}
}

func TestHTMLShowsClockFace(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.Update(clock.Snapshot{
		Mode:    clock.ModeRunning,
		Current: clock.Digits{OnesMinutes: 5, TensMinutes: 1, OnesHours: 9},
		Seconds: 7,
	}, clock.EventCounts{})

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "09:15:07") {
		t.Error("expected clock face 09:15:07 in HTML")
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestEventsEndpoint(t *testing.T) {
	hist := newTestHistory(t)
	ts, _ := newTestServer(t, hist)

	now := time.Date(2026, 3, 14, 7, 30, 0, 0, time.UTC)
	hist.Record(now, clock.Event{Type: clock.EventTimeSet})
	hist.Record(now.Add(time.Minute), clock.Event{
		Type:  clock.EventAlarmArmed,
		Armed: true,
		Alarm: clock.Digits{TensMinutes: 4, OnesHours: 7},
	})

	resp, err := http.Get(ts.URL + "/events.json")
	if err != nil {
		t.Fatalf("GET /events.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}

	var ej EventsJSON
	if err := json.NewDecoder(resp.Body).Decode(&ej); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if len(ej.Events) != 2 {
		t.Fatalf("events: got %d, want 2", len(ej.Events))
	}
	// Newest first.
	if ej.Events[0].Type != "ALARM_ARMED" {
		t.Errorf("event 0: got %q, want ALARM_ARMED", ej.Events[0].Type)
	}
	if ej.Events[0].Alarm != "07:40" {
		t.Errorf("event 0 alarm: got %q, want 07:40", ej.Events[0].Alarm)
	}
	if !ej.Events[0].Armed {
		t.Error("event 0: expected armed")
	}
}

func TestEventsEndpointDisabled(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/events.json")
	if err != nil {
		t.Fatalf("GET /events.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t, nil)

	resp1, _ := http.Get(ts.URL + "/index.json")
	var sj1 status.StatusJSON
	json.NewDecoder(resp1.Body).Decode(&sj1)
	resp1.Body.Close()
	if sj1.Status.Mode != "STABILIZING" {
		t.Errorf("initial mode: got %q, want STABILIZING", sj1.Status.Mode)
	}

	tr.Update(clock.Snapshot{Mode: clock.ModeRunning, Armed: true}, clock.EventCounts{TimeSet: 1})
	tr.SetMQTTConnected(true)

	resp2, _ := http.Get(ts.URL + "/index.json")
	var sj2 status.StatusJSON
	json.NewDecoder(resp2.Body).Decode(&sj2)
	resp2.Body.Close()

	if sj2.Status.Mode != "RUNNING" {
		t.Errorf("Mode: got %q, want RUNNING", sj2.Status.Mode)
	}
	if !sj2.Status.Armed {
		t.Error("expected Armed=true after update")
	}
	if !sj2.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}
