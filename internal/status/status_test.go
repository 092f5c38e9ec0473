package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/segclock/internal/clock"
)

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{TickMs: 1, SecondMs: 1000, Broker: "tcp://localhost:1883", HTTPAddr: ":8080"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Mode != "STABILIZING" {
		t.Errorf("Mode: got %q, want STABILIZING", snap.Mode)
	}
	if snap.Time != "00:00" || snap.Alarm != "00:00" {
		t.Errorf("initial times: got %q / %q", snap.Time, snap.Alarm)
	}
	if snap.Config.HTTPAddr != ":8080" {
		t.Errorf("Config.HTTPAddr: got %q, want %q", snap.Config.HTTPAddr, ":8080")
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.Update(clock.Snapshot{
		Mode:      clock.ModeRunning,
		Current:   clock.Digits{TensMinutes: 3, OnesHours: 7},
		Alarm:     clock.Digits{TensMinutes: 4, OnesHours: 7},
		Seconds:   12,
		Armed:     true,
		ToneLevel: 7,
	}, clock.EventCounts{TimeSet: 1, Fired: 2})

	snap := tr.Snapshot()
	if snap.Mode != "RUNNING" {
		t.Errorf("Mode: got %q, want RUNNING", snap.Mode)
	}
	if snap.Time != "07:30" {
		t.Errorf("Time: got %q, want 07:30", snap.Time)
	}
	if snap.Alarm != "07:40" {
		t.Errorf("Alarm: got %q, want 07:40", snap.Alarm)
	}
	if snap.Seconds != 12 {
		t.Errorf("Seconds: got %d, want 12", snap.Seconds)
	}
	if !snap.Armed {
		t.Error("expected Armed=true")
	}
	if snap.Counts.Fired != 2 {
		t.Errorf("Counts.Fired: got %d, want 2", snap.Counts.Fired)
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}

	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(15 * time.Minute),
	}

	if snap.Uptime() != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", snap.Uptime())
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.Update(clock.Snapshot{Mode: clock.ModeRunning, Armed: true}, clock.EventCounts{})

	snap1 := tr.Snapshot()

	tr.Update(clock.Snapshot{Mode: clock.ModeUnset}, clock.EventCounts{TimeSet: 1})

	// snap1 should still reflect old state
	if snap1.Mode != "RUNNING" {
		t.Error("snapshot should be a copy; Mode was modified")
	}
	if !snap1.Armed {
		t.Error("snapshot should be a copy; Armed was modified")
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Mode:          "RUNNING",
		Time:          "07:30",
		Alarm:         "07:40",
		Seconds:       5,
		Armed:         true,
		ToneLevel:     3,
		Counts:        clock.EventCounts{TimeSet: 1, Armed: 2, Fired: 1},
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		MQTTConnected: true,
		Config:        Config{TickMs: 1, SecondMs: 1000, HeartbeatMs: 3600000, Broker: "tcp://localhost:1883", HTTPAddr: ":8080"},
	}

	data := FormatJSON(snap)

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Mode != "RUNNING" {
		t.Errorf("Mode: got %q, want RUNNING", parsed.Status.Mode)
	}
	if parsed.Status.Time != "07:30" {
		t.Errorf("Time: got %q, want 07:30", parsed.Status.Time)
	}
	if !parsed.Status.Sounding {
		t.Error("expected Sounding=true for nonzero tone level")
	}
	if parsed.Status.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", parsed.Status.UptimeSeconds)
	}
	if !parsed.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if parsed.Status.Counts.Armed != 2 {
		t.Errorf("Counts.Armed: got %d, want 2", parsed.Status.Counts.Armed)
	}
	// Event and Reason should be omitted
	if parsed.Status.Event != "" {
		t.Errorf("expected empty Event for web format, got %q", parsed.Status.Event)
	}
	if parsed.Status.Reason != "" {
		t.Errorf("expected empty Reason for web format, got %q", parsed.Status.Reason)
	}
}

func TestFormatJSONUnknownMode(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	data := FormatJSON(snap)

	var parsed StatusJSON
	json.Unmarshal(data, &parsed)

	if parsed.Status.Mode != "UNKNOWN" {
		t.Errorf("Mode: got %q, want UNKNOWN", parsed.Status.Mode)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Mode:      "RUNNING",
		Time:      "12:00",
		Alarm:     "06:30",
		StartTime: start,
		Now:       start.Add(30 * time.Minute),
		Config:    Config{Broker: "tcp://localhost:1883"},
	}

	data := FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Event != "SHUTDOWN" {
		t.Errorf("Event: got %q, want SHUTDOWN", parsed.Status.Event)
	}
	if parsed.Status.Reason != "SIGTERM" {
		t.Errorf("Reason: got %q, want SIGTERM", parsed.Status.Reason)
	}
	if parsed.Status.Time != "12:00" {
		t.Errorf("Time: got %q, want 12:00", parsed.Status.Time)
	}
	if parsed.Status.UptimeSeconds != 1800 {
		t.Errorf("UptimeSeconds: got %d, want 1800", parsed.Status.UptimeSeconds)
	}
}

func TestFormatStatusEventOmitsReasonWhenEmpty(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	data := FormatStatusEvent(snap, "STARTUP", "")

	var raw map[string]interface{}
	json.Unmarshal(data, &raw)
	statusObj := raw["status"].(map[string]interface{})
	if _, exists := statusObj["reason"]; exists {
		t.Error("reason should be omitted when empty")
	}
	if statusObj["event"] != "STARTUP" {
		t.Errorf("event: got %v, want STARTUP", statusObj["event"])
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	var wg sync.WaitGroup

	// Writer
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			tr.Update(clock.Snapshot{Mode: clock.ModeRunning, Seconds: uint8(i % 60)}, clock.EventCounts{TimeSet: 1})
			tr.SetMQTTConnected(i%2 == 0)
		}
	}()

	// Reader
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := tr.Snapshot()
			_ = snap.Uptime()
		}
	}()

	wg.Wait()
}
