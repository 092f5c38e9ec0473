// Package status provides a thread-safe status tracker for the segclock daemon.
// It is the read side of the run loop: HTTP handlers and the MQTT system
// channel take snapshots, never the live core.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/segclock/internal/clock"
)

// Config contains daemon configuration for display.
type Config struct {
	TickMs      int64
	SecondMs    int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	HistoryPath string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Mode          string
	Time          string // HH:MM
	Alarm         string
	Seconds       uint8
	Armed         bool
	ToneLevel     uint8
	Counts        clock.EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Mode:      clock.ModeStabilizing.String(),
			Time:      "00:00",
			Alarm:     "00:00",
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update copies the clock state and event counts.
// Called from runLoop once per second.
func (t *Tracker) Update(cs clock.Snapshot, counts clock.EventCounts) {
	t.mu.Lock()
	t.snap.Mode = cs.Mode.String()
	t.snap.Time = cs.Current.String()
	t.snap.Alarm = cs.Alarm.String()
	t.snap.Seconds = cs.Seconds
	t.snap.Armed = cs.Armed
	t.snap.ToneLevel = cs.ToneLevel
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
