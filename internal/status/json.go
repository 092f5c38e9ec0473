package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Mode          string     `json:"mode"`
	Time          string     `json:"time"`
	Alarm         string     `json:"alarm"`
	Seconds       uint8      `json:"seconds"`
	Armed         bool       `json:"armed"`
	Sounding      bool       `json:"sounding"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"event_counts"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	TimeSet  int `json:"time_set"`
	Armed    int `json:"alarm_armed"`
	Disarmed int `json:"alarm_disarmed"`
	Fired    int `json:"alarm_fired"`
	Cleared  int `json:"alarm_cleared"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs      int64  `json:"tick_ms"`
	SecondMs    int64  `json:"second_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	HistoryPath string `json:"history_path,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	mode := snap.Mode
	if mode == "" {
		mode = "UNKNOWN"
	}

	return StatusInner{
		Mode:          mode,
		Time:          snap.Time,
		Alarm:         snap.Alarm,
		Seconds:       snap.Seconds,
		Armed:         snap.Armed,
		Sounding:      snap.ToneLevel > 0,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			TimeSet:  snap.Counts.TimeSet,
			Armed:    snap.Counts.Armed,
			Disarmed: snap.Counts.Disarmed,
			Fired:    snap.Counts.Fired,
			Cleared:  snap.Counts.Cleared,
		},
		Config: ConfigJSON{
			TickMs:      snap.Config.TickMs,
			SecondMs:    snap.Config.SecondMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			HistoryPath: snap.Config.HistoryPath,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
