package web

import (
	"encoding/json"
	"time"

	"github.com/sweeney/segclock/internal/history"
)

// EventsJSON is the JSON envelope for the event history endpoint.
type EventsJSON struct {
	Events []EventJSON `json:"events"`
}

// EventJSON is one recorded clock event.
type EventJSON struct {
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Time      string `json:"time"`
	Alarm     string `json:"alarm"`
	Armed     bool   `json:"armed"`
}

func formatEvents(entries []history.Entry) []byte {
	out := EventsJSON{Events: make([]EventJSON, 0, len(entries))}
	for _, e := range entries {
		out.Events = append(out.Events, EventJSON{
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
			Type:      e.Type,
			Time:      e.Time,
			Alarm:     e.Alarm,
			Armed:     e.Armed,
		})
	}

	data, _ := json.MarshalIndent(out, "", "  ")
	return data
}
