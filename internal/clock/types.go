// Package clock contains the pure time-keeping core of the alarm clock.
// This package has NO external dependencies (no GPIO, MQTT, OS, or
// time.Sleep). Both engines are plain functions driven by injected
// ticks: TickMilli for the 1 kHz display/debounce engine and
// TickSecond for the 1 Hz time-keeping engine.
package clock

import "fmt"

// Digits is a 24-hour clock value in decomposed decimal form. Keeping
// the four places as separate fields lets the display render each digit
// directly and lets rollover carry via threshold compares instead of
// division, which is how the original clock hardware did it.
type Digits struct {
	OnesMinutes uint8
	TensMinutes uint8
	OnesHours   uint8
	TensHours   uint8
}

// String formats the value as HH:MM.
func (d Digits) String() string {
	return fmt.Sprintf("%d%d:%d%d", d.TensHours, d.OnesHours, d.TensMinutes, d.OnesMinutes)
}

// Valid reports whether the value represents a time below 24:00.
func (d Digits) Valid() bool {
	if d.OnesMinutes > 9 || d.TensMinutes > 5 || d.OnesHours > 9 {
		return false
	}
	return !(d.TensHours >= 2 && d.OnesHours >= 4)
}

// rollover carries overflow from each decimal place into the next.
// Division-free: the thresholds cover every state one increment past
// valid, so calling it after any single increment restores validity.
func (d *Digits) rollover() {
	if d.OnesMinutes > 9 {
		d.TensMinutes++
		d.OnesMinutes = 0
	}
	if d.TensMinutes > 5 {
		d.OnesHours++
		d.TensMinutes = 0
	}
	if d.OnesHours > 9 {
		d.TensHours++
		d.OnesHours = 0
	}
	// 24:00 wraps the hour pair jointly.
	if d.TensHours >= 2 && d.OnesHours >= 4 {
		d.TensHours = 0
		d.OnesHours = 0
	}
}

// ParseDigits parses an HH:MM string into a Digits value.
func ParseDigits(s string) (Digits, error) {
	if len(s) != 5 || s[2] != ':' {
		return Digits{}, fmt.Errorf("parse %q: want HH:MM", s)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return Digits{}, fmt.Errorf("parse %q: want HH:MM", s)
		}
	}
	d := Digits{
		TensHours:   s[0] - '0',
		OnesHours:   s[1] - '0',
		TensMinutes: s[3] - '0',
		OnesMinutes: s[4] - '0',
	}
	if !d.Valid() {
		return Digits{}, fmt.Errorf("parse %q: out of range", s)
	}
	return d, nil
}

// Buttons is one raw sample of the five front-panel controls.
// true = pressed. Debounce happens inside the core, not here.
type Buttons struct {
	TimeSet     bool
	AlarmSet    bool
	Minute      bool
	Hour        bool
	AlarmToggle bool
}

// Mode is the power-loss gate state.
type Mode uint8

const (
	// ModeStabilizing is the first second after boot, giving the tick
	// sources time to settle. Switches are ignored.
	ModeStabilizing Mode = iota
	// ModeUnset means the clock lost power and the time is meaningless.
	// The display flashes until the operator presses time-set.
	ModeUnset
	// ModeRunning is normal operation.
	ModeRunning
)

func (m Mode) String() string {
	switch m {
	case ModeStabilizing:
		return "STABILIZING"
	case ModeUnset:
		return "UNSET"
	case ModeRunning:
		return "RUNNING"
	}
	return "UNKNOWN"
}

// Timing holds the switch and tone timing constants, all in
// milliseconds of TickMilli time.
type Timing struct {
	// MinHoldMS is the debounce threshold for the toggle and time-set
	// acknowledge controls, and the floor of the auto-repeat ramp.
	MinHoldMS uint16
	// InitialRepeatMS is the auto-repeat threshold at the start of a
	// press.
	InitialRepeatMS uint16
	// RampStepMS is subtracted from the repeat threshold after each
	// repeat, so holding an increment control accelerates.
	RampStepMS uint16
	// TonePeriodMS is how long each alarm tone step sounds before the
	// sequencer moves to the next.
	TonePeriodMS uint16
	// StabilizeMS is how long after boot the gate waits before
	// trusting the tick sources.
	StabilizeMS uint16
}

// DefaultTiming returns the timing constants of the reference hardware.
func DefaultTiming() Timing {
	return Timing{
		MinHoldMS:       75,
		InitialRepeatMS: 125,
		RampStepMS:      5,
		TonePeriodMS:    250,
		StabilizeMS:     1000,
	}
}

// One-hot digit cursor positions, in round-robin order.
const (
	CursorOnesMinutes uint8 = 1 << 0
	CursorTensMinutes uint8 = 1 << 1
	CursorOnesHours   uint8 = 1 << 2
	CursorTensHours   uint8 = 1 << 3
)

// EventType identifies a state transition worth reporting.
type EventType string

const (
	EventTimeSet       EventType = "TIME_SET"
	EventAlarmArmed    EventType = "ALARM_ARMED"
	EventAlarmDisarmed EventType = "ALARM_DISARMED"
	EventAlarmFired    EventType = "ALARM_FIRED"
	EventAlarmCleared  EventType = "ALARM_CLEARED"
)

// Event is a state transition emitted by one of the tick engines.
// Manual-adjustment repeats are deliberately not events: the ramp
// reaches over ten increments a second and would flood any consumer.
type Event struct {
	Type    EventType
	Time    Digits
	Alarm   Digits
	Armed   bool
	Seconds uint8
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	TimeSet  int
	Armed    int
	Disarmed int
	Fired    int
	Cleared  int
}

// Snapshot is a value-type copy of the observable clock state. Every
// reader outside the tick goroutine (display, status page, MQTT
// payloads) consumes one of these, so no reader can ever see a time
// value mid-rollover.
type Snapshot struct {
	Mode      Mode
	Current   Digits
	Alarm     Digits
	Seconds   uint8
	Armed     bool
	ToneLevel uint8
	Cursor    uint8
}
