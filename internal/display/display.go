// Package display renders clock snapshots into display frames. It is
// pure computation: the frames are handed to a gpio.Writer by the
// caller.
package display

import (
	"github.com/sweeney/segclock/internal/clock"
	"github.com/sweeney/segclock/internal/gpio"
)

// segmentTable maps a decimal digit to its 7-segment pattern,
// bit 0 = segment A through bit 6 = segment G.
var segmentTable = [10]byte{0x3F, 0x06, 0x5B, 0x4F, 0x66, 0x6D, 0x7D, 0x07, 0x7F, 0x6F}

// BlankSeconds is the seconds bus value with every LED off
// (active-low bus).
const BlankSeconds byte = 0x3F

// secondsMask keeps the bus to its six lines.
const secondsMask byte = 0x3F

// Pattern returns the segment pattern for a single digit 0-9.
func Pattern(digit uint8) byte {
	return segmentTable[digit]
}

// Render computes the frame for the current snapshot and switch
// sample.
//
// While the clock is unset it flashes every digit position at the
// blink parity so the operator knows the time is meaningless. While
// running it shows the digit under the cursor: the alarm setting when
// the alarm-set switch doubles as the display selector, the actual
// time otherwise. The binary seconds and the blinking dot follow the
// actual-time view only; holding either set switch forces the dot off
// so it cannot be mistaken for running time.
func Render(s clock.Snapshot, sw gpio.Switches) gpio.Frame {
	f := gpio.Frame{SecondsBus: BlankSeconds, AlarmLED: s.Armed}

	switch s.Mode {
	case clock.ModeStabilizing:
		// Dark until the tick sources settle.
		return f
	case clock.ModeUnset:
		f.Segments = segmentTable[0]
		if s.Seconds&1 == 1 {
			f.DigitTone = 0x0F // every digit at once
			f.Dot = true
		}
		return f
	}

	d := s.Current
	if sw.AlarmSet {
		d = s.Alarm
	}
	f.Segments = segmentTable[digitAt(d, s.Cursor)]
	f.DigitTone = s.ToneLevel<<4 | s.Cursor&0x0F

	if !sw.AlarmSet {
		f.SecondsBus = ^s.Seconds & secondsMask
	}
	if !sw.TimeSet && !sw.AlarmSet {
		f.Dot = s.Seconds&1 == 1
	}
	return f
}

// digitAt picks the digit under the one-hot cursor.
func digitAt(d clock.Digits, cursor uint8) uint8 {
	switch cursor {
	case clock.CursorTensMinutes:
		return d.TensMinutes
	case clock.CursorOnesHours:
		return d.OnesHours
	case clock.CursorTensHours:
		return d.TensHours
	default:
		return d.OnesMinutes
	}
}
