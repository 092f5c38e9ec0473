// Package gpio connects the clock to the front-panel switches and the
// display buses, with hardware abstraction. The real implementation
// uses the Linux GPIO character device; the fakes allow testing
// without hardware.
package gpio

// Switches is one raw sample of the five front-panel controls.
// Values are logical: true = pressed. The raw lines are active-low
// (pulled up, switch shorts to ground).
type Switches struct {
	TimeSet     bool
	AlarmSet    bool
	Minute      bool
	Hour        bool
	AlarmToggle bool
}

// Frame is one display refresh: the bus-level output state for the
// currently selected digit.
type Frame struct {
	// Segments is the 7-segment pattern, bit 0 = segment A through
	// bit 6 = segment G.
	Segments byte

	// DigitTone carries the one-hot digit select in the low nibble and
	// the alarm tone select in bits 4-6. The two share a port on the
	// reference hardware.
	DigitTone byte

	// SecondsBus is the binary seconds indicator, active-low: a 0 bit
	// lights its LED, 0x3F is fully blanked.
	SecondsBus byte

	// Dot drives the blinking colon LED.
	Dot bool

	// AlarmLED indicates the alarm is armed.
	AlarmLED bool
}

// Digits returns the one-hot digit select from the shared bus byte.
func (f Frame) Digits() byte { return f.DigitTone & 0x0F }

// Tone returns the tone select from the shared bus byte.
func (f Frame) Tone() byte { return f.DigitTone >> 4 }

// Reader samples the front-panel switches.
type Reader interface {
	// Read returns the logical switch states. The raw GPIO values are
	// inverted: raw active = not pressed.
	Read() (Switches, error)

	// Close releases GPIO resources.
	Close() error
}

// Writer drives the display buses.
type Writer interface {
	// WriteFrame blanks the segment bus, updates the select and
	// indicator lines, then drives the new segment pattern. Blanking
	// first suppresses ghosting between digit transitions.
	WriteFrame(Frame) error

	// Close blanks the display and releases GPIO resources.
	Close() error
}

// Pins maps every signal to a GPIO offset (BCM numbering).
type Pins struct {
	TimeSet     int
	AlarmSet    int
	Minute      int
	Hour        int
	AlarmToggle int

	Segments [7]int // A through G
	Digits   [4]int // ones minutes, tens minutes, ones hours, tens hours
	Tone     [3]int // tone select to the analog mux
	Seconds  [6]int // binary seconds, LSB first
	Dot      int
	AlarmLED int
}

// DefaultPins returns the pin assignment of the reference panel.
func DefaultPins() Pins {
	return Pins{
		TimeSet:     2,
		AlarmSet:    3,
		Minute:      4,
		Hour:        17,
		AlarmToggle: 27,
		Segments:    [7]int{5, 6, 12, 13, 16, 19, 26},
		Digits:      [4]int{20, 21, 7, 8},
		Tone:        [3]int{9, 10, 11},
		Seconds:     [6]int{14, 15, 18, 23, 24, 25},
		Dot:         22,
		AlarmLED:    0,
	}
}
