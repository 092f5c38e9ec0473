//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealIO drives actual hardware through the Linux GPIO character
// device. The switch lines are requested with pull-ups (pressed =
// low); the display lines are plain push-pull outputs.
type RealIO struct {
	chip     *gpiocdev.Chip
	switches *gpiocdev.Lines
	segments *gpiocdev.Lines
	selects  *gpiocdev.Lines // digit select + tone select, one group
	seconds  *gpiocdev.Lines
	leds     *gpiocdev.Lines // dot, alarm

	// Preallocated value buffers. WriteFrame runs at the 1 kHz
	// refresh rate and must not allocate.
	swBuf  []int
	segBuf []int
	selBuf []int
	secBuf []int
	ledBuf []int
}

// NewRealIO requests every line of the pin map on gpiochip0.
func NewRealIO(pins Pins) (*RealIO, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &RealIO{
		chip:   chip,
		swBuf:  make([]int, 5),
		segBuf: make([]int, 7),
		selBuf: make([]int, 7),
		secBuf: make([]int, 6),
		ledBuf: make([]int, 2),
	}

	swPins := []int{pins.TimeSet, pins.AlarmSet, pins.Minute, pins.Hour, pins.AlarmToggle}
	r.switches, err = chip.RequestLines(swPins, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request switch lines %v: %w", swPins, err)
	}

	outputs := []struct {
		name  string
		pins  []int
		lines **gpiocdev.Lines
	}{
		{"segment", pins.Segments[:], &r.segments},
		{"select", append(append([]int{}, pins.Digits[:]...), pins.Tone[:]...), &r.selects},
		{"seconds", pins.Seconds[:], &r.seconds},
		{"led", []int{pins.Dot, pins.AlarmLED}, &r.leds},
	}
	for _, o := range outputs {
		lines, err := chip.RequestLines(o.pins, gpiocdev.AsOutput(make([]int, len(o.pins))...))
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request %s lines %v: %w", o.name, o.pins, err)
		}
		*o.lines = lines
	}

	// The seconds bus is active-low: start fully blanked, not lit.
	for i := range r.secBuf {
		r.secBuf[i] = 1
	}
	if err := r.seconds.SetValues(r.secBuf); err != nil {
		r.Close()
		return nil, fmt.Errorf("blank seconds bus: %w", err)
	}

	return r, nil
}

// Read samples the switch lines. Inverts raw values: raw low = pressed.
func (r *RealIO) Read() (Switches, error) {
	if err := r.switches.Values(r.swBuf); err != nil {
		return Switches{}, fmt.Errorf("read switches: %w", err)
	}
	return Switches{
		TimeSet:     r.swBuf[0] == 0,
		AlarmSet:    r.swBuf[1] == 0,
		Minute:      r.swBuf[2] == 0,
		Hour:        r.swBuf[3] == 0,
		AlarmToggle: r.swBuf[4] == 0,
	}, nil
}

// WriteFrame drives one display refresh: blank the segment bus, update
// select/indicator lines, then set the new segment pattern.
func (r *RealIO) WriteFrame(f Frame) error {
	for i := range r.segBuf {
		r.segBuf[i] = 0
	}
	if err := r.segments.SetValues(r.segBuf); err != nil {
		return fmt.Errorf("blank segments: %w", err)
	}

	for i := 0; i < 4; i++ {
		r.selBuf[i] = int(f.DigitTone >> i & 1)
	}
	for i := 0; i < 3; i++ {
		r.selBuf[4+i] = int(f.DigitTone >> (4 + i) & 1)
	}
	if err := r.selects.SetValues(r.selBuf); err != nil {
		return fmt.Errorf("set digit/tone select: %w", err)
	}

	for i := range r.secBuf {
		r.secBuf[i] = int(f.SecondsBus >> i & 1)
	}
	if err := r.seconds.SetValues(r.secBuf); err != nil {
		return fmt.Errorf("set seconds bus: %w", err)
	}

	r.ledBuf[0] = 0
	if f.Dot {
		r.ledBuf[0] = 1
	}
	r.ledBuf[1] = 0
	if f.AlarmLED {
		r.ledBuf[1] = 1
	}
	if err := r.leds.SetValues(r.ledBuf); err != nil {
		return fmt.Errorf("set indicator leds: %w", err)
	}

	for i := range r.segBuf {
		r.segBuf[i] = int(f.Segments >> i & 1)
	}
	if err := r.segments.SetValues(r.segBuf); err != nil {
		return fmt.Errorf("set segments: %w", err)
	}
	return nil
}

// Close blanks the display and releases every requested line.
func (r *RealIO) Close() error {
	var errs []error

	if r.segments != nil {
		// Leave the panel dark rather than frozen on the last digit.
		r.segments.SetValues(make([]int, 7))
		if err := r.segments.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close segment lines: %w", err))
		}
	}
	if r.selects != nil {
		r.selects.SetValues(make([]int, 7))
		if err := r.selects.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close select lines: %w", err))
		}
	}
	if r.seconds != nil {
		blank := []int{1, 1, 1, 1, 1, 1}
		r.seconds.SetValues(blank)
		if err := r.seconds.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close seconds lines: %w", err))
		}
	}
	if r.leds != nil {
		r.leds.SetValues(make([]int, 2))
		if err := r.leds.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close led lines: %w", err))
		}
	}
	if r.switches != nil {
		if err := r.switches.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close switch lines: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
