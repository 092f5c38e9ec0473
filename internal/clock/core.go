package clock

// Core is the clock state machine. It is not safe for concurrent use:
// exactly one goroutine calls TickMilli and TickSecond, and everything
// else reads value snapshots. That single-writer discipline replaces
// the interrupt-priority rules of the original hardware.
type Core struct {
	timing Timing
	mode   Mode

	millis  uint32 // TickMilli count; wraps, compared by subtraction
	seconds uint8  // 0-59 while running, blink parity while unset

	current Digits
	alarm   Digits

	armed         bool
	toneLevel     uint8 // 0 = silent, 7..1 = cycling tone select
	toneChangedAt uint32

	cursor uint8 // one-hot digit select

	// Debounce state. One hold counter serves all three control
	// groups because they are sampled as mutually exclusive branches.
	hold   uint16
	repeat uint16

	counts EventCounts
}

// NewCore creates a clock core in the stabilizing state. Zero fields
// in timing fall back to the defaults.
func NewCore(timing Timing) *Core {
	def := DefaultTiming()
	if timing.MinHoldMS == 0 {
		timing.MinHoldMS = def.MinHoldMS
	}
	if timing.InitialRepeatMS == 0 {
		timing.InitialRepeatMS = def.InitialRepeatMS
	}
	if timing.RampStepMS == 0 {
		timing.RampStepMS = def.RampStepMS
	}
	if timing.TonePeriodMS == 0 {
		timing.TonePeriodMS = def.TonePeriodMS
	}
	if timing.StabilizeMS == 0 {
		timing.StabilizeMS = def.StabilizeMS
	}
	return &Core{
		timing: timing,
		mode:   ModeStabilizing,
		cursor: CursorOnesMinutes,
		repeat: timing.InitialRepeatMS,
	}
}

// SetAlarm presets the alarm time. Intended for startup configuration;
// after boot the alarm is set through the front panel.
func (c *Core) SetAlarm(d Digits) {
	c.alarm = d
}

// Arm arms the alarm without a toggle press. Startup configuration only.
func (c *Core) Arm() {
	c.armed = true
}

// Snapshot returns a value copy of the observable state.
func (c *Core) Snapshot() Snapshot {
	return Snapshot{
		Mode:      c.mode,
		Current:   c.current,
		Alarm:     c.alarm,
		Seconds:   c.seconds,
		Armed:     c.armed,
		ToneLevel: c.toneLevel,
		Cursor:    c.cursor,
	}
}

// Counts returns the event counters since startup.
func (c *Core) Counts() EventCounts {
	return c.counts
}

// TickMilli is the 1 kHz engine: digit cursor rotation, switch
// debounce and auto-repeat, tone cadence, and power-loss gate
// progression. It returns any events the tick produced.
func (c *Core) TickMilli(b Buttons) []Event {
	c.millis++

	if c.mode == ModeStabilizing {
		c.advanceCursor()
		if c.millis >= uint32(c.timing.StabilizeMS) {
			c.mode = ModeUnset
			c.seconds = 0
		}
		return nil
	}

	events := c.scanSwitches(b)
	c.stepTone()
	c.advanceCursor()
	return events
}

// scanSwitches samples the controls as mutually exclusive branches:
// alarm-toggle, then alarm-set mode, then time-set mode, then idle.
func (c *Core) scanSwitches(b Buttons) []Event {
	switch {
	case b.AlarmToggle:
		// Saturating hold counter: the toggle fires exactly once, at
		// the tick the hold reaches the threshold, and cannot
		// retrigger while the control stays pressed.
		if c.hold <= c.timing.MinHoldMS {
			c.hold++
			if c.hold == c.timing.MinHoldMS {
				return []Event{c.toggleAlarm()}
			}
		}
	case b.AlarmSet:
		c.stepSetMode(&c.alarm, b)
	case b.TimeSet:
		if c.mode == ModeUnset {
			// Gate acknowledge: a debounced time-set press starts the
			// clock at 00:00.
			c.hold++
			if c.hold == c.timing.MinHoldMS {
				c.mode = ModeRunning
				c.seconds = 0
				c.counts.TimeSet++
				return []Event{c.event(EventTimeSet)}
			}
			return nil
		}
		c.stepSetMode(&c.current, b)
	default:
		c.hold = 0
		c.repeat = c.timing.InitialRepeatMS
	}
	return nil
}

// stepSetMode handles one tick of a set mode. The hold counter runs
// while the mode switch is held, so the first press of an increment
// control after a long mode hold acts immediately; the ramp then makes
// sustained holds accelerate toward the floor.
func (c *Core) stepSetMode(target *Digits, b Buttons) {
	c.hold++

	if !b.Minute && !b.Hour {
		c.repeat = c.timing.InitialRepeatMS
		return
	}

	if c.hold > c.repeat {
		if b.Minute {
			target.OnesMinutes++
		}
		if b.Hour {
			target.OnesHours++
		}
		target.rollover()
		c.hold = 0
		if c.repeat > c.timing.MinHoldMS {
			c.repeat -= c.timing.RampStepMS
			if c.repeat < c.timing.MinHoldMS {
				c.repeat = c.timing.MinHoldMS
			}
		}
	}
}

func (c *Core) toggleAlarm() Event {
	c.armed = !c.armed
	if c.armed {
		c.counts.Armed++
		return c.event(EventAlarmArmed)
	}
	// Disarming silences a sounding alarm immediately.
	c.toneLevel = 0
	c.toneChangedAt = c.millis
	c.counts.Disarmed++
	return c.event(EventAlarmDisarmed)
}

// stepTone cycles the tone select 7 -> 1 -> 7 while the alarm sounds.
// Level 0 is silence and is only entered by disarm or the one-minute
// cutoff in TickSecond.
func (c *Core) stepTone() {
	if c.toneLevel == 0 {
		return
	}
	if c.millis-c.toneChangedAt > uint32(c.timing.TonePeriodMS) {
		c.toneChangedAt = c.millis
		if c.toneLevel <= 1 {
			c.toneLevel = 7
		} else {
			c.toneLevel--
		}
	}
}

func (c *Core) advanceCursor() {
	if c.cursor < CursorTensHours {
		c.cursor <<= 1
	} else {
		c.cursor = CursorOnesMinutes
	}
}

// TickSecond is the 1 Hz engine: the authoritative clock value, digit
// rollover, and alarm match detection.
func (c *Core) TickSecond(b Buttons) []Event {
	switch c.mode {
	case ModeStabilizing:
		return nil
	case ModeUnset:
		// Blink parity only. Time must not run before it is set.
		c.seconds ^= 1
		return nil
	}

	if b.TimeSet {
		// Setting the time freezes the seconds display.
		c.seconds = 0
		return nil
	}

	c.seconds++
	if c.seconds > 59 {
		c.current.OnesMinutes++
		c.seconds = 0
	}
	c.current.rollover()

	if !c.armed || c.current != c.alarm {
		return nil
	}

	var events []Event
	if c.seconds == 0 {
		// First second of the matching minute: start the tone.
		c.toneChangedAt = c.millis
		c.toneLevel = 7
		c.counts.Fired++
		events = append(events, c.event(EventAlarmFired))
	}
	if c.seconds >= 59 {
		// Last second of the matching minute: give up unless the
		// operator silenced the alarm earlier.
		c.toneLevel = 0
		c.counts.Cleared++
		events = append(events, c.event(EventAlarmCleared))
	}
	return events
}

func (c *Core) event(t EventType) Event {
	return Event{
		Type:    t,
		Time:    c.current,
		Alarm:   c.alarm,
		Armed:   c.armed,
		Seconds: c.seconds,
	}
}
