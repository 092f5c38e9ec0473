// Package config loads the daemon configuration from a YAML file.
// Every value has a default matching the reference hardware, so the
// daemon runs with no file at all; flags in main override both.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/segclock/internal/clock"
	"github.com/sweeney/segclock/internal/gpio"
)

// Config is the full daemon configuration.
type Config struct {
	Broker      string `yaml:"broker"`
	HTTPAddr    string `yaml:"http_addr"`
	HistoryPath string `yaml:"history_path"` // empty disables the event log

	// Alarm optionally presets the alarm time (HH:MM) at boot, and
	// Armed arms it. The operator can still change both from the panel.
	Alarm string `yaml:"alarm"`
	Armed bool   `yaml:"armed"`

	Timing Timing `yaml:"timing"`
	Pins   Pins   `yaml:"pins"`
}

// Timing mirrors clock.Timing with YAML tags. Local copy so the clock
// core stays free of serialization concerns.
type Timing struct {
	MinHoldMS       uint16 `yaml:"min_hold_ms"`
	InitialRepeatMS uint16 `yaml:"initial_repeat_ms"`
	RampStepMS      uint16 `yaml:"ramp_step_ms"`
	TonePeriodMS    uint16 `yaml:"tone_period_ms"`
	StabilizeMS     uint16 `yaml:"stabilize_ms"`
}

// Pins mirrors gpio.Pins with YAML tags.
type Pins struct {
	TimeSet     int    `yaml:"time_set"`
	AlarmSet    int    `yaml:"alarm_set"`
	Minute      int    `yaml:"minute"`
	Hour        int    `yaml:"hour"`
	AlarmToggle int    `yaml:"alarm_toggle"`
	Segments    [7]int `yaml:"segments"`
	Digits      [4]int `yaml:"digits"`
	Tone        [3]int `yaml:"tone"`
	Seconds     [6]int `yaml:"seconds"`
	Dot         int    `yaml:"dot"`
	AlarmLED    int    `yaml:"alarm_led"`
}

// Default returns the configuration of the reference panel.
func Default() Config {
	t := clock.DefaultTiming()
	p := gpio.DefaultPins()
	return Config{
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":8080",
		HistoryPath: "/var/lib/segclock/events.db",
		Timing: Timing{
			MinHoldMS:       t.MinHoldMS,
			InitialRepeatMS: t.InitialRepeatMS,
			RampStepMS:      t.RampStepMS,
			TonePeriodMS:    t.TonePeriodMS,
			StabilizeMS:     t.StabilizeMS,
		},
		Pins: Pins{
			TimeSet:     p.TimeSet,
			AlarmSet:    p.AlarmSet,
			Minute:      p.Minute,
			Hour:        p.Hour,
			AlarmToggle: p.AlarmToggle,
			Segments:    p.Segments,
			Digits:      p.Digits,
			Tone:        p.Tone,
			Seconds:     p.Seconds,
			Dot:         p.Dot,
			AlarmLED:    p.AlarmLED,
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Alarm != "" {
		if _, err := clock.ParseDigits(c.Alarm); err != nil {
			return fmt.Errorf("alarm: %w", err)
		}
	}
	if c.Timing.RampStepMS > c.Timing.InitialRepeatMS {
		return fmt.Errorf("timing: ramp_step_ms %d exceeds initial_repeat_ms %d",
			c.Timing.RampStepMS, c.Timing.InitialRepeatMS)
	}
	if c.Timing.MinHoldMS > c.Timing.InitialRepeatMS {
		return fmt.Errorf("timing: min_hold_ms %d exceeds initial_repeat_ms %d",
			c.Timing.MinHoldMS, c.Timing.InitialRepeatMS)
	}
	return nil
}

// ClockTiming converts to the clock core's timing constants.
func (c Config) ClockTiming() clock.Timing {
	return clock.Timing{
		MinHoldMS:       c.Timing.MinHoldMS,
		InitialRepeatMS: c.Timing.InitialRepeatMS,
		RampStepMS:      c.Timing.RampStepMS,
		TonePeriodMS:    c.Timing.TonePeriodMS,
		StabilizeMS:     c.Timing.StabilizeMS,
	}
}

// GPIOPins converts to the gpio pin map.
func (c Config) GPIOPins() gpio.Pins {
	return gpio.Pins{
		TimeSet:     c.Pins.TimeSet,
		AlarmSet:    c.Pins.AlarmSet,
		Minute:      c.Pins.Minute,
		Hour:        c.Pins.Hour,
		AlarmToggle: c.Pins.AlarmToggle,
		Segments:    c.Pins.Segments,
		Digits:      c.Pins.Digits,
		Tone:        c.Pins.Tone,
		Seconds:     c.Pins.Seconds,
		Dot:         c.Pins.Dot,
		AlarmLED:    c.Pins.AlarmLED,
	}
}
