// Command segclock drives a 4-digit 7-segment alarm clock over GPIO and
// publishes clock events to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/segclock/internal/clock"
	"github.com/sweeney/segclock/internal/config"
	"github.com/sweeney/segclock/internal/display"
	"github.com/sweeney/segclock/internal/gpio"
	"github.com/sweeney/segclock/internal/history"
	"github.com/sweeney/segclock/internal/mqtt"
	"github.com/sweeney/segclock/internal/status"
	"github.com/sweeney/segclock/internal/web"
)

// overrides holds the flag-bound values that can shadow the config file.
type overrides struct {
	broker      *string
	httpAddr    *string
	historyPath *string
	alarm       *string
	armed       *bool
}

func main() {
	def := config.Default()
	cfgPath := flag.String("config", "", "YAML config file (defaults apply if empty)")
	ov := overrides{
		broker:      flag.String("broker", def.Broker, "MQTT broker address (overrides config)"),
		httpAddr:    flag.String("http", def.HTTPAddr, "HTTP status address, empty to disable (overrides config)"),
		historyPath: flag.String("history", def.HistoryPath, "SQLite event log path, empty to disable (overrides config)"),
		alarm:       flag.String("alarm", "", "preset alarm time HH:MM (overrides config)"),
		armed:       flag.Bool("armed", false, "arm the alarm at boot (overrides config)"),
	}
	tick := flag.Duration("tick", time.Millisecond, "control tick interval")
	second := flag.Duration("second", time.Second, "seconds tick interval")
	heartbeat := flag.Duration("heartbeat", time.Hour, "heartbeat interval (0 to disable)")
	printSwitches := flag.Bool("print-switches", false, "print switch states and exit")

	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	applyFlags(&cfg, flag.CommandLine, ov)

	if err := run(cfg, *tick, *second, *heartbeat, *printSwitches); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// applyFlags copies explicitly-set flags over the loaded config, so the
// precedence is flags > file > defaults.
func applyFlags(cfg *config.Config, fs *flag.FlagSet, ov overrides) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "broker":
			cfg.Broker = *ov.broker
		case "http":
			cfg.HTTPAddr = *ov.httpAddr
		case "history":
			cfg.HistoryPath = *ov.historyPath
		case "alarm":
			cfg.Alarm = *ov.alarm
		case "armed":
			cfg.Armed = *ov.armed
		}
	})
}

func run(cfg config.Config, tick, second, heartbeat time.Duration, printSwitches bool) error {
	// Initialize GPIO
	io, err := gpio.NewRealIO(cfg.GPIOPins())
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer io.Close()

	// Print switches mode
	if printSwitches {
		sw, err := io.Read()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Printf("time-set: %v, alarm-set: %v, minute: %v, hour: %v, alarm-toggle: %v\n",
			sw.TimeSet, sw.AlarmSet, sw.Minute, sw.Hour, sw.AlarmToggle)
		return nil
	}

	// Initialize the clock core
	core := clock.NewCore(cfg.ClockTiming())
	if cfg.Alarm != "" {
		d, err := clock.ParseDigits(cfg.Alarm)
		if err != nil {
			return fmt.Errorf("alarm preset: %w", err)
		}
		core.SetAlarm(d)
	}
	if cfg.Armed {
		core.Arm()
	}

	// Initialize MQTT
	publisher := mqtt.NewRealPublisher(cfg.Broker)
	defer publisher.Close()

	// Initialize the event log
	var hist *history.Store
	if cfg.HistoryPath != "" {
		hist, err = history.New(cfg.HistoryPath)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer hist.Close()
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		TickMs:      tick.Milliseconds(),
		SecondMs:    second.Milliseconds(),
		HeartbeatMs: heartbeat.Milliseconds(),
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTPAddr,
		HistoryPath: cfg.HistoryPath,
	})

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		var events web.EventSource
		if hist != nil {
			events = hist
		}
		srv := web.New(cfg.HTTPAddr, tracker, events)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	log.Printf("started: tick=%v second=%v broker=%s heartbeat=%v alarm=%q armed=%v",
		tick, second, cfg.Broker, heartbeat, cfg.Alarm, cfg.Armed)

	tickT := time.NewTicker(tick)
	defer tickT.Stop()
	secondT := time.NewTicker(second)
	defer secondT.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(core, io, io, publisher, publisher, hist, tracker, heartbeat, time.Now, tickT.C, secondT.C, sigCh)
}

// runLoop owns the clock core: nobody else mutates it, so the core needs
// no locking and every reader works from value snapshots.
func runLoop(core *clock.Core, in gpio.Reader, out gpio.Writer, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, hist *history.Store, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick, second <-chan time.Time, sig <-chan os.Signal) error {
	lastHeartbeat := now()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				tracker.Update(core.Snapshot(), core.Counts())
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			sw, err := in.Read()
			if err != nil {
				log.Printf("gpio read error: %v", err)
				continue
			}

			events := core.TickMilli(buttons(sw))
			emitEvents(now(), events, publisher, hist)

			if err := out.WriteFrame(display.Render(core.Snapshot(), sw)); err != nil {
				log.Printf("gpio write error: %v", err)
			}

		case <-second:
			sw, err := in.Read()
			if err != nil {
				log.Printf("gpio read error: %v", err)
				continue
			}

			events := core.TickSecond(buttons(sw))
			t := now()
			emitEvents(t, events, publisher, hist)

			// Update status tracker for HTTP consumers
			if tracker != nil {
				tracker.Update(core.Snapshot(), core.Counts())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

			// Check for heartbeat
			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				snap := core.Snapshot()
				log.Printf("heartbeat: mode=%s time=%s alarm=%s armed=%v",
					snap.Mode, snap.Current, snap.Alarm, snap.Armed)

				hbEvent := mqtt.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

// buttons maps a raw switch sample to the clock core's input.
func buttons(sw gpio.Switches) clock.Buttons {
	return clock.Buttons{
		TimeSet:     sw.TimeSet,
		AlarmSet:    sw.AlarmSet,
		Minute:      sw.Minute,
		Hour:        sw.Hour,
		AlarmToggle: sw.AlarmToggle,
	}
}

// emitEvents logs, publishes, and records clock events. Failures are
// logged, never fatal: the clock keeps time even when the network or
// the disk is down.
func emitEvents(t time.Time, events []clock.Event, publisher mqtt.Publisher, hist *history.Store) {
	for _, ev := range events {
		log.Printf("event: %s (time=%s alarm=%s armed=%v)", ev.Type, ev.Time, ev.Alarm, ev.Armed)

		if err := publisher.Publish(mqtt.ClockEvent{
			Timestamp: t,
			Type:      ev.Type,
			Time:      ev.Time,
			Alarm:     ev.Alarm,
			Armed:     ev.Armed,
		}); err != nil {
			log.Printf("publish error: %v", err)
		}

		if hist != nil {
			if err := hist.Record(t, ev); err != nil {
				log.Printf("history record error: %v", err)
			}
		}
	}
}
