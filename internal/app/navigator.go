package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/target_navigator/internal/config"
	"github.com/relabs-tech/target_navigator/internal/filter"
	"github.com/relabs-tech/target_navigator/internal/geo"
	"github.com/relabs-tech/target_navigator/internal/location"
	"github.com/relabs-tech/target_navigator/internal/nav"
	"github.com/relabs-tech/target_navigator/internal/orientation"
	"github.com/relabs-tech/target_navigator/internal/sensors"
)

// How far south of the target the simulated walk starts.
const mockWalkStartMeters = 250.0

// calibrateRequest is the payload on the calibrate topic. The web runner
// publishes it; the navigator, which owns the fusion engine, applies it.
type calibrateRequest struct {
	Action  string  `json:"action"` // "set" or "reset"
	Heading float64 `json:"heading,omitempty"`
}

// RunNavigator wires the orientation and location streams into the fusion
// engine, the tracker, and the aggregator, and publishes every navigation
// snapshot to MQTT. It blocks until SIGINT/SIGTERM.
func RunNavigator() error {
	cfg := config.Get()
	target := geo.Coordinate{Latitude: cfg.TargetLatitude, Longitude: cfg.TargetLongitude}

	engine := orientation.NewEngine(filter.NewCircular(cfg.HeadingFilterAlpha))
	tracker := location.NewTracker()
	aggregator := nav.NewAggregator(target)
	defer engine.Close()
	defer tracker.Close()

	// Stream wiring: each source update flows through its reducer.
	tracker.Subscribe(aggregator.UpdateLocation)
	engine.Subscribe(func(heading, _, _ float64) {
		aggregator.UpdateHeading(heading)
	})

	// ---- MQTT ----
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDNavigator)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	defer client.Disconnect(250)
	log.Printf("navigator: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Publish every snapshot, retained so late subscribers get the latest.
	aggregator.Subscribe(func(d nav.Data) {
		payload, err := json.Marshal(d)
		if err != nil {
			log.Printf("navigator: snapshot marshal error: %v", err)
			return
		}
		if token := client.Publish(cfg.TopicNavigation, 0, true, payload); token.Wait() && token.Error() != nil {
			log.Printf("navigator: publish error: %v", token.Error())
		}
	})

	// Calibration requests arrive over MQTT from the web runner.
	calToken := client.Subscribe(cfg.TopicCalibrate, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var req calibrateRequest
		if err := json.Unmarshal(msg.Payload(), &req); err != nil {
			log.Printf("navigator: calibrate unmarshal error: %v", err)
			return
		}
		switch req.Action {
		case "set":
			engine.Calibrate(req.Heading)
			log.Printf("navigator: calibrated to true heading %.1f", req.Heading)
		case "reset":
			engine.ResetCalibration()
			log.Println("navigator: calibration reset")
		default:
			log.Printf("navigator: unknown calibrate action %q", req.Action)
		}
	})
	if calToken.Wait() && calToken.Error() != nil {
		return fmt.Errorf("mqtt subscribe %s: %w", cfg.TopicCalibrate, calToken.Error())
	}

	// ---- Location stream ----
	stop := make(chan struct{})
	defer close(stop)

	switch cfg.LocationSource {
	case "mqtt":
		gpsToken := client.Subscribe(cfg.TopicGPS, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var fix location.Fix
			if err := json.Unmarshal(msg.Payload(), &fix); err != nil {
				log.Printf("navigator: gps unmarshal error: %v", err)
				return
			}
			if fix.Validity == "V" {
				return
			}
			tracker.Ingest(fix.Coordinate())
		})
		if gpsToken.Wait() && gpsToken.Error() != nil {
			return fmt.Errorf("mqtt subscribe %s: %w", cfg.TopicGPS, gpsToken.Error())
		}
		log.Printf("navigator: subscribed to GPS fixes on %s", cfg.TopicGPS)
	case "mock":
		walk := location.NewMockWalk(target, mockWalkStartMeters)
		go func() {
			ticker := time.NewTicker(time.Duration(cfg.GPSMinIntervalMS) * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-stop:
					return
				case <-ticker.C:
					pos, err := walk.Next()
					if err != nil {
						log.Printf("navigator: mock walk error: %v", err)
						continue
					}
					tracker.Ingest(pos)
				}
			}
		}()
		log.Println("navigator: using simulated walk toward the target")
	}

	// ---- Orientation stream ----
	// Exactly one of the fused-rotation and compass-only paths runs; feeding
	// both would give the heading two conflicting writers.
	interval := time.Duration(cfg.OrientationSampleInterval) * time.Millisecond

	switch cfg.OrientationSource {
	case "magnetometer":
		mag, err := sensors.NewHMC5883(cfg.MagI2CBus, cfg.MagI2CAddr)
		if err != nil {
			return fmt.Errorf("magnetometer init: %w", err)
		}
		defer mag.Close()
		log.Printf("navigator: magnetometer on i2c bus %s addr 0x%X", cfg.MagI2CBus, cfg.MagI2CAddr)

		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-stop:
					return
				case <-ticker.C:
					v, err := mag.Sense()
					if err != nil {
						log.Printf("navigator: magnetometer read error: %v", err)
						continue
					}
					engine.IngestCompass(v)
				}
			}
		}()
	case "mock":
		src := orientation.NewMockSource()
		log.Println("navigator: using mock orientation source")

		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-stop:
					return
				case <-ticker.C:
					s, err := src.Next()
					if err != nil {
						log.Printf("navigator: mock orientation error: %v", err)
						continue
					}
					engine.IngestSample(s)
				}
			}
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("navigator: shutting down")
	return nil
}
