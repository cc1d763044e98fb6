package app

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/target_navigator/internal/config"
	"github.com/relabs-tech/target_navigator/internal/geo"
	"github.com/relabs-tech/target_navigator/internal/location"
	"github.com/relabs-tech/target_navigator/internal/nav"
)

// RunGPSProducer opens the GPS serial port, parses NMEA sentences, and
// publishes combined GPS fixes as JSON to the GPS topic. Fixes are gated by
// the configured minimum movement and minimum interval so the navigator is
// not flooded with stationary jitter.
func RunGPSProducer() error {
	cfg := config.Get()

	// ---- 1) Connect to MQTT broker ----
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDGPS)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	defer client.Disconnect(250)
	log.Printf("gps: connected to MQTT broker at %s", cfg.MQTTBroker)

	// ---- 2) Open GPS serial port ----
	serialOpts := serial.OpenOptions{
		PortName:              cfg.GPSSerialPort,
		BaudRate:              uint(cfg.GPSBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("%w: serial port %s: %v", nav.ErrPermissionDenied, cfg.GPSSerialPort, err)
		}
		return fmt.Errorf("%w: serial port %s: %v", nav.ErrSourceUnavailable, cfg.GPSSerialPort, err)
	}
	defer port.Close()
	log.Printf("gps: serial port opened on %s at %d baud", cfg.GPSSerialPort, cfg.GPSBaudRate)

	reader := bufio.NewReader(port)

	minInterval := time.Duration(cfg.GPSMinIntervalMS) * time.Millisecond
	var lastPublished geo.Coordinate
	var lastPublishedAt time.Time
	havePublished := false

	var current location.Fix

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			log.Printf("gps: read error: %v", err)
			return fmt.Errorf("%w: serial read: %v", nav.ErrSourceUnavailable, err)
		}

		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			// Noisy receivers emit partial sentences; skip quietly.
			continue
		}

		if sentence.DataType() != nmea.TypeRMC {
			continue
		}
		m := sentence.(nmea.RMC)

		current.Time = m.Time.String()
		current.Date = m.Date.String()
		current.Latitude = m.Latitude
		current.Longitude = m.Longitude
		current.SpeedKnots = m.Speed
		current.CourseDeg = m.Course
		current.Validity = string(m.Validity)

		if current.Validity == "V" {
			continue
		}

		// Movement/interval gate: publish when the receiver has moved the
		// configured minimum distance, or the minimum interval has elapsed.
		pos := current.Coordinate()
		if havePublished {
			moved := geo.Distance(lastPublished, pos)
			if moved < cfg.GPSMinDistanceM && time.Since(lastPublishedAt) < minInterval {
				continue
			}
		}

		payload, err := json.Marshal(current)
		if err != nil {
			log.Printf("gps: fix marshal error: %v", err)
			continue
		}
		if token := client.Publish(cfg.TopicGPS, 0, true, payload); token.Wait() && token.Error() != nil {
			log.Printf("gps: publish error: %v", token.Error())
			continue
		}

		lastPublished = pos
		lastPublishedAt = time.Now()
		havePublished = true

		log.Printf("gps: published fix lat=%.6f lon=%.6f speed=%.1fkn course=%.1f",
			current.Latitude, current.Longitude, current.SpeedKnots, current.CourseDeg)
	}
}
