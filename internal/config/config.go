package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// Target
	TargetLatitude  float64
	TargetLongitude float64

	// Filtering
	HeadingFilterAlpha    float64 // circular heading filter
	LowPassAlpha          float64 // scalar smoothing, e.g. the displayed distance
	AlignmentThresholdDeg float64

	// MQTT
	MQTTBroker            string
	MQTTClientIDNavigator string
	MQTTClientIDGPS       string
	MQTTClientIDConsole   string
	MQTTClientIDWeb       string
	MQTTClientIDDisplay   string

	// Topics
	TopicNavigation string
	TopicGPS        string
	TopicCalibrate  string

	// Orientation source: "mock" or "magnetometer"
	OrientationSource         string
	OrientationSampleInterval int // milliseconds

	// Location source: "mqtt" (fixes from the GPS producer) or "mock"
	LocationSource string

	// Magnetometer (HMC5883L over I2C)
	MagI2CBus  string
	MagI2CAddr uint16

	// GPS
	GPSSerialPort    string
	GPSBaudRate      int
	GPSMinDistanceM  float64 // min movement before a fix is published
	GPSMinIntervalMS int     // min elapsed time before a fix is published

	// Web Server
	WebServerPort int

	// Display
	DisplayUpdateInterval int // milliseconds
}

// Package-level unexported variables for the process-wide configuration:
// InitGlobal sets it exactly once, Get reads it under an RLock so every
// runner goroutine can share the same instance.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaults returns a Config preloaded with the reference tuning, so a config
// file only has to name the target and the broker.
func defaults() *Config {
	return &Config{
		HeadingFilterAlpha:    0.2,
		LowPassAlpha:          0.3,
		AlignmentThresholdDeg: 10,

		MQTTClientIDNavigator: "navigator",
		MQTTClientIDGPS:       "navigator-gps-producer",
		MQTTClientIDConsole:   "navigator-console",
		MQTTClientIDWeb:       "navigator-web",
		MQTTClientIDDisplay:   "navigator-display",

		TopicNavigation: "navigator/navigation",
		TopicGPS:        "navigator/gps",
		TopicCalibrate:  "navigator/calibrate",

		OrientationSource:         "mock",
		OrientationSampleInterval: 100, // 10 Hz

		LocationSource: "mqtt",

		MagI2CBus:  "1",
		MagI2CAddr: 0x1E,

		GPSSerialPort:    "/dev/serial0",
		GPSBaudRate:      9600,
		GPSMinDistanceM:  1.0,
		GPSMinIntervalMS: 500,

		WebServerPort: 8080,

		DisplayUpdateInterval: 250,
	}
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Target
	case "TARGET_LATITUDE":
		lat, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid TARGET_LATITUDE %q: %w", value, err)
		}
		c.TargetLatitude = lat
	case "TARGET_LONGITUDE":
		lon, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid TARGET_LONGITUDE %q: %w", value, err)
		}
		c.TargetLongitude = lon

	// Filtering
	case "HEADING_FILTER_ALPHA":
		alpha, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid HEADING_FILTER_ALPHA %q: %w", value, err)
		}
		if alpha < 0 || alpha > 1 {
			return fmt.Errorf("HEADING_FILTER_ALPHA must be in [0,1], got %v", alpha)
		}
		c.HeadingFilterAlpha = alpha
	case "LOWPASS_ALPHA":
		alpha, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid LOWPASS_ALPHA %q: %w", value, err)
		}
		if alpha < 0 || alpha > 1 {
			return fmt.Errorf("LOWPASS_ALPHA must be in [0,1], got %v", alpha)
		}
		c.LowPassAlpha = alpha
	case "ALIGNMENT_THRESHOLD_DEG":
		deg, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid ALIGNMENT_THRESHOLD_DEG %q: %w", value, err)
		}
		if deg <= 0 || deg >= 180 {
			return fmt.Errorf("ALIGNMENT_THRESHOLD_DEG must be in (0,180), got %v", deg)
		}
		c.AlignmentThresholdDeg = deg

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_NAVIGATOR":
		c.MQTTClientIDNavigator = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_NAVIGATION":
		c.TopicNavigation = value
	case "TOPIC_GPS":
		c.TopicGPS = value
	case "TOPIC_CALIBRATE":
		c.TopicCalibrate = value

	// Orientation source
	case "ORIENTATION_SOURCE":
		if value != "mock" && value != "magnetometer" {
			return fmt.Errorf("ORIENTATION_SOURCE must be \"mock\" or \"magnetometer\", got %q", value)
		}
		c.OrientationSource = value
	case "ORIENTATION_SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid ORIENTATION_SAMPLE_INTERVAL %q: %w", value, err)
		}
		if interval <= 0 {
			return fmt.Errorf("ORIENTATION_SAMPLE_INTERVAL must be positive, got %d", interval)
		}
		c.OrientationSampleInterval = interval

	// Location source
	case "LOCATION_SOURCE":
		if value != "mqtt" && value != "mock" {
			return fmt.Errorf("LOCATION_SOURCE must be \"mqtt\" or \"mock\", got %q", value)
		}
		c.LocationSource = value

	// Magnetometer
	case "MAG_I2C_BUS":
		c.MagI2CBus = value
	case "MAG_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid MAG_I2C_ADDR %q: %w", value, err)
		}
		c.MagI2CAddr = uint16(addr)

	// GPS
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_BAUD_RATE %q: %w", value, err)
		}
		c.GPSBaudRate = rate
	case "GPS_MIN_DISTANCE_M":
		dist, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid GPS_MIN_DISTANCE_M %q: %w", value, err)
		}
		if dist < 0 {
			return fmt.Errorf("GPS_MIN_DISTANCE_M must be non-negative, got %v", dist)
		}
		c.GPSMinDistanceM = dist
	case "GPS_MIN_INTERVAL_MS":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_MIN_INTERVAL_MS %q: %w", value, err)
		}
		if interval < 0 {
			return fmt.Errorf("GPS_MIN_INTERVAL_MS must be non-negative, got %d", interval)
		}
		c.GPSMinIntervalMS = interval

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set and in range.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TargetLatitude == 0 && c.TargetLongitude == 0 {
		return fmt.Errorf("TARGET_LATITUDE and TARGET_LONGITUDE are required")
	}
	if c.TargetLatitude < -90 || c.TargetLatitude > 90 {
		return fmt.Errorf("TARGET_LATITUDE must be in [-90,90], got %v", c.TargetLatitude)
	}
	if c.TargetLongitude < -180 || c.TargetLongitude > 180 {
		return fmt.Errorf("TARGET_LONGITUDE must be in [-180,180], got %v", c.TargetLongitude)
	}
	if c.GPSBaudRate <= 0 {
		return fmt.Errorf("GPS_BAUD_RATE must be positive, got %d", c.GPSBaudRate)
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once so this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
