package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/target_navigator/internal/config"
	"github.com/relabs-tech/target_navigator/internal/filter"
	"github.com/relabs-tech/target_navigator/internal/geo"
	"github.com/relabs-tech/target_navigator/internal/nav"
)

// RunDisplay shows the latest distance, bearing, and turn hint on an SSD1306
// OLED, refreshed on the configured interval.
func RunDisplay() error {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("display: initialized")

	if err := showSplash(dev); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	var (
		mu       sync.RWMutex
		last     nav.Data
		haveData bool
	)

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDDisplay)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	navToken := client.Subscribe(cfg.TopicNavigation, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var d nav.Data
		if err := json.Unmarshal(msg.Payload(), &d); err != nil {
			log.Printf("display: snapshot unmarshal error: %v", err)
			return
		}
		mu.Lock()
		last = d
		haveData = true
		mu.Unlock()
	})
	navToken.Wait()
	if navToken.Error() != nil {
		return navToken.Error()
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	// Smooth the displayed distance so the last digit does not flicker
	// between refreshes.
	distFilter := filter.NewLowPass(cfg.LowPassAlpha)

	for range ticker.C {
		mu.RLock()
		d, have := last, haveData
		mu.RUnlock()
		if !have {
			continue
		}
		if d.DistanceMeters != nil {
			smoothed := distFilter.Update(*d.DistanceMeters)
			d.DistanceMeters = &smoothed
		} else {
			distFilter.Reset()
		}
		if err := drawSnapshot(dev, d, cfg.AlignmentThresholdDeg); err != nil {
			log.Printf("display: draw error: %v", err)
		}
	}
	return nil
}

func showSplash(dev *ssd1306.Dev) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	drawer.Dot = fixed.P(15, 26)
	drawer.DrawBytes([]byte("Target"))

	drawer.Dot = fixed.P(15, 43)
	drawer.DrawBytes([]byte("Navigator"))

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

// drawSnapshot renders four lines: distance, bearing, heading, turn hint.
// Fields whose stream has not delivered yet show as dashes.
func drawSnapshot(dev *ssd1306.Dev, d nav.Data, thresholdDeg float64) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	dist := "--"
	if d.DistanceMeters != nil {
		dist = geo.FormatDistance(*d.DistanceMeters)
	}
	bearing := "--"
	if d.BearingDeg != nil {
		bearing = fmt.Sprintf("%.0f", *d.BearingDeg)
	}
	heading := "--"
	if d.DeviceHeadingDeg != nil {
		heading = fmt.Sprintf("%.0f", *d.DeviceHeadingDeg)
	}
	hint := d.TurnDirection(thresholdDeg)
	if hint == "" {
		hint = "waiting for fix"
	}

	drawer.Dot = fixed.P(0, 13)
	drawer.DrawBytes([]byte("dist " + dist))

	drawer.Dot = fixed.P(0, 26)
	drawer.DrawBytes([]byte("brg  " + bearing))

	drawer.Dot = fixed.P(0, 39)
	drawer.DrawBytes([]byte("hdg  " + heading))

	drawer.Dot = fixed.P(0, 52)
	drawer.DrawBytes([]byte(hint))

	return dev.Draw(dev.Bounds(), img, image.Point{})
}
