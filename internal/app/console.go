package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/target_navigator/internal/config"
	"github.com/relabs-tech/target_navigator/internal/geo"
	"github.com/relabs-tech/target_navigator/internal/nav"
)

// RunConsole subscribes to the navigation topic and prints every snapshot
// with the distance, bearing, heading, and turn hint.
func RunConsole() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	navToken := client.Subscribe(cfg.TopicNavigation, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var d nav.Data
		if err := json.Unmarshal(msg.Payload(), &d); err != nil {
			log.Printf("console: snapshot unmarshal error: %v", err)
			return
		}
		fmt.Println(formatSnapshot(d, cfg.AlignmentThresholdDeg))
	})
	navToken.Wait()
	if navToken.Error() != nil {
		return navToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicNavigation)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	return nil
}

// formatSnapshot renders one line per snapshot, leaving dashes for fields
// whose stream has not delivered yet.
func formatSnapshot(d nav.Data, thresholdDeg float64) string {
	dist := "--"
	if d.DistanceMeters != nil {
		dist = geo.FormatDistance(*d.DistanceMeters)
	}

	bearing := "--"
	if d.BearingDeg != nil {
		bearing = fmt.Sprintf("%6.1f", *d.BearingDeg)
	}

	heading := "--"
	if d.DeviceHeadingDeg != nil {
		heading = fmt.Sprintf("%6.1f", *d.DeviceHeadingDeg)
	}

	hint := d.TurnDirection(thresholdDeg)
	if hint == "" {
		hint = "--"
	}

	return fmt.Sprintf("[NAV]  dist=%-10s bearing=%s  heading=%s  %s", dist, bearing, heading, hint)
}
