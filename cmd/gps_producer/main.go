package main

import (
	"log"

	"github.com/relabs-tech/target_navigator/internal/app"
	"github.com/relabs-tech/target_navigator/internal/config"
)

func main() {
	log.Println("starting target-navigator GPS producer (NMEA -> MQTT)")

	if err := config.InitGlobal("navigator_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunGPSProducer(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
