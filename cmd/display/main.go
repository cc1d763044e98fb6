package main

import (
	"log"

	"github.com/relabs-tech/target_navigator/internal/app"
	"github.com/relabs-tech/target_navigator/internal/config"
)

func main() {
	log.Println("starting target-navigator OLED display (MQTT subscriber)")

	if err := config.InitGlobal("navigator_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunDisplay(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
