// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package main

import (
	"log"

	"github.com/relabs-tech/target_navigator/internal/app"
	"github.com/relabs-tech/target_navigator/internal/config"
)

func main() {
	log.Println("starting target-navigator web server (MQTT subscriber)")

	if err := config.InitGlobal("navigator_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	log.Println("Note: calibration requires the navigator to be running")

	if err := app.RunWeb(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
