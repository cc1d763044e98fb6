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
	log.Println("starting target-navigator fusion producer")

	if err := config.InitGlobal("navigator_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunNavigator(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
