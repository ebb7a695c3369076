// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/sensor_calibration/internal/app"
	"github.com/relabs-tech/sensor_calibration/internal/config"
	"github.com/relabs-tech/sensor_calibration/internal/store"
)

func main() {
	configPath := flag.String("config", "sensor_calib_config.txt", "configuration file")
	flag.Parse()

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	mgr, closer, err := store.OpenManager(cfg)
	if err != nil {
		log.Fatalf("failed to open %s calibration store: %v", store.PlatformName, err)
	}
	defer closer.Close()

	if err := app.RunCorrector(cfg, app.NewSession(mgr)); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
