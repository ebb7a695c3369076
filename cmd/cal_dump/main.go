// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

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

	mgr, closer, err := store.OpenManager(config.Get())
	if err != nil {
		log.Fatalf("failed to open %s calibration store: %v", store.PlatformName, err)
	}
	defer closer.Close()

	fmt.Printf("backend: %s (eeprom=%t flash=%t)\n", store.PlatformName, mgr.HasEEPROM(), mgr.HasFlash())
	fmt.Printf("active:  %v\n", mgr.Record)
	if err := mgr.PrintSavedCalibration(os.Stdout); err != nil {
		log.Fatalf("failed to print saved calibration: %v", err)
	}
}
