// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/sensor_calibration/internal/app"
	"github.com/relabs-tech/sensor_calibration/internal/config"
)

func main() {
	configPath := flag.String("config", "sensor_calib_config.txt", "configuration file")
	sensor := flag.String("sensor", "mock", "sensor name stamped on each sample")
	flag.Parse()

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunMockProducer(config.Get(), *sensor); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
