// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

//go:build eeprom

package store

import (
	"io"

	"github.com/relabs-tech/sensor_calibration/internal/config"
	"github.com/relabs-tech/sensor_calibration/internal/eeprom"
)

// PlatformName identifies the compiled-in backend.
const PlatformName = "eeprom"

// Platform is the backend compiled into this binary.
type Platform = eeprom.Backend

// Open builds and begins the platform backend.
func Open(cfg *config.Config) (*Platform, io.Closer, error) {
	return OpenEEPROM(cfg)
}
