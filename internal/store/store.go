// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package store builds the calibration backend for the target from
// configuration. Which backend a binary carries is fixed at build time:
// build with -tags eeprom for the EEPROM backend, otherwise the filesystem
// JSON backend is used.
package store

import (
	"fmt"
	"io"
	"log"
	"time"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/sensor_calibration/internal/calibration"
	"github.com/relabs-tech/sensor_calibration/internal/config"
	"github.com/relabs-tech/sensor_calibration/internal/eeprom"
	"github.com/relabs-tech/sensor_calibration/internal/fsjson"
)

// OpenManager opens the platform backend and wraps it in a Manager. The
// record is loaded if one is stored; a missing or corrupt record leaves the
// defaults in place.
func OpenManager(cfg *config.Config) (*calibration.Manager[*Platform], io.Closer, error) {
	backend, closer, err := Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	mgr := calibration.NewManager(backend)
	if err := mgr.Load(); err != nil {
		log.Printf("store: no stored calibration, using defaults: %v", err)
	} else {
		log.Printf("store: loaded calibration: %v", mgr.Record)
	}
	return mgr, closer, nil
}

// OpenEEPROM builds the EEPROM storage named by cfg and begins the backend.
func OpenEEPROM(cfg *config.Config) (*eeprom.Backend, io.Closer, error) {
	var (
		storage eeprom.Storage
		closer  io.Closer = nopCloser{}
	)
	switch cfg.EEPROMDevice {
	case config.EEPROMDeviceMem:
		storage = eeprom.NewMemStorage(cfg.EEPROMSize)
	case config.EEPROMDeviceImage:
		storage = eeprom.NewImageStorage(cfg.EEPROMImage)
	case config.EEPROMDeviceI2C:
		if _, err := host.Init(); err != nil {
			return nil, nil, fmt.Errorf("store: periph host init: %w", err)
		}
		bus, err := i2creg.Open(cfg.EEPROMI2CBus)
		if err != nil {
			return nil, nil, fmt.Errorf("store: i2c open %q: %v: %w", cfg.EEPROMI2CBus, err, calibration.ErrStorageUnavailable)
		}
		log.Printf("store: EEPROM on %s at 0x%02X (%d bytes)", bus, cfg.EEPROMI2CAddr, cfg.EEPROMSize)
		storage = eeprom.NewI2CStorage(bus, cfg.EEPROMI2CAddr, cfg.EEPROMSize,
			time.Duration(cfg.EEPROMWriteCycleMS)*time.Millisecond)
		closer = bus
	default:
		return nil, nil, fmt.Errorf("store: unknown EEPROM device %q", cfg.EEPROMDevice)
	}

	b := eeprom.New(storage)
	if err := b.Begin(cfg.EEPROMAddr); err != nil {
		closer.Close()
		return nil, nil, fmt.Errorf("store: %w", err)
	}
	return b, closer, nil
}

// OpenFS begins the filesystem backend on CAL_FS_DIR when set, otherwise on
// the flash volume at FLASH_DIR.
func OpenFS(cfg *config.Config) (*fsjson.Backend, io.Closer, error) {
	var closer io.Closer = nopCloser{}
	var external fsjson.FileSystem
	if cfg.CalFSDir != "" {
		dir, err := fsjson.OpenDir(cfg.CalFSDir)
		if err != nil {
			return nil, nil, fmt.Errorf("store: %v: %w", err, calibration.ErrStorageUnavailable)
		}
		external = dir
		closer = dir
	}

	var flash fsjson.Mounter
	if cfg.FlashDir != "" {
		flash = fsjson.DirMounter{Dir: cfg.FlashDir}
	}

	b := fsjson.New(flash)
	if err := b.Begin(cfg.CalFilename, external); err != nil {
		closer.Close()
		return nil, nil, fmt.Errorf("store: %w", err)
	}
	return b, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
