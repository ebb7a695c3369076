// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

//go:build eeprom

package store

import (
	"os"
	"testing"

	"github.com/relabs-tech/sensor_calibration/internal/calibration"
	"github.com/relabs-tech/sensor_calibration/internal/config"
	"github.com/relabs-tech/sensor_calibration/internal/eeprom"
)

func TestPlatformIsEEPROM(t *testing.T) {
	cfg := testConfig(t)
	cfg.EEPROMAddr = 100
	mgr, closer, err := OpenManager(cfg)
	if err != nil {
		t.Fatalf("OpenManager: %v", err)
	}
	defer closer.Close()

	var b *eeprom.Backend = mgr.Backend()
	if PlatformName != "eeprom" || !mgr.HasEEPROM() || mgr.HasFlash() || b.Addr() != 100 {
		t.Errorf("platform %s: eeprom=%t flash=%t addr=%d", PlatformName, mgr.HasEEPROM(), mgr.HasFlash(), b.Addr())
	}

	mgr.Record.MagSoftIron[1], mgr.Record.MagSoftIron[3] = 0.25, 0.25
	if err := mgr.Save(); err != nil {
		t.Fatal(err)
	}
	img, err := os.ReadFile(cfg.EEPROMImage)
	if err != nil {
		t.Fatal(err)
	}
	if img[100] != eeprom.Magic[0] || img[101] != eeprom.Magic[1] {
		t.Errorf("image bytes at base = 0x%02X 0x%02X", img[100], img[101])
	}
}

func TestPlatformEEPROMMemStartsEmpty(t *testing.T) {
	cfg := testConfig(t)
	cfg.EEPROMDevice = config.EEPROMDeviceMem
	mgr, closer, err := OpenManager(cfg)
	if err != nil {
		t.Fatalf("OpenManager: %v", err)
	}
	defer closer.Close()
	if mgr.Record != calibration.NewRecord() {
		t.Errorf("record = %v, want defaults", mgr.Record)
	}
}
