// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/relabs-tech/sensor_calibration/internal/eeprom"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader("# nothing set\n\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.EEPROMAddr != 60 || cfg.CalFilename != "sensor_calib.json" || cfg.EEPROMDevice != EEPROMDeviceImage {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestParseValues(t *testing.T) {
	src := `
EEPROM_DEVICE = i2c
EEPROM_ADDR=0x40
EEPROM_I2C_ADDR=0x57
EEPROM_I2C_BUS=/dev/i2c-1
EEPROM_WRITE_CYCLE_MS=10
CAL_FILENAME=imu.json
CAL_FS_DIR=/media/sd
MQTT_BROKER=tcp://pi.local:1883
TOPIC_EVENT_RAW=a/raw
TOPIC_EVENT_CORRECTED=a/corrected
SERIAL_PORT=/dev/ttyUSB0
SERIAL_BAUD_RATE=9600
WEB_SERVER_PORT=9090
`
	cfg, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	checks := []struct {
		name      string
		got, want interface{}
	}{
		{"EEPROMDevice", cfg.EEPROMDevice, "i2c"},
		{"EEPROMAddr", cfg.EEPROMAddr, 0x40},
		{"EEPROMI2CAddr", cfg.EEPROMI2CAddr, uint16(0x57)},
		{"EEPROMI2CBus", cfg.EEPROMI2CBus, "/dev/i2c-1"},
		{"EEPROMWriteCycleMS", cfg.EEPROMWriteCycleMS, 10},
		{"CalFilename", cfg.CalFilename, "imu.json"},
		{"CalFSDir", cfg.CalFSDir, "/media/sd"},
		{"MQTTBroker", cfg.MQTTBroker, "tcp://pi.local:1883"},
		{"TopicEventRaw", cfg.TopicEventRaw, "a/raw"},
		{"TopicEventCorrected", cfg.TopicEventCorrected, "a/corrected"},
		{"SerialPort", cfg.SerialPort, "/dev/ttyUSB0"},
		{"SerialBaudRate", cfg.SerialBaudRate, 9600},
		{"WebServerPort", cfg.WebServerPort, 9090},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"no equals":      "EEPROM_ADDR 60",
		"unknown key":    "FOO=bar",
		"bad int":        "EEPROM_ADDR=sixty",
		"bad device":     "EEPROM_DEVICE=floppy",
		"no room":        "EEPROM_ADDR=4090",
		"bad port":       "WEB_SERVER_PORT=70000",
		"i2c addr range": "EEPROM_I2C_ADDR=0x80",
		"neg cycle":      "EEPROM_WRITE_CYCLE_MS=-1",
		"empty file":     "CAL_FILENAME=",
	}
	for name, src := range cases {
		if _, err := Parse(strings.NewReader(src)); err == nil {
			t.Errorf("%s: Parse(%q) succeeded", name, src)
		}
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cal.yaml")
	src := "EEPROM_DEVICE: mem\nEEPROM_ADDR: 0\nWEB_SERVER_PORT: 8181\nCAL_FILENAME: board.json\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EEPROMDevice != EEPROMDeviceMem || cfg.EEPROMAddr != 0 || cfg.WebServerPort != 8181 || cfg.CalFilename != "board.json" {
		t.Errorf("yaml values not applied: %+v", cfg)
	}
}

func TestLoadYAMLRejectsNested(t *testing.T) {
	_, err := ParseYAML(strings.NewReader("EEPROM_ADDR:\n  base: 60\n"))
	if err == nil {
		t.Error("nested YAML value accepted")
	}
}

func TestLoadText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration_config.txt")
	if err := os.WriteFile(path, []byte("EEPROM_ADDR=100\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.EEPROMAddr != 100 {
		t.Errorf("EEPROMAddr = %d", cfg.EEPROMAddr)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("Load of missing file succeeded")
	}
}

func TestLoadShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "sensor_calib_config.txt"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EEPROMDevice != EEPROMDeviceImage || cfg.EEPROMAddr != 60 || cfg.EEPROMI2CBus != "" {
		t.Errorf("eeprom settings = %q %d %q", cfg.EEPROMDevice, cfg.EEPROMAddr, cfg.EEPROMI2CBus)
	}
	if cfg.TopicCalibrationSet != "inertial/calibration/set" || cfg.SerialBaudRate != 115200 {
		t.Errorf("transport settings = %q %d", cfg.TopicCalibrationSet, cfg.SerialBaudRate)
	}
}

func TestEEPROMDefaultsAndPacketRoom(t *testing.T) {
	cfg := Defaults()
	if cfg.EEPROMAddr != eeprom.DefaultAddr || cfg.EEPROMI2CAddr != eeprom.DefaultI2CAddr ||
		time.Duration(cfg.EEPROMWriteCycleMS)*time.Millisecond != eeprom.DefaultWriteCycle {
		t.Errorf("eeprom defaults = %d 0x%02X %dms", cfg.EEPROMAddr, cfg.EEPROMI2CAddr, cfg.EEPROMWriteCycleMS)
	}

	last := fmt.Sprintf("EEPROM_SIZE=256\nEEPROM_ADDR=%d\n", 256-eeprom.PacketSize)
	if _, err := Parse(strings.NewReader(last)); err != nil {
		t.Errorf("packet ending at the last byte rejected: %v", err)
	}
	over := fmt.Sprintf("EEPROM_SIZE=256\nEEPROM_ADDR=%d\n", 256-eeprom.PacketSize+1)
	if _, err := Parse(strings.NewReader(over)); err == nil {
		t.Error("packet past the end accepted")
	}
}
