// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/relabs-tech/sensor_calibration/internal/eeprom"
)

// EEPROM device kinds.
const (
	EEPROMDeviceMem   = "mem"
	EEPROMDeviceImage = "image"
	EEPROMDeviceI2C   = "i2c"
)

// Config holds all application configuration values.
type Config struct {
	// EEPROM backend
	EEPROMDevice       string // "mem", "image" or "i2c"
	EEPROMAddr         int    // base offset of the calibration packet
	EEPROMImage        string // host image file for "image"
	EEPROMSize         int    // bytes
	EEPROMI2CBus       string // "" opens the first bus
	EEPROMI2CAddr      uint16
	EEPROMWriteCycleMS int

	// Filesystem backend
	CalFilename string // file holding the JSON document
	CalFSDir    string // external filesystem; adopted instead of flash when set
	FlashDir    string // directory standing in for the on-board flash volume

	// MQTT
	MQTTBroker            string
	MQTTClientIDCorrector string
	MQTTClientIDConsole   string
	MQTTClientIDProducer  string

	// Topics
	TopicEventRaw       string
	TopicEventCorrected string
	TopicCalibration    string // retained copy of the active record
	TopicCalibrationSet string // records posted here are saved

	// Serial calibration packets
	SerialPort     string
	SerialBaudRate int

	// Web Server
	WebServerPort int

	// Timing
	MockSampleInterval int // milliseconds
}

// Defaults returns a Config with every optional value filled in.
func Defaults() *Config {
	return &Config{
		EEPROMDevice:       EEPROMDeviceImage,
		EEPROMAddr:         eeprom.DefaultAddr,
		EEPROMImage:        "./eeprom.bin",
		EEPROMSize:         4096,
		EEPROMI2CAddr:      eeprom.DefaultI2CAddr,
		EEPROMWriteCycleMS: int(eeprom.DefaultWriteCycle / time.Millisecond),

		CalFilename: "sensor_calib.json",
		FlashDir:    "./flash",

		MQTTBroker:            "tcp://localhost:1883",
		MQTTClientIDCorrector: "calibration-corrector",
		MQTTClientIDConsole:   "calibration-console",
		MQTTClientIDProducer:  "calibration-mock-producer",

		TopicEventRaw:       "inertial/events/raw",
		TopicEventCorrected: "inertial/events/corrected",
		TopicCalibration:    "inertial/calibration",
		TopicCalibrationSet: "inertial/calibration/set",

		SerialPort:     "/dev/ttyACM0",
		SerialBaudRate: 115200,

		WebServerPort: 8080,

		MockSampleInterval: 100,
	}
}

// Package-level singleton: InitGlobal sets it once, Get reads it.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct. Files ending
// in .yaml or .yml hold a flat mapping of the same keys.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		return ParseYAML(file)
	default:
		return Parse(file)
	}
}

// Parse reads KEY=VALUE lines. Blank lines and # comments are skipped.
func Parse(r io.Reader) (*Config, error) {
	cfg := Defaults()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseYAML reads a flat YAML mapping of config keys to scalars.
func ParseYAML(r io.Reader) (*Config, error) {
	var doc map[string]yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := Defaults()
	for key, node := range doc {
		if node.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("config key %s: expected a scalar value", key)
		}
		if err := cfg.setValue(key, node.Value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", node.Line, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// EEPROM backend
	case "EEPROM_DEVICE":
		c.EEPROMDevice = value
	case "EEPROM_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid EEPROM_ADDR %q: %w", value, err)
		}
		c.EEPROMAddr = int(addr)
	case "EEPROM_IMAGE":
		c.EEPROMImage = value
	case "EEPROM_SIZE":
		size, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid EEPROM_SIZE %q: %w", value, err)
		}
		c.EEPROMSize = size
	case "EEPROM_I2C_BUS":
		c.EEPROMI2CBus = value
	case "EEPROM_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 7)
		if err != nil {
			return fmt.Errorf("invalid EEPROM_I2C_ADDR %q: %w", value, err)
		}
		c.EEPROMI2CAddr = uint16(addr)
	case "EEPROM_WRITE_CYCLE_MS":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid EEPROM_WRITE_CYCLE_MS %q: %w", value, err)
		}
		if ms < 0 {
			return fmt.Errorf("EEPROM_WRITE_CYCLE_MS must be >= 0, got %d", ms)
		}
		c.EEPROMWriteCycleMS = ms

	// Filesystem backend
	case "CAL_FILENAME":
		c.CalFilename = value
	case "CAL_FS_DIR":
		c.CalFSDir = value
	case "FLASH_DIR":
		c.FlashDir = value

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_CORRECTOR":
		c.MQTTClientIDCorrector = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value

	// Topics
	case "TOPIC_EVENT_RAW":
		c.TopicEventRaw = value
	case "TOPIC_EVENT_CORRECTED":
		c.TopicEventCorrected = value
	case "TOPIC_CALIBRATION":
		c.TopicCalibration = value
	case "TOPIC_CALIBRATION_SET":
		c.TopicCalibrationSet = value

	// Serial
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, err)
		}
		c.SerialBaudRate = rate

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Timing
	case "MOCK_SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MOCK_SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.MockSampleInterval = interval

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that the values fit together.
func (c *Config) validate() error {
	switch c.EEPROMDevice {
	case EEPROMDeviceMem, EEPROMDeviceImage, EEPROMDeviceI2C:
	default:
		return fmt.Errorf("EEPROM_DEVICE must be mem, image or i2c, got %q", c.EEPROMDevice)
	}
	if c.EEPROMDevice == EEPROMDeviceImage && c.EEPROMImage == "" {
		return fmt.Errorf("EEPROM_IMAGE is required when EEPROM_DEVICE=image")
	}
	if c.EEPROMAddr+eeprom.PacketSize > c.EEPROMSize {
		return fmt.Errorf("EEPROM_ADDR %d leaves no room for the calibration packet in %d bytes", c.EEPROMAddr, c.EEPROMSize)
	}
	if c.CalFilename == "" {
		return fmt.Errorf("CAL_FILENAME is required")
	}
	if c.SerialBaudRate <= 0 {
		return fmt.Errorf("SERIAL_BAUD_RATE must be > 0, got %d", c.SerialBaudRate)
	}
	if c.WebServerPort <= 0 || c.WebServerPort > 65535 {
		return fmt.Errorf("WEB_SERVER_PORT must be 1-65535, got %d", c.WebServerPort)
	}
	if c.MockSampleInterval <= 0 {
		return fmt.Errorf("MOCK_SAMPLE_INTERVAL must be > 0, got %d", c.MockSampleInterval)
	}
	return nil
}

// InitGlobal initializes the global configuration from file. Only the first
// call does any work.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance, or nil before InitGlobal.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
