// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package eeprom

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// DefaultI2CAddr is the 7-bit address of a 24Cxx with A0..A2 tied low.
const DefaultI2CAddr = 0x50

// DefaultWriteCycle is the worst-case internal write time of a 24Cxx cell.
const DefaultWriteCycle = 5 * time.Millisecond

// I2CStorage is a 24C32-class serial EEPROM with 16-bit word addresses.
type I2CStorage struct {
	dev        *i2c.Dev
	size       int
	writeCycle time.Duration
}

// NewI2CStorage wraps the chip at addr on bus. size bounds valid addresses.
func NewI2CStorage(bus i2c.Bus, addr uint16, size int, writeCycle time.Duration) *I2CStorage {
	return &I2CStorage{
		dev:        &i2c.Dev{Bus: bus, Addr: addr},
		size:       size,
		writeCycle: writeCycle,
	}
}

func (s *I2CStorage) ReadAt(addr int) (byte, error) {
	if addr < 0 || addr >= s.size {
		return 0, fmt.Errorf("i2c read 0x%04X: %w", addr, errOutOfRange)
	}
	var r [1]byte
	if err := s.dev.Tx([]byte{byte(addr >> 8), byte(addr)}, r[:]); err != nil {
		return 0, fmt.Errorf("i2c read 0x%04X: %w", addr, err)
	}
	return r[0], nil
}

func (s *I2CStorage) WriteAt(addr int, b byte) error {
	if addr < 0 || addr >= s.size {
		return fmt.Errorf("i2c write 0x%04X: %w", addr, errOutOfRange)
	}
	if err := s.dev.Tx([]byte{byte(addr >> 8), byte(addr), b}, nil); err != nil {
		return fmt.Errorf("i2c write 0x%04X: %w", addr, err)
	}
	// the chip NAKs until its internal write completes
	if s.writeCycle > 0 {
		time.Sleep(s.writeCycle)
	}
	return nil
}
