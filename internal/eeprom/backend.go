// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package eeprom stores the calibration record as a fixed 68-byte packet in
// byte-addressable memory, guarded by magic bytes and a CRC16 trailer.
package eeprom

import (
	"fmt"
	"io"
	"log"

	"github.com/relabs-tech/sensor_calibration/internal/calibration"
)

// DefaultAddr is the default base offset of the packet.
const DefaultAddr = 60

// ShadowSize is how much of an emulated EEPROM is staged in RAM.
const ShadowSize = 512

// Backend is the EEPROM calibration backend.
type Backend struct {
	storage Storage
	addr    int
}

var _ calibration.Backend = (*Backend)(nil)

// New returns a backend over storage. Call Begin before use.
func New(storage Storage) *Backend {
	return &Backend{storage: storage, addr: DefaultAddr}
}

// Begin records the base offset and stages RAM-shadowed storage. Nothing is
// written.
func (b *Backend) Begin(addr int) error {
	if b.storage == nil {
		return fmt.Errorf("eeprom: begin: %w", calibration.ErrStorageUnavailable)
	}
	if addr < 0 {
		return fmt.Errorf("eeprom: begin: negative address %d", addr)
	}
	b.addr = addr
	if st, ok := b.storage.(Stager); ok {
		size := ShadowSize
		if end := addr + PacketSize; end > size {
			size = end
		}
		if err := st.Stage(size); err != nil {
			return fmt.Errorf("eeprom: begin: %v: %w", err, calibration.ErrStorageUnavailable)
		}
	}
	return nil
}

// Addr returns the base offset.
func (b *Backend) Addr() int {
	return b.addr
}

// Save writes rec as a packet at the base offset and flushes buffered media.
func (b *Backend) Save(rec *calibration.Record) error {
	if b.storage == nil {
		return fmt.Errorf("eeprom: save: %w", calibration.ErrStorageUnavailable)
	}
	buf := Encode(rec)
	log.Printf("eeprom: saving calibration at 0x%04X, CRC: 0x%02X%02X", b.addr, buf[offCRC+1], buf[offCRC])

	for i, c := range buf {
		if err := b.storage.WriteAt(b.addr+i, c); err != nil {
			return fmt.Errorf("eeprom: save: %v: %w", err, calibration.ErrStorageUnavailable)
		}
	}
	if c, ok := b.storage.(Committer); ok {
		if err := c.Commit(); err != nil {
			return fmt.Errorf("eeprom: save: %v: %w", err, calibration.ErrStorageUnavailable)
		}
	}
	return nil
}

// Load reads the packet at the base offset into rec. rec is untouched unless
// both the CRC and the magic check out.
func (b *Backend) Load(rec *calibration.Record) error {
	buf, err := b.read()
	if err != nil {
		return fmt.Errorf("eeprom: load: %w", err)
	}
	if err := Decode(buf, rec); err != nil {
		log.Printf("eeprom: no valid calibration at 0x%04X: %v", b.addr, err)
		return fmt.Errorf("eeprom: load: %w", err)
	}
	return nil
}

// PrintSavedCalibration hex dumps the raw packet window, 16 bytes per line.
func (b *Backend) PrintSavedCalibration(w io.Writer) error {
	buf, err := b.read()
	if err != nil {
		return fmt.Errorf("eeprom: print: %w", err)
	}
	fmt.Fprintln(w, "------------")
	for i, c := range buf {
		fmt.Fprintf(w, "0x%02X, ", c)
		if i%16 == 15 {
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintln(w, "\n------------")
	return nil
}

func (b *Backend) HasEEPROM() bool { return true }

func (b *Backend) HasFlash() bool { return false }

func (b *Backend) read() ([]byte, error) {
	if b.storage == nil {
		return nil, calibration.ErrStorageUnavailable
	}
	buf := make([]byte, PacketSize)
	for i := range buf {
		c, err := b.storage.ReadAt(b.addr + i)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, calibration.ErrStorageUnavailable)
		}
		buf[i] = c
	}
	return buf, nil
}
