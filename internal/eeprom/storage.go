// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package eeprom

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Storage is byte-addressable persistent memory.
type Storage interface {
	ReadAt(addr int) (byte, error)
	WriteAt(addr int, b byte) error
}

// Committer is implemented by storage that buffers writes in RAM and needs
// an explicit flush to reach durable media.
type Committer interface {
	Commit() error
}

// Stager is implemented by storage that must load a RAM shadow of at least
// size bytes before it can be read or written.
type Stager interface {
	Stage(size int) error
}

var errOutOfRange = errors.New("address out of range")

// MemStorage is RAM-backed storage. Erased cells read 0xFF.
type MemStorage struct {
	cells []byte
}

// NewMemStorage returns size bytes of erased storage.
func NewMemStorage(size int) *MemStorage {
	cells := make([]byte, size)
	for i := range cells {
		cells[i] = 0xFF
	}
	return &MemStorage{cells: cells}
}

func (m *MemStorage) ReadAt(addr int) (byte, error) {
	if addr < 0 || addr >= len(m.cells) {
		return 0, fmt.Errorf("read 0x%04X: %w", addr, errOutOfRange)
	}
	return m.cells[addr], nil
}

func (m *MemStorage) WriteAt(addr int, b byte) error {
	if addr < 0 || addr >= len(m.cells) {
		return fmt.Errorf("write 0x%04X: %w", addr, errOutOfRange)
	}
	m.cells[addr] = b
	return nil
}

// Bytes exposes the underlying cells.
func (m *MemStorage) Bytes() []byte {
	return m.cells
}

// ImageStorage emulates EEPROM with a file on the host. Like the flash
// emulated EEPROM on ESP parts, writes land in a RAM shadow and only reach
// the file on Commit.
type ImageStorage struct {
	path   string
	shadow []byte
	dirty  bool
}

// NewImageStorage returns storage backed by the image file at path. The file
// is created on first Commit.
func NewImageStorage(path string) *ImageStorage {
	return &ImageStorage{path: path}
}

// Stage loads the image into the shadow buffer, padding with erased bytes up
// to size.
func (s *ImageStorage) Stage(size int) error {
	data, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stage %s: %w", s.path, err)
	}
	if len(data) < size {
		pad := make([]byte, size-len(data))
		for i := range pad {
			pad[i] = 0xFF
		}
		data = append(data, pad...)
	}
	s.shadow = data
	s.dirty = false
	return nil
}

func (s *ImageStorage) ReadAt(addr int) (byte, error) {
	if s.shadow == nil {
		return 0, fmt.Errorf("read %s: not staged", s.path)
	}
	if addr < 0 || addr >= len(s.shadow) {
		return 0, fmt.Errorf("read %s 0x%04X: %w", s.path, addr, errOutOfRange)
	}
	return s.shadow[addr], nil
}

func (s *ImageStorage) WriteAt(addr int, b byte) error {
	if s.shadow == nil {
		return fmt.Errorf("write %s: not staged", s.path)
	}
	if addr < 0 || addr >= len(s.shadow) {
		return fmt.Errorf("write %s 0x%04X: %w", s.path, addr, errOutOfRange)
	}
	if s.shadow[addr] != b {
		s.shadow[addr] = b
		s.dirty = true
	}
	return nil
}

// Commit writes the shadow buffer to the image file if it changed.
func (s *ImageStorage) Commit() error {
	if !s.dirty {
		return nil
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, s.shadow, 0644); err != nil {
		return fmt.Errorf("commit %s: %w", s.path, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("commit %s: %w", s.path, err)
	}
	s.dirty = false
	return nil
}
