// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package calibration

import (
	"io"
)

// Backend persists a Record. Implementations only borrow the record for the
// duration of a call.
type Backend interface {
	Save(rec *Record) error
	Load(rec *Record) error
	PrintSavedCalibration(w io.Writer) error
	HasEEPROM() bool
	HasFlash() bool
}

// Manager owns a Record and the one backend chosen for the target. The
// backend type is a type parameter so the choice is fixed at compile time.
//
// A Manager is not safe for concurrent use; callers serialize access.
type Manager[B Backend] struct {
	Record  Record
	backend B
}

// NewManager returns a manager holding a default record.
func NewManager[B Backend](backend B) *Manager[B] {
	return &Manager[B]{
		Record:  NewRecord(),
		backend: backend,
	}
}

// Backend returns the storage backend.
func (m *Manager[B]) Backend() B {
	return m.backend
}

// Save persists the current record.
func (m *Manager[B]) Save() error {
	return m.backend.Save(&m.Record)
}

// Load replaces the record with the persisted one. On error the record is
// unchanged.
func (m *Manager[B]) Load() error {
	return m.backend.Load(&m.Record)
}

// PrintSavedCalibration writes the raw persisted form to w.
func (m *Manager[B]) PrintSavedCalibration(w io.Writer) error {
	return m.backend.PrintSavedCalibration(w)
}

// Calibrate corrects ev with the current record.
func (m *Manager[B]) Calibrate(ev *Event) error {
	return m.Record.Calibrate(ev)
}

func (m *Manager[B]) HasEEPROM() bool { return m.backend.HasEEPROM() }

func (m *Manager[B]) HasFlash() bool { return m.backend.HasFlash() }
