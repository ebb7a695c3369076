// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package calibration holds the calibration record, the correction engine
// that applies it to sensor events, and the storage backend contract.
package calibration

import (
	"errors"
	"fmt"
)

// Errors reported by backends and the correction engine. Backends wrap these
// with context; match them with errors.Is.
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrOpen               = errors.New("open failed")
	ErrIntegrity          = errors.New("integrity check failed")
	ErrUnsupportedEvent   = errors.New("unsupported event kind")
)

// Default values for a record with nothing persisted.
const (
	DefaultMagField float32 = 0
)

// identity is the soft-iron default. A zero matrix would null every
// magnetometer reading.
var identity = [9]float32{
	1, 0, 0,
	0, 1, 0,
	0, 0, 1,
}

// Record is the full set of calibration parameters for one sensor board.
type Record struct {
	AccelZeroG   [3]float32 `json:"accel_zerog"`   // m/s²
	GyroZeroRate [3]float32 `json:"gyro_zerorate"` // rad/s
	MagHardIron  [3]float32 `json:"mag_hardiron"`  // µT
	MagSoftIron  [9]float32 `json:"mag_softiron"`  // row-major 3x3
	MagField     float32    `json:"mag_field"`     // µT
}

// NewRecord returns a record holding the defaults.
func NewRecord() Record {
	var r Record
	r.Reset()
	return r
}

// Reset restores every field to its default.
func (r *Record) Reset() {
	r.AccelZeroG = [3]float32{}
	r.GyroZeroRate = [3]float32{}
	r.MagHardIron = [3]float32{}
	r.MagSoftIron = identity
	r.MagField = DefaultMagField
}

// DefaultSoftIron returns the default value of soft-iron element i.
func DefaultSoftIron(i int) float32 {
	return identity[i]
}

// String renders the record for diagnostic logging.
func (r Record) String() string {
	s := r.MagSoftIron
	return fmt.Sprintf(
		"accel_zerog=%v gyro_zerorate=%v mag_hardiron=%v mag_field=%g mag_softiron=[%g %g %g; %g %g %g; %g %g %g]",
		r.AccelZeroG, r.GyroZeroRate, r.MagHardIron, r.MagField,
		s[0], s[1], s[2], s[3], s[4], s[5], s[6], s[7], s[8],
	)
}
