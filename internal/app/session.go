// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/relabs-tech/sensor_calibration/internal/calibration"
	"github.com/relabs-tech/sensor_calibration/internal/imu"
)

// Session shares one calibration manager between MQTT callbacks, HTTP
// handlers and the serial receiver. The manager itself is not safe for
// concurrent use, so every access goes through mu.
type Session[B calibration.Backend] struct {
	mu  sync.Mutex
	mgr *calibration.Manager[B]
}

// NewSession wraps mgr.
func NewSession[B calibration.Backend](mgr *calibration.Manager[B]) *Session[B] {
	return &Session[B]{mgr: mgr}
}

// Record returns a copy of the active record.
func (s *Session[B]) Record() calibration.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mgr.Record
}

// Replace saves rec and makes the stored form of it the active record, so
// corrections match what a restart would load. The EEPROM packet, for one,
// keeps only the upper soft-iron triangle. If the save fails the previous
// record stays active.
func (s *Session[B]) Replace(rec calibration.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.mgr.Record
	s.mgr.Record = rec
	if err := s.mgr.Save(); err != nil {
		s.mgr.Record = prev
		return err
	}
	if err := s.mgr.Load(); err != nil {
		s.mgr.Record = prev
		return fmt.Errorf("calibration: read back after save: %w", err)
	}
	if s.mgr.Record != rec {
		log.Printf("calibration: stored form differs from request, active %v", s.mgr.Record)
	}
	log.Printf("calibration: saved %v", s.mgr.Record)
	return nil
}

// Reload reads the stored record back into the manager.
func (s *Session[B]) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mgr.Load()
}

// Dump writes the raw stored calibration to w.
func (s *Session[B]) Dump(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mgr.PrintSavedCalibration(w)
}

// Correct applies the active record to a sample. Kinds without a correction
// rule come back unchanged together with ErrUnsupportedEvent.
func (s *Session[B]) Correct(in imu.Sample) (imu.Sample, error) {
	ev, err := in.Event()
	if err != nil {
		return in, err
	}
	s.mu.Lock()
	err = s.mgr.Calibrate(&ev)
	s.mu.Unlock()
	if err != nil {
		return in, err
	}
	out := imu.FromEvent(ev)
	out.Time = in.Time
	return out, nil
}

// CorrectPayload decodes a JSON sample, corrects it and re-encodes it.
// Samples of kinds with no correction rule pass through unchanged.
func (s *Session[B]) CorrectPayload(payload []byte) ([]byte, error) {
	var in imu.Sample
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, fmt.Errorf("sample unmarshal: %w", err)
	}
	out, err := s.Correct(in)
	if err != nil && !errors.Is(err, calibration.ErrUnsupportedEvent) {
		return nil, err
	}
	return json.Marshal(out)
}

// ReplacePayload decodes a JSON record, makes it active and returns the
// record as stored. Keys missing from the payload take their defaults.
func (s *Session[B]) ReplacePayload(payload []byte) (calibration.Record, error) {
	rec := calibration.NewRecord()
	if err := json.Unmarshal(payload, &rec); err != nil {
		return calibration.Record{}, fmt.Errorf("record unmarshal: %w", err)
	}
	if err := s.Replace(rec); err != nil {
		return calibration.Record{}, err
	}
	return s.Record(), nil
}
