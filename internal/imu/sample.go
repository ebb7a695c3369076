// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"fmt"
	"time"

	"github.com/relabs-tech/sensor_calibration/internal/calibration"
)

// Sample is one sensor event as carried over MQTT and WebSocket.
type Sample struct {
	Sensor string  `json:"sensor"` // e.g. "left" or "right"
	Type   string  `json:"type"`   // "magnetic", "gyroscope", "acceleration", ...
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	Z      float32 `json:"z"`
	Time   string  `json:"time,omitempty"` // RFC3339Nano
}

// SampleSource is anything that can provide samples over time.
type SampleSource interface {
	Next() (Sample, error)
}

// Event converts the sample into a calibration event.
func (s Sample) Event() (calibration.Event, error) {
	kind, err := calibration.ParseKind(s.Type)
	if err != nil {
		return calibration.Event{}, err
	}
	ev := calibration.Event{
		Kind:   kind,
		Sensor: s.Sensor,
		Vector: calibration.Vector{X: s.X, Y: s.Y, Z: s.Z},
	}
	if s.Time != "" {
		ts, err := time.Parse(time.RFC3339Nano, s.Time)
		if err != nil {
			return calibration.Event{}, fmt.Errorf("sample time %q: %w", s.Time, err)
		}
		ev.Timestamp = ts
	}
	return ev, nil
}

// FromEvent converts a calibration event back into a wire sample.
func FromEvent(ev calibration.Event) Sample {
	s := Sample{
		Sensor: ev.Sensor,
		Type:   ev.Kind.String(),
		X:      ev.Vector.X,
		Y:      ev.Vector.Y,
		Z:      ev.Vector.Z,
	}
	if !ev.Timestamp.IsZero() {
		s.Time = ev.Timestamp.Format(time.RFC3339Nano)
	}
	return s
}
