// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package calibration

import (
	"fmt"
	"time"
)

// EventKind identifies what an Event measured.
type EventKind int

const (
	KindUnknown EventKind = iota
	KindMagneticField
	KindGyroscope
	KindAcceleration
	KindPressure
	KindTemperature
	KindLight
)

var kindNames = map[EventKind]string{
	KindUnknown:       "unknown",
	KindMagneticField: "magnetic",
	KindGyroscope:     "gyroscope",
	KindAcceleration:  "acceleration",
	KindPressure:      "pressure",
	KindTemperature:   "temperature",
	KindLight:         "light",
}

func (k EventKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a wire name back to its kind.
func ParseKind(name string) (EventKind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown event kind %q", name)
}

// Vector is an XYZ sensor reading.
type Vector struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Event is one sensor reading. Calibration rewrites Vector in place and
// leaves every other field alone.
type Event struct {
	Kind      EventKind
	Sensor    string
	Timestamp time.Time
	Vector    Vector
}
