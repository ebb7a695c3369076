// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"math"
	"time"

	"github.com/relabs-tech/sensor_calibration/internal/calibration"
)

// MockSource generates raw samples from a slowly rotating board whose
// readings carry a known distortion, so a correct calibration can be seen
// to undo it. It cycles magnetic, gyroscope and acceleration samples.
type MockSource struct {
	Sensor string
	// Distortion is added to the ideal readings: hard iron, gyro zero rate
	// and accel zero-g offsets are added, soft iron is applied as given.
	Distortion calibration.Record
	// FieldStrength is the ideal magnetic field magnitude in µT.
	FieldStrength float64

	start time.Time
	now   func() time.Time
	n     int
}

var _ SampleSource = (*MockSource)(nil)

// NewMockSource returns a source with a fixed, recognisable distortion.
func NewMockSource(sensor string) *MockSource {
	d := calibration.NewRecord()
	d.MagHardIron = [3]float32{12, -8, 20}
	d.GyroZeroRate = [3]float32{0.02, -0.01, 0.005}
	d.AccelZeroG = [3]float32{0.15, -0.1, 0.3}
	return &MockSource{
		Sensor:        sensor,
		Distortion:    d,
		FieldStrength: 50,
		start:         time.Now(),
		now:           time.Now,
	}
}

func (m *MockSource) Next() (Sample, error) {
	t := m.now()
	elapsed := t.Sub(m.start).Seconds()
	kind := []calibration.EventKind{
		calibration.KindMagneticField,
		calibration.KindGyroscope,
		calibration.KindAcceleration,
	}[m.n%3]
	m.n++

	d := &m.Distortion
	var x, y, z float64
	switch kind {
	case calibration.KindMagneticField:
		// field vector sweeping around the board
		yaw := elapsed * 0.5
		pitch := 0.6 * math.Sin(elapsed*0.3)
		fx := m.FieldStrength * math.Cos(pitch) * math.Cos(yaw)
		fy := m.FieldStrength * math.Cos(pitch) * math.Sin(yaw)
		fz := m.FieldStrength * math.Sin(pitch)
		s := d.MagSoftIron
		x = float64(s[0])*fx + float64(s[1])*fy + float64(s[2])*fz + float64(d.MagHardIron[0])
		y = float64(s[3])*fx + float64(s[4])*fy + float64(s[5])*fz + float64(d.MagHardIron[1])
		z = float64(s[6])*fx + float64(s[7])*fy + float64(s[8])*fz + float64(d.MagHardIron[2])
	case calibration.KindGyroscope:
		x = 0.1*math.Sin(elapsed) + float64(d.GyroZeroRate[0])
		y = 0.1*math.Cos(elapsed*0.7) + float64(d.GyroZeroRate[1])
		z = 0.5 + float64(d.GyroZeroRate[2])
	case calibration.KindAcceleration:
		x = float64(d.AccelZeroG[0])
		y = float64(d.AccelZeroG[1])
		z = 9.80665 + float64(d.AccelZeroG[2])
	}

	return FromEvent(calibration.Event{
		Kind:      kind,
		Sensor:    m.Sensor,
		Timestamp: t,
		Vector:    calibration.Vector{X: float32(x), Y: float32(y), Z: float32(z)},
	}), nil
}
