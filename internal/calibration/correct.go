// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package calibration

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Calibrate applies the record to ev in place.
//
//	magnetic:     v = S · (raw - hardiron)
//	gyroscope:    v = raw - zerorate
//	acceleration: v = raw - zerog
//
// Any other kind is left untouched and ErrUnsupportedEvent is returned.
func (r *Record) Calibrate(ev *Event) error {
	v := &ev.Vector
	switch ev.Kind {
	case KindMagneticField:
		// hard iron strictly before soft iron
		hx := v.X - r.MagHardIron[0]
		hy := v.Y - r.MagHardIron[1]
		hz := v.Z - r.MagHardIron[2]
		x, y, z := r.softIron(hx, hy, hz)
		v.X, v.Y, v.Z = x, y, z
	case KindGyroscope:
		v.X -= r.GyroZeroRate[0]
		v.Y -= r.GyroZeroRate[1]
		v.Z -= r.GyroZeroRate[2]
	case KindAcceleration:
		v.X -= r.AccelZeroG[0]
		v.Y -= r.AccelZeroG[1]
		v.Z -= r.AccelZeroG[2]
	default:
		return fmt.Errorf("calibrate %s event: %w", ev.Kind, ErrUnsupportedEvent)
	}
	return nil
}

// SoftIron returns the soft-iron matrix as a dense 3x3.
func (r *Record) SoftIron() *mat.Dense {
	data := make([]float64, 9)
	for i, f := range r.MagSoftIron {
		data[i] = float64(f)
	}
	return mat.NewDense(3, 3, data)
}

func (r *Record) softIron(x, y, z float32) (float32, float32, float32) {
	in := mat.NewVecDense(3, []float64{float64(x), float64(y), float64(z)})
	var out mat.VecDense
	out.MulVec(r.SoftIron(), in)
	return float32(out.AtVec(0)), float32(out.AtVec(1)), float32(out.AtVec(2))
}
