// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package calibration

import (
	"encoding/json"
	"fmt"
)

type recordJSON struct {
	AccelZeroG   []float32 `json:"accel_zerog"`
	GyroZeroRate []float32 `json:"gyro_zerorate"`
	MagHardIron  []float32 `json:"mag_hardiron"`
	MagSoftIron  []float32 `json:"mag_softiron"`
	MagField     *float32  `json:"mag_field"`
}

// UnmarshalJSON decodes a record strictly: absent keys take their defaults,
// but an array present with the wrong length is an error rather than being
// zero filled.
func (r *Record) UnmarshalJSON(data []byte) error {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := NewRecord()
	for _, f := range []struct {
		name string
		src  []float32
		dst  []float32
	}{
		{"accel_zerog", in.AccelZeroG, out.AccelZeroG[:]},
		{"gyro_zerorate", in.GyroZeroRate, out.GyroZeroRate[:]},
		{"mag_hardiron", in.MagHardIron, out.MagHardIron[:]},
		{"mag_softiron", in.MagSoftIron, out.MagSoftIron[:]},
	} {
		if f.src == nil {
			continue
		}
		if len(f.src) != len(f.dst) {
			return fmt.Errorf("%s has %d values, want %d", f.name, len(f.src), len(f.dst))
		}
		copy(f.dst, f.src)
	}
	if in.MagField != nil {
		out.MagField = *in.MagField
	}
	*r = out
	return nil
}
