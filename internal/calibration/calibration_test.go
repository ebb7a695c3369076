// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package calibration

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"testing"
	"time"
)

const eps = 1e-5

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) <= eps
}

func checkVector(t *testing.T, got, want Vector) {
	t.Helper()
	if !near(got.X, want.X) || !near(got.Y, want.Y) || !near(got.Z, want.Z) {
		t.Errorf("vector = %+v, want %+v", got, want)
	}
}

func TestNewRecordDefaults(t *testing.T) {
	r := NewRecord()
	want := [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}
	if r.MagSoftIron != want {
		t.Errorf("soft iron = %v, want identity", r.MagSoftIron)
	}
	if r.MagField != 0 || r.AccelZeroG != [3]float32{} || r.GyroZeroRate != [3]float32{} || r.MagHardIron != [3]float32{} {
		t.Errorf("offsets not zero: %v", r)
	}
	for i := 0; i < 9; i++ {
		if DefaultSoftIron(i) != want[i] {
			t.Errorf("DefaultSoftIron(%d) = %g", i, DefaultSoftIron(i))
		}
	}
}

func TestCalibrateMagneticHardIron(t *testing.T) {
	r := NewRecord()
	r.MagHardIron = [3]float32{1, 2, 3}
	ev := Event{Kind: KindMagneticField, Vector: Vector{4, 5, 6}}
	if err := r.Calibrate(&ev); err != nil {
		t.Fatalf("Calibrate: %v", err)
	}
	checkVector(t, ev.Vector, Vector{3, 3, 3})
}

func TestCalibrateMagneticOrder(t *testing.T) {
	r := NewRecord()
	r.MagHardIron = [3]float32{1, 1, 1}
	r.MagSoftIron = [9]float32{
		2, 0, 0,
		0, 3, 0,
		1, 0, 1,
	}
	ev := Event{Kind: KindMagneticField, Vector: Vector{3, 3, 3}}
	if err := r.Calibrate(&ev); err != nil {
		t.Fatalf("Calibrate: %v", err)
	}
	// (2,2,2) after hard iron, then the matrix.
	checkVector(t, ev.Vector, Vector{4, 6, 4})
}

func TestCalibrateMagneticRowMajor(t *testing.T) {
	r := NewRecord()
	r.MagSoftIron = [9]float32{
		0, 1, 0,
		0, 0, 1,
		1, 0, 0,
	}
	ev := Event{Kind: KindMagneticField, Vector: Vector{1, 2, 3}}
	if err := r.Calibrate(&ev); err != nil {
		t.Fatalf("Calibrate: %v", err)
	}
	checkVector(t, ev.Vector, Vector{2, 3, 1})
}

func TestCalibrateGyroscope(t *testing.T) {
	r := NewRecord()
	r.GyroZeroRate = [3]float32{0.1, 0.2, 0.3}
	ev := Event{Kind: KindGyroscope, Vector: Vector{1, 1, 1}}
	if err := r.Calibrate(&ev); err != nil {
		t.Fatalf("Calibrate: %v", err)
	}
	checkVector(t, ev.Vector, Vector{0.9, 0.8, 0.7})
}

func TestCalibrateAcceleration(t *testing.T) {
	r := NewRecord()
	r.AccelZeroG = [3]float32{0.5, -0.25, 1}
	r.GyroZeroRate = [3]float32{9, 9, 9}
	ev := Event{Kind: KindAcceleration, Vector: Vector{0, 0, 9.81}}
	if err := r.Calibrate(&ev); err != nil {
		t.Fatalf("Calibrate: %v", err)
	}
	checkVector(t, ev.Vector, Vector{-0.5, 0.25, 8.81})
}

func TestCalibrateUnsupported(t *testing.T) {
	r := NewRecord()
	r.MagHardIron = [3]float32{1, 2, 3}
	ts := time.Unix(1700000000, 0)
	for _, kind := range []EventKind{KindUnknown, KindPressure, KindTemperature, KindLight, EventKind(42)} {
		ev := Event{Kind: kind, Sensor: "baro", Timestamp: ts, Vector: Vector{4, 5, 6}}
		err := r.Calibrate(&ev)
		if !errors.Is(err, ErrUnsupportedEvent) {
			t.Errorf("%s: err = %v, want ErrUnsupportedEvent", kind, err)
		}
		if ev.Vector != (Vector{4, 5, 6}) || ev.Sensor != "baro" || !ev.Timestamp.Equal(ts) {
			t.Errorf("%s: event mutated: %+v", kind, ev)
		}
	}
}

func TestCalibrateLeavesMetadata(t *testing.T) {
	r := NewRecord()
	ts := time.Unix(1700000000, 0)
	ev := Event{Kind: KindGyroscope, Sensor: "left", Timestamp: ts}
	if err := r.Calibrate(&ev); err != nil {
		t.Fatal(err)
	}
	if ev.Kind != KindGyroscope || ev.Sensor != "left" || !ev.Timestamp.Equal(ts) {
		t.Errorf("metadata changed: %+v", ev)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []EventKind{KindMagneticField, KindGyroscope, KindAcceleration, KindPressure} {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("sonar"); err == nil {
		t.Error("ParseKind(sonar) succeeded")
	}
}

type fakeBackend struct {
	saved  *Record
	loadFn func(*Record) error
}

func (f *fakeBackend) Save(rec *Record) error {
	c := *rec
	f.saved = &c
	return nil
}

func (f *fakeBackend) Load(rec *Record) error { return f.loadFn(rec) }

func (f *fakeBackend) PrintSavedCalibration(w io.Writer) error {
	_, err := fmt.Fprint(w, "dump")
	return err
}

func (f *fakeBackend) HasEEPROM() bool { return true }
func (f *fakeBackend) HasFlash() bool  { return false }

func TestManagerForwards(t *testing.T) {
	fb := &fakeBackend{loadFn: func(rec *Record) error {
		rec.MagField = 48
		return nil
	}}
	m := NewManager(fb)
	if m.Record.MagSoftIron[4] != 1 {
		t.Fatal("manager record not defaulted")
	}
	m.Record.GyroZeroRate[0] = 0.5
	if err := m.Save(); err != nil {
		t.Fatal(err)
	}
	if fb.saved == nil || fb.saved.GyroZeroRate[0] != 0.5 {
		t.Errorf("saved = %v", fb.saved)
	}
	if err := m.Load(); err != nil || m.Record.MagField != 48 {
		t.Errorf("Load: %v, mag_field=%g", err, m.Record.MagField)
	}
	ev := Event{Kind: KindGyroscope, Vector: Vector{1, 0, 0}}
	if err := m.Calibrate(&ev); err != nil {
		t.Fatal(err)
	}
	checkVector(t, ev.Vector, Vector{0.5, 0, 0})
	if !m.HasEEPROM() || m.HasFlash() || m.Backend() != fb {
		t.Error("backend capability forwarding broken")
	}
}

func TestRecordJSON(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(`{"mag_hardiron":[1,2,3],"mag_field":45}`), &r); err != nil {
		t.Fatal(err)
	}
	want := NewRecord()
	want.MagHardIron = [3]float32{1, 2, 3}
	want.MagField = 45
	if r != want {
		t.Errorf("decoded %v, want %v", r, want)
	}

	if err := json.Unmarshal([]byte(`{"mag_softiron":[1,0,0,0,1]}`), &r); err == nil {
		t.Error("short soft-iron array accepted")
	}

	data, err := json.Marshal(want)
	if err != nil {
		t.Fatal(err)
	}
	var back Record
	if err := json.Unmarshal(data, &back); err != nil || back != want {
		t.Errorf("round trip = %v, %v", back, err)
	}
}
