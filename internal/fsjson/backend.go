// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package fsjson stores the calibration record as a JSON document in a file.
package fsjson

import (
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/relabs-tech/sensor_calibration/internal/calibration"
)

// DefaultFilename is used when Begin is given no file name.
const DefaultFilename = "sensor_calib.json"

// document fixes the key order of saved files.
type document struct {
	MagHardIron  [3]float32 `json:"mag_hardiron"`
	MagSoftIron  [9]float32 `json:"mag_softiron"`
	MagField     float32    `json:"mag_field"`
	GyroZeroRate [3]float32 `json:"gyro_zerorate"`
	AccelZeroG   [3]float32 `json:"accel_zerog"`
}

// Backend is the filesystem calibration backend.
type Backend struct {
	flash    Mounter
	fs       FileSystem
	filename string
	mounted  bool
}

var _ calibration.Backend = (*Backend)(nil)

// New returns a backend that falls back to mounting flash when Begin is not
// handed a filesystem. flash may be nil.
func New(flash Mounter) *Backend {
	return &Backend{flash: flash}
}

// Begin adopts fsys, or mounts the flash filesystem when fsys is nil, and
// resolves the calibration file name.
func (b *Backend) Begin(filename string, fsys FileSystem) error {
	if fsys != nil {
		b.fs = fsys
		b.mounted = false
	} else {
		if b.flash == nil {
			return fmt.Errorf("fsjson: begin: no filesystem and no flash: %w", calibration.ErrStorageUnavailable)
		}
		mounted, err := b.flash.Mount()
		if err != nil {
			log.Printf("fsjson: failed to mount flash filesystem: %v", err)
			return fmt.Errorf("fsjson: begin: mount: %v: %w", err, calibration.ErrStorageUnavailable)
		}
		b.fs = mounted
		b.mounted = true
		log.Println("fsjson: mounted filesystem")
	}

	b.filename = filename
	if b.filename == "" {
		b.filename = DefaultFilename
	}
	b.logRoot()
	return nil
}

// Filename returns the resolved calibration file name.
func (b *Backend) Filename() string {
	return b.filename
}

// logRoot lists the root directory. Failure is only logged.
func (b *Backend) logRoot() {
	entries, err := b.fs.List(".")
	if err != nil {
		log.Printf("fsjson: cannot list root: %v", err)
		return
	}
	for _, e := range entries {
		if e.IsDir {
			log.Printf("fsjson: \t%s/", e.Name)
		} else {
			log.Printf("fsjson: \t%s : %d bytes", e.Name, e.Size)
		}
	}
}

// Save writes rec to the calibration file, replacing its contents.
func (b *Backend) Save(rec *calibration.Record) error {
	if b.fs == nil {
		return fmt.Errorf("fsjson: save: %w", calibration.ErrStorageUnavailable)
	}
	data, err := json.Marshal(document{
		MagHardIron:  rec.MagHardIron,
		MagSoftIron:  rec.MagSoftIron,
		MagField:     rec.MagField,
		GyroZeroRate: rec.GyroZeroRate,
		AccelZeroG:   rec.AccelZeroG,
	})
	if err != nil {
		return fmt.Errorf("fsjson: save: serialize: %w", err)
	}

	f, err := b.fs.Open(b.filename, ModeWriteTruncate)
	if err != nil {
		log.Printf("fsjson: failed to create %s: %v", b.filename, err)
		return fmt.Errorf("fsjson: save %s: %v: %w", b.filename, err, calibration.ErrOpen)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("fsjson: save %s: write: %w", b.filename, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("fsjson: save %s: close: %w", b.filename, err)
	}
	return nil
}

// Load parses the calibration file into rec. Keys or elements that are
// missing or not numbers take their defaults. rec is untouched on error.
func (b *Backend) Load(rec *calibration.Record) error {
	data, err := b.readFile()
	if err != nil {
		return fmt.Errorf("fsjson: load: %w", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("fsjson: failed to parse %s: %v", b.filename, err)
		return fmt.Errorf("fsjson: load %s: %v: %w", b.filename, err, calibration.ErrIntegrity)
	}
	if doc == nil {
		return fmt.Errorf("fsjson: load %s: not a JSON object: %w", b.filename, calibration.ErrIntegrity)
	}

	var out calibration.Record
	zero := func(int) float32 { return 0 }
	decodeArray(doc["mag_hardiron"], out.MagHardIron[:], zero)
	decodeArray(doc["mag_softiron"], out.MagSoftIron[:], calibration.DefaultSoftIron)
	out.MagField = decodeNumber(doc["mag_field"], calibration.DefaultMagField)
	decodeArray(doc["gyro_zerorate"], out.GyroZeroRate[:], zero)
	decodeArray(doc["accel_zerog"], out.AccelZeroG[:], zero)

	*rec = out
	return nil
}

// PrintSavedCalibration copies the raw file to w between rulers.
func (b *Backend) PrintSavedCalibration(w io.Writer) error {
	if b.fs == nil {
		return fmt.Errorf("fsjson: print: %w", calibration.ErrStorageUnavailable)
	}
	f, err := b.fs.Open(b.filename, ModeRead)
	if err != nil {
		log.Printf("fsjson: failed to read %s: %v", b.filename, err)
		return fmt.Errorf("fsjson: print %s: %v: %w", b.filename, err, calibration.ErrOpen)
	}
	defer f.Close()

	fmt.Fprintln(w, "------------")
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("fsjson: print %s: %w", b.filename, err)
	}
	fmt.Fprintln(w, "\n------------")
	return nil
}

func (b *Backend) HasEEPROM() bool { return false }

// HasFlash reports whether the calibration lives on the mounted flash volume.
func (b *Backend) HasFlash() bool { return b.mounted }

func (b *Backend) readFile() ([]byte, error) {
	if b.fs == nil {
		return nil, calibration.ErrStorageUnavailable
	}
	f, err := b.fs.Open(b.filename, ModeRead)
	if err != nil {
		log.Printf("fsjson: failed to read %s: %v", b.filename, err)
		return nil, fmt.Errorf("%s: %v: %w", b.filename, err, calibration.ErrOpen)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", b.filename, err, calibration.ErrOpen)
	}
	return data, nil
}

func decodeArray(raw json.RawMessage, dst []float32, def func(int) float32) {
	var elems []json.RawMessage
	if raw != nil {
		if err := json.Unmarshal(raw, &elems); err != nil {
			elems = nil
		}
	}
	for i := range dst {
		if i < len(elems) {
			dst[i] = decodeNumber(elems[i], def(i))
		} else {
			dst[i] = def(i)
		}
	}
}

func decodeNumber(raw json.RawMessage, def float32) float32 {
	if raw == nil {
		return def
	}
	v := def
	if err := json.Unmarshal(raw, &v); err != nil {
		return def
	}
	return v
}
