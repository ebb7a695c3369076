// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package eeprom

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/relabs-tech/sensor_calibration/internal/calibration"
	"github.com/relabs-tech/sensor_calibration/internal/crc16"
)

// Packet layout, byte offsets from the base address.
const (
	PacketSize = 68

	offMagic     = 0
	offAccel     = 2
	offGyro      = 14
	offHardIron  = 26
	offMagField  = 38
	offSoftXX    = 42
	offSoftYY    = 46
	offSoftZZ    = 50
	offSoftXY    = 54
	offSoftXZ    = 58
	offSoftYZ    = 62
	offCRC       = 66
	floatSize    = 4
	payloadBytes = offCRC
)

// Magic marks the start of a calibration packet.
var Magic = [2]byte{0x75, 0x54}

// Soft-iron matrix slots filled from each stored term. The matrix is
// treated as symmetric.
var (
	slotsXY = [2]int{1, 3}
	slotsXZ = [2]int{2, 6}
	slotsYZ = [2]int{5, 7}
)

// Encode serializes rec into a packet with magic and CRC trailer.
// Off-diagonal soft-iron terms are taken from the upper triangle.
func Encode(rec *calibration.Record) [PacketSize]byte {
	var buf [PacketSize]byte
	buf[0], buf[1] = Magic[0], Magic[1]

	putFloats(buf[offAccel:], rec.AccelZeroG[:])
	putFloats(buf[offGyro:], rec.GyroZeroRate[:])
	putFloats(buf[offHardIron:], rec.MagHardIron[:])
	putFloat(buf[offMagField:], rec.MagField)

	s := rec.MagSoftIron
	putFloat(buf[offSoftXX:], s[0])
	putFloat(buf[offSoftYY:], s[4])
	putFloat(buf[offSoftZZ:], s[8])
	putFloat(buf[offSoftXY:], s[slotsXY[0]])
	putFloat(buf[offSoftXZ:], s[slotsXZ[0]])
	putFloat(buf[offSoftYZ:], s[slotsYZ[0]])

	// The payload slice has room for the trailer, so Append fills buf in place.
	crc16.Append(buf[:payloadBytes])
	return buf
}

// Decode validates buf and, only if it is a good packet, overwrites rec.
func Decode(buf []byte, rec *calibration.Record) error {
	if len(buf) != PacketSize {
		return fmt.Errorf("packet is %d bytes, want %d: %w", len(buf), PacketSize, calibration.ErrIntegrity)
	}
	if !crc16.Valid(buf) {
		return fmt.Errorf("crc residue 0x%04X: %w", crc16.Checksum(buf), calibration.ErrIntegrity)
	}
	if buf[0] != Magic[0] || buf[1] != Magic[1] {
		return fmt.Errorf("bad magic 0x%02X 0x%02X: %w", buf[0], buf[1], calibration.ErrIntegrity)
	}

	var out calibration.Record
	getFloats(buf[offAccel:], out.AccelZeroG[:])
	getFloats(buf[offGyro:], out.GyroZeroRate[:])
	getFloats(buf[offHardIron:], out.MagHardIron[:])
	out.MagField = getFloat(buf[offMagField:])

	out.MagSoftIron[0] = getFloat(buf[offSoftXX:])
	out.MagSoftIron[4] = getFloat(buf[offSoftYY:])
	out.MagSoftIron[8] = getFloat(buf[offSoftZZ:])
	for _, term := range []struct {
		off   int
		slots [2]int
	}{
		{offSoftXY, slotsXY},
		{offSoftXZ, slotsXZ},
		{offSoftYZ, slotsYZ},
	} {
		v := getFloat(buf[term.off:])
		out.MagSoftIron[term.slots[0]] = v
		out.MagSoftIron[term.slots[1]] = v
	}

	*rec = out
	return nil
}

func putFloat(b []byte, f float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(f))
}

func putFloats(b []byte, fs []float32) {
	for i, f := range fs {
		putFloat(b[i*floatSize:], f)
	}
}

func getFloat(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func getFloats(b []byte, fs []float32) {
	for i := range fs {
		fs[i] = getFloat(b[i*floatSize:])
	}
}
