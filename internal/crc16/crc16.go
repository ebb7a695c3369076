// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package crc16 implements the reflected 0xA001 CRC16 used to guard
// calibration packets (CRC-16/MODBUS).
package crc16

import (
	"github.com/sigurn/crc16"
)

const (
	// Seed is the initial CRC value for every calibration packet.
	Seed uint16 = 0xFFFF

	// Poly is the reflected form of 0x8005.
	Poly uint16 = 0xA001

	// Size is the length of the trailer appended by Append.
	Size = 2
)

var table = crc16.MakeTable(crc16.CRC16_MODBUS)

// Update folds one byte into crc.
func Update(crc uint16, b byte) uint16 {
	crc ^= uint16(b)
	for i := 0; i < 8; i++ {
		if crc&1 != 0 {
			crc = (crc >> 1) ^ Poly
		} else {
			crc >>= 1
		}
	}
	return crc
}

// Checksum returns the CRC of data starting from Seed.
func Checksum(data []byte) uint16 {
	return crc16.Checksum(data, table)
}

// Append appends the checksum of data, low byte first.
func Append(data []byte) []byte {
	crc := Checksum(data)
	return append(data, byte(crc), byte(crc>>8))
}

// Valid reports whether data ends with a correct trailer. A buffer whose
// last two bytes are its own checksum re-checksums to zero.
func Valid(data []byte) bool {
	return len(data) >= Size && Checksum(data) == 0
}
