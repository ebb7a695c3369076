// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bufio"
	"errors"
	"io"
	"log"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/sensor_calibration/internal/calibration"
	"github.com/relabs-tech/sensor_calibration/internal/config"
	"github.com/relabs-tech/sensor_calibration/internal/eeprom"
)

// ScanPackets reads calibration packets from r and calls fn for each one
// that passes the CRC and magic checks. Bytes between packets are skipped;
// a corrupt packet is dropped and scanning resumes one byte after its
// magic. It returns nil at EOF, or the first error from r or fn.
func ScanPackets(r io.Reader, fn func(calibration.Record) error) error {
	br := bufio.NewReader(r)
	buf := make([]byte, 0, eeprom.PacketSize)

	for {
		b, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		buf = resync(append(buf, b))
		if len(buf) < eeprom.PacketSize {
			continue
		}

		rec := calibration.NewRecord()
		if err := eeprom.Decode(buf, &rec); err != nil {
			log.Printf("serial: dropping packet: %v", err)
			buf = resync(append(buf[:0], buf[1:]...))
			continue
		}
		buf = buf[:0]
		if err := fn(rec); err != nil {
			return err
		}
	}
}

// resync discards leading bytes until buf starts with a (possibly partial)
// magic marker.
func resync(buf []byte) []byte {
	i := 0
	for i < len(buf) {
		if buf[i] != eeprom.Magic[0] || (i+1 < len(buf) && buf[i+1] != eeprom.Magic[1]) {
			i++
			continue
		}
		break
	}
	if i == 0 {
		return buf
	}
	return append(buf[:0], buf[i:]...)
}

// RunSerialReceiver listens on the configured serial port for calibration
// packets and makes each valid one the active, saved record.
func RunSerialReceiver[B calibration.Backend](cfg *config.Config, sess *Session[B]) error {
	serialOpts := serial.OpenOptions{
		PortName:              cfg.SerialPort,
		BaudRate:              uint(cfg.SerialBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return err
	}
	defer port.Close()
	log.Printf("serial: port opened on %s at %d baud", serialOpts.PortName, serialOpts.BaudRate)

	return ScanPackets(port, func(rec calibration.Record) error {
		if err := sess.Replace(rec); err != nil {
			log.Printf("serial: save failed: %v", err)
			return nil
		}
		log.Println("serial: calibration received and saved")
		return nil
	})
}
