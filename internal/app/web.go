// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/relabs-tech/sensor_calibration/internal/calibration"
	"github.com/relabs-tech/sensor_calibration/internal/config"
)

const maxBodyBytes = 1 << 16

// Handler exposes the session over HTTP:
//
//	GET  /api/calibration      active record as JSON
//	PUT  /api/calibration      replace and save the record
//	GET  /api/calibration/raw  stored calibration dump
//	POST /api/calibrate        correct one sample
//	GET  /ws/calibrate         stream samples in, corrected samples out
func (s *Session[B]) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/calibration", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Record())
	})

	mux.HandleFunc("PUT /api/calibration", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rec, err := s.ReplacePayload(body)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		writeJSON(w, http.StatusOK, rec)
	})

	mux.HandleFunc("GET /api/calibration/raw", func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := s.Dump(&buf); err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write(buf.Bytes())
	})

	mux.HandleFunc("POST /api/calibrate", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		out, err := s.CorrectPayload(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(out)
	})

	mux.HandleFunc("GET /ws/calibrate", s.handleCalibrateWS)
	return mux
}

// RunWeb serves the session's handler on the configured port.
func RunWeb[B calibration.Backend](cfg *config.Config, sess *Session[B]) error {
	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, sess.Handler())
}

// statusFor maps storage failures to 503 and everything else to 400.
func statusFor(err error) int {
	switch {
	case errors.Is(err, calibration.ErrStorageUnavailable),
		errors.Is(err, calibration.ErrOpen),
		errors.Is(err, calibration.ErrIntegrity):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}
