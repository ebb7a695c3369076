// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WSResponse is sent back when a frame cannot be corrected.
type WSResponse struct {
	Type    string `json:"type"` // error
	Message string `json:"message,omitempty"`
}

// handleCalibrateWS corrects each text frame holding a JSON sample and
// replies with the corrected sample, or a WSResponse on error.
func (s *Session[B]) handleCalibrateWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("calibration: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	for {
		mt, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("calibration: websocket error: %v", err)
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		out, err := s.CorrectPayload(payload)
		if err != nil {
			if err := conn.WriteJSON(WSResponse{Type: "error", Message: err.Error()}); err != nil {
				return
			}
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
			log.Printf("calibration: websocket write error: %v", err)
			return
		}
	}
}
