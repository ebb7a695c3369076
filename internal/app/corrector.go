// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/sensor_calibration/internal/calibration"
	"github.com/relabs-tech/sensor_calibration/internal/config"
)

// RunCorrector subscribes to raw sensor samples, applies the active
// calibration and republishes them. The active record is published retained
// on the calibration topic, and records posted to the set topic are saved
// and take effect immediately.
func RunCorrector[B calibration.Backend](cfg *config.Config, sess *Session[B]) error {
	log.Println("starting calibration corrector (raw → corrected)")

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDCorrector)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("corrector: connected to MQTT broker at %s", cfg.MQTTBroker)

	publishRecord(client, cfg.TopicCalibration, sess.Record())

	rawToken := client.Subscribe(cfg.TopicEventRaw, 0, func(c mqtt.Client, msg mqtt.Message) {
		out, err := sess.CorrectPayload(msg.Payload())
		if err != nil {
			log.Printf("corrector: %v", err)
			return
		}
		if token := c.Publish(cfg.TopicEventCorrected, 0, false, out); token.Wait() && token.Error() != nil {
			log.Printf("corrector: MQTT publish error (%s): %v", cfg.TopicEventCorrected, token.Error())
		}
	})
	rawToken.Wait()
	if rawToken.Error() != nil {
		return rawToken.Error()
	}
	log.Printf("corrector: subscribed to %s", cfg.TopicEventRaw)

	setToken := client.Subscribe(cfg.TopicCalibrationSet, 1, func(c mqtt.Client, msg mqtt.Message) {
		rec, err := sess.ReplacePayload(msg.Payload())
		if err != nil {
			log.Printf("corrector: calibration update rejected: %v", err)
			return
		}
		publishRecord(c, cfg.TopicCalibration, rec)
	})
	setToken.Wait()
	if setToken.Error() != nil {
		return setToken.Error()
	}
	log.Printf("corrector: subscribed to %s", cfg.TopicCalibrationSet)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("corrector: shutting down")
	return nil
}

func publishRecord(client mqtt.Client, topic string, rec calibration.Record) {
	payload, err := json.Marshal(rec)
	if err != nil {
		log.Printf("corrector: calibration marshal error: %v", err)
		return
	}
	if token := client.Publish(topic, 1, true, payload); token.Wait() && token.Error() != nil {
		log.Printf("corrector: MQTT publish error (%s): %v", topic, token.Error())
	}
}
