// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/sensor_calibration/internal/config"
	"github.com/relabs-tech/sensor_calibration/internal/imu"
)

// RunMockProducer publishes distorted mock samples on the raw topic so the
// corrector can be exercised without hardware.
func RunMockProducer(cfg *config.Config, sensor string) error {
	log.Println("starting mock sample producer (mock → MQTT)")

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)

	src := imu.NewMockSource(sensor)
	log.Printf("mock: distortion %v", src.Distortion)

	ticker := time.NewTicker(time.Duration(cfg.MockSampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		if err := publishNext(src, func(payload []byte) error {
			token := client.Publish(cfg.TopicEventRaw, 0, false, payload)
			token.Wait()
			return token.Error()
		}); err != nil {
			log.Printf("mock: %v", err)
		}
	}
	return nil
}

// publishNext takes one sample from src and hands its JSON form to publish.
func publishNext(src imu.SampleSource, publish func([]byte) error) error {
	s, err := src.Next()
	if err != nil {
		return fmt.Errorf("source error: %w", err)
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("json marshal error: %w", err)
	}
	if err := publish(payload); err != nil {
		return fmt.Errorf("MQTT publish error: %w", err)
	}
	return nil
}
