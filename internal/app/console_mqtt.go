// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/sensor_calibration/internal/calibration"
	"github.com/relabs-tech/sensor_calibration/internal/config"
	"github.com/relabs-tech/sensor_calibration/internal/imu"
)

// RunConsoleMQTT prints corrected samples and calibration updates.
func RunConsoleMQTT(cfg *config.Config) error {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	eventToken := client.Subscribe(cfg.TopicEventCorrected, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s imu.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("console: sample unmarshal error: %v", err)
			return
		}
		fmt.Println(formatSample(s))
	})
	eventToken.Wait()
	if eventToken.Error() != nil {
		return eventToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicEventCorrected)

	calToken := client.Subscribe(cfg.TopicCalibration, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var rec calibration.Record
		if err := json.Unmarshal(msg.Payload(), &rec); err != nil {
			log.Printf("console: calibration unmarshal error: %v", err)
			return
		}
		fmt.Printf("[CAL]   %v\n", rec)
	})
	calToken.Wait()
	if calToken.Error() != nil {
		return calToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicCalibration)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}

func formatSample(s imu.Sample) string {
	tag := map[string]string{
		"magnetic":     "[MAG]  ",
		"gyroscope":    "[GYRO] ",
		"acceleration": "[ACC]  ",
	}[s.Type]
	if tag == "" {
		tag = "[" + s.Type + "] "
	}
	return fmt.Sprintf("%s%-6s x=%9.4f y=%9.4f z=%9.4f", tag, s.Sensor, s.X, s.Y, s.Z)
}
