// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GermanBionicSystems/sensorhub/sensorhub"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher is the subset of mqtt.Client used by MQTT.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTOpts holds the publishing options.
type MQTTOpts struct {
	QoS      byte
	Retained bool
	// Timeout bounds the wait for each publication.
	Timeout time.Duration
}

// DefaultMQTTOpts publishes at most once, not retained.
var DefaultMQTTOpts = MQTTOpts{Timeout: 5 * time.Second}

// MQTT publishes each reading's value on its topic.
type MQTT struct {
	c    Publisher
	opts MQTTOpts
}

// NewMQTT returns a sink publishing through a connected client.
func NewMQTT(c Publisher, opts *MQTTOpts) *MQTT {
	if opts == nil {
		opts = &DefaultMQTTOpts
	}
	return &MQTT{c: c, opts: *opts}
}

// Connect connects a client to the broker.
func Connect(broker, clientID string, timeout time.Duration) (mqtt.Client, error) {
	c := mqtt.NewClient(mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true))
	t := c.Connect()
	if !t.WaitTimeout(timeout) {
		return nil, fmt.Errorf("publish: connect to %s: timeout", broker)
	}
	if err := t.Error(); err != nil {
		return nil, fmt.Errorf("publish: connect to %s: %w", broker, err)
	}
	return c, nil
}

func (m *MQTT) Publish(ctx context.Context, readings []sensorhub.Reading) error {
	var errs []error
	for _, r := range readings {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := m.c.Publish(r.Topic, m.opts.QoS, m.opts.Retained, r.Value)
		if !t.WaitTimeout(m.opts.Timeout) {
			errs = append(errs, fmt.Errorf("mqtt %s: timeout", r.Topic))
			continue
		}
		if err := t.Error(); err != nil {
			errs = append(errs, fmt.Errorf("mqtt %s: %w", r.Topic, err))
		}
	}
	return errors.Join(errs...)
}

// Close disconnects the client, leaving 250ms for pending work.
func (m *MQTT) Close() error {
	m.c.Disconnect(250)
	return nil
}

var _ Sink = &MQTT{}
