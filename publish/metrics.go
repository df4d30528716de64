// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package publish

import (
	"context"

	"github.com/GermanBionicSystems/sensorhub/sensorhub"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the last value of every topic as a gauge.
type Metrics struct {
	g *prometheus.GaugeVec
}

// NewMetrics registers the sensorhub_reading gauge.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sensorhub_reading",
		Help: "Last value read from a sensor.",
	}, []string{"device", "quantity", "topic"})
	if err := reg.Register(g); err != nil {
		return nil, err
	}
	return &Metrics{g: g}, nil
}

func (m *Metrics) Publish(_ context.Context, readings []sensorhub.Reading) error {
	for _, r := range readings {
		v, err := r.Float()
		if err != nil {
			continue
		}
		m.g.With(prometheus.Labels{
			"device":   r.Device,
			"quantity": string(r.Quantity),
			"topic":    r.Topic,
		}).Set(v)
	}
	return nil
}

func (m *Metrics) Close() error {
	return nil
}

var _ Sink = &Metrics{}
