// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package publish

import (
	"context"
	"time"

	"github.com/GermanBionicSystems/sensorhub/sensorhub"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement is the InfluxDB measurement the readings are written to.
const Measurement = "sensor_data"

// PointWriter is the subset of api.WriteAPI used by Influx.
type PointWriter interface {
	WritePoint(p *write.Point)
	Flush()
}

// Influx writes one point per device and cycle, tagged with the device and
// holding one field per quantity.
//
// Values that are not numbers are dropped.
type Influx struct {
	w      PointWriter
	client influxdb2.Client
	now    func() time.Time
}

// NewInflux returns a sink writing through w. The caller closes the client
// that created w.
func NewInflux(w PointWriter) *Influx {
	return &Influx{w: w, now: time.Now}
}

// DialInflux creates a client for the bucket. Points are batched by the
// client and sent in the background.
func DialInflux(url, token, org, bucket string) *Influx {
	c := influxdb2.NewClient(url, token)
	i := NewInflux(c.WriteAPI(org, bucket))
	i.client = c
	return i
}

func (i *Influx) Publish(ctx context.Context, readings []sensorhub.Reading) error {
	ts := i.now()
	var points []*write.Point
	index := map[string]*write.Point{}
	for _, r := range readings {
		v, err := r.Float()
		if err != nil {
			continue
		}
		p := index[r.Device]
		if p == nil {
			p = influxdb2.NewPointWithMeasurement(Measurement).
				AddTag("device", r.Device).
				SetTime(ts)
			index[r.Device] = p
			points = append(points, p)
		}
		p.AddField(string(r.Quantity), v)
	}
	for _, p := range points {
		if err := ctx.Err(); err != nil {
			return err
		}
		i.w.WritePoint(p)
	}
	return nil
}

// Close flushes pending points and closes the client if Influx created it.
func (i *Influx) Close() error {
	i.w.Flush()
	if i.client != nil {
		i.client.Close()
	}
	return nil
}

var _ Sink = &Influx{}
