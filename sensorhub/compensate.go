// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sensorhub

import "periph.io/x/conn/v3/physic"

// Compensation is the ambient temperature and humidity written to the VOC
// sensor at the end of a cycle. It applies to the next cycle's result.
type Compensation struct {
	Temperature       physic.Temperature
	TemperatureSource Device
	Humidity          physic.RelativeHumidity
	HumiditySource    Device
	// Err is the error returned by the sensor, if any.
	Err error
}

// ambient is the best temperature and humidity read during one cycle.
// Devices are ranked by their declaration order.
type ambient struct {
	t     physic.Temperature
	tSrc  Device
	hasT  bool
	rh    physic.RelativeHumidity
	rhSrc Device
	hasRH bool
}

func (a *ambient) offerTemperature(d Device, t physic.Temperature) {
	if a.hasT && a.tSrc <= d {
		return
	}
	a.t, a.tSrc, a.hasT = t, d, true
}

func (a *ambient) offerHumidity(d Device, rh physic.RelativeHumidity) {
	if a.hasRH && a.rhSrc <= d {
		return
	}
	a.rh, a.rhSrc, a.hasRH = rh, d, true
}

// compensate pushes the cycle's ambient values to the VOC sensor. It
// returns nil when nothing was pushed.
func (h *Hub) compensate(a *ambient) *Compensation {
	if !a.hasT || !a.hasRH || !h.ready(VOC) {
		return nil
	}
	c := &Compensation{Temperature: a.t, TemperatureSource: a.tSrc, Humidity: a.rh, HumiditySource: a.rhSrc}
	if c.Err = h.voc.SetEnvironmentalData(a.rh, a.t); c.Err != nil {
		h.log.Debug("compensation not applied", "device", VOC.String(), "error", c.Err)
	}
	return c
}
