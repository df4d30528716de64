// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sensorhub

import (
	"github.com/GermanBionicSystems/sensorhub/ccs811"
	"github.com/GermanBionicSystems/sensorhub/scd30"
	"periph.io/x/conn/v3/physic"
)

// Sample is a temperature and humidity measured together by one device.
type Sample struct {
	Temperature physic.Temperature
	Humidity    physic.RelativeHumidity
	// Placeholder is set on the read that reopened the device. The values are
	// zero and must not be used as a measurement.
	Placeholder bool
}

// AirQuality is one algorithm result of the VOC sensor.
type AirQuality struct {
	CO2  ccs811.CO2
	TVOC ccs811.TVOC
}

var noAirQuality = AirQuality{CO2: ccs811.Unavailable, TVOC: ccs811.Unavailable}

// ReadProbe converts and returns the temperature of the configured 1-wire
// probe.
func (h *Hub) ReadProbe() (physic.Temperature, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.readProbe()
}

// ReadThermoHygrometer samples the humidity/temperature module.
//
// After a failed read the next successful one reopens the driver and
// returns a placeholder Sample.
func (h *Hub) ReadThermoHygrometer() (Sample, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.readThermoHygrometer()
}

// ReadAirQuality fetches the latest algorithm result of the VOC sensor.
//
// Both values are ccs811.Unavailable when the sensor has no new data.
func (h *Hub) ReadAirQuality() (AirQuality, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.readAirQuality()
}

// ReadCO2 returns the latest measurement of the NDIR sensor.
func (h *Hub) ReadCO2() (scd30.Env, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.readCO2()
}

func (h *Hub) readProbe() (physic.Temperature, error) {
	if !h.ready(OneWireProbe) {
		return 0, ErrNotConfigured
	}
	if err := h.probe.Convert(); err != nil {
		return 0, notAvailable(err)
	}
	t, err := h.probe.Temperature(h.opts.ProbeIndex)
	if err != nil {
		return 0, notAvailable(err)
	}
	return t, nil
}

func (h *Hub) readThermoHygrometer() (Sample, error) {
	if !h.ready(HumidityTemp) {
		return Sample{}, ErrNotConfigured
	}
	dev := &h.devices[HumidityTemp]
	var e physic.Env
	if err := h.th.Sense(&e); err != nil {
		dev.health = Unhealthy
		return Sample{}, notAvailable(err)
	}
	switch dev.health {
	case Unhealthy:
		// Release the stale handle before the new handshake. Its error is
		// moot, the device already failed.
		if r, ok := h.th.(interface{ Halt() error }); ok {
			_ = r.Halt()
		}
		th, err := h.drivers.ThermoHygrometer(h.i2c, h.opts.ThermoHygrometerAddr)
		if err != nil {
			return Sample{}, notAvailable(err)
		}
		h.th = th
		dev.health = Recovering
		return Sample{Temperature: physic.ZeroCelsius, Placeholder: true}, nil
	case Recovering:
		dev.health = Healthy
	}
	return Sample{Temperature: e.Temperature, Humidity: e.Humidity}, nil
}

func (h *Hub) readAirQuality() (AirQuality, error) {
	if !h.ready(VOC) {
		return noAirQuality, ErrNotConfigured
	}
	ok, err := h.voc.DataAvailable()
	if err != nil || !ok {
		return noAirQuality, notAvailable(err)
	}
	if err := h.voc.ReadAlgorithmResults(); err != nil {
		return noAirQuality, notAvailable(err)
	}
	r := h.voc.Result()
	return AirQuality{CO2: r.CO2, TVOC: r.TVOC}, nil
}

func (h *Hub) readCO2() (scd30.Env, error) {
	if !h.ready(NDIRCO2) {
		return scd30.Env{}, ErrNotConfigured
	}
	ok, err := h.ndir.DataAvailable()
	if err != nil || !ok {
		return scd30.Env{}, notAvailable(err)
	}
	var e scd30.Env
	if err := h.ndir.Sense(&e); err != nil {
		return scd30.Env{}, notAvailable(err)
	}
	return e, nil
}
