// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sensorhub

import (
	"github.com/GermanBionicSystems/sensorhub/ccs811"
	"github.com/GermanBionicSystems/sensorhub/ds18b20"
	"github.com/GermanBionicSystems/sensorhub/scd30"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/onewire"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
)

// ProbeChain is a set of 1-wire temperature probes converting together and
// read by index.
type ProbeChain interface {
	Len() int
	Convert() error
	Temperature(i int) (physic.Temperature, error)
}

// ThermoHygrometer measures temperature and humidity in a single sample.
type ThermoHygrometer interface {
	Sense(e *physic.Env) error
}

// AirQualitySensor is a metal oxide VOC sensor reporting equivalent CO2 and
// TVOC from one algorithm result.
type AirQualitySensor interface {
	DataAvailable() (bool, error)
	ReadAlgorithmResults() error
	Result() ccs811.Result
	SetEnvironmentalData(h physic.RelativeHumidity, t physic.Temperature) error
}

// CO2Sensor is an NDIR CO2 sensor that also reports temperature and
// humidity.
type CO2Sensor interface {
	DataAvailable() (bool, error)
	Sense(e *scd30.Env) error
}

// Drivers opens the device drivers. Each function performs the device
// handshake and fails if the device does not answer as expected.
//
// Begin uses them once per active device, the reading pipeline again to
// reopen a device after a failure.
type Drivers struct {
	Probe            func(b onewire.Bus, resolutionBits int) (ProbeChain, error)
	ThermoHygrometer func(b i2c.Bus, addr uint16) (ThermoHygrometer, error)
	AirQuality       func(b i2c.Bus, addr uint16) (AirQualitySensor, error)
	CO2              func(b i2c.Bus, addr uint16) (CO2Sensor, error)
}

// DefaultDrivers opens a DS18B20 chain, a BME280, a CCS811 and a SCD30.
var DefaultDrivers = Drivers{
	Probe: func(b onewire.Bus, resolutionBits int) (ProbeChain, error) {
		c, err := ds18b20.NewChain(b, resolutionBits)
		if err != nil {
			return nil, err
		}
		return c, nil
	},
	ThermoHygrometer: func(b i2c.Bus, addr uint16) (ThermoHygrometer, error) {
		d, err := bmxx80.NewI2C(b, addr, &bmxx80.DefaultOpts)
		if err != nil {
			return nil, err
		}
		return d, nil
	},
	AirQuality: func(b i2c.Bus, addr uint16) (AirQualitySensor, error) {
		d, err := ccs811.NewI2C(b, addr, &ccs811.DefaultOpts)
		if err != nil {
			return nil, err
		}
		return d, nil
	},
	CO2: func(b i2c.Bus, addr uint16) (CO2Sensor, error) {
		d, err := scd30.NewI2C(b, addr, &scd30.DefaultOpts)
		if err != nil {
			return nil, err
		}
		return d, nil
	},
}
