// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sensorhub

import "strconv"

// Device identifies one of the sensors managed by the hub. Devices are
// declared in read order, which is also the temperature precedence order.
type Device int

const (
	OneWireProbe Device = iota
	HumidityTemp
	VOC
	NDIRCO2

	numDevices
)

// Devices lists every device in read order.
var Devices = [numDevices]Device{OneWireProbe, HumidityTemp, VOC, NDIRCO2}

// String returns the tag used in topics.
func (d Device) String() string {
	switch d {
	case OneWireProbe:
		return "DS"
	case HumidityTemp:
		return "BME"
	case VOC:
		return "CCS"
	case NDIRCO2:
		return "SCD30"
	default:
		return "Device(" + strconv.Itoa(int(d)) + ")"
	}
}

func (d Device) valid() bool {
	return d >= 0 && d < numDevices
}

func (d Device) onI2C() bool {
	return d == HumidityTemp || d == VOC || d == NDIRCO2
}

// Health is the availability of an active device as seen by the read
// pipeline.
type Health int

const (
	// Healthy devices report what they read.
	Healthy Health = iota
	// Unhealthy devices failed their last read. The next successful read
	// reopens the driver.
	Unhealthy
	// Recovering devices were reopened on their last read and reported a
	// placeholder. The next successful read is reported as is.
	Recovering
)

func (h Health) String() string {
	switch h {
	case Healthy:
		return "healthy"
	case Unhealthy:
		return "unhealthy"
	case Recovering:
		return "recovering"
	default:
		return "Health(" + strconv.Itoa(int(h)) + ")"
	}
}

// Quantity is the measured value of a reading, used as the last topic
// element.
type Quantity string

const (
	Temperature Quantity = "temp"
	Humidity    Quantity = "humi"
	DewPoint    Quantity = "dew"
	CO2         Quantity = "co2"
	TVOC        Quantity = "tvoc"
)

type device struct {
	active  bool
	health  Health
	initErr error
}
