// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sensorhub orchestrates a fixed set of environmental sensors and
// turns each read cycle into an ordered list of (topic, value) readings.
//
// The hub knows four devices:
//
//	OneWireProbe  DS18B20 on a 1-wire bus          temperature
//	HumidityTemp  BME280 on I²C                     temperature, humidity
//	VOC           CCS811 on I²C                     eCO2, TVOC
//	NDIRCO2       SCD30 on I²C                      CO2, temperature, humidity
//
// Devices are enabled with Activate before Begin. Begin opens the buses and
// the drivers; a device that cannot be opened is disabled and the others keep
// working. Each call to Cycle reads every active device once, derives the dew
// point of the devices measuring both temperature and humidity, and writes
// the best ambient temperature and humidity of the cycle into the VOC sensor
// so that its next result is compensated.
//
// Temperature precedence is OneWireProbe, then HumidityTemp, then NDIRCO2.
// Humidity precedence is HumidityTemp, then NDIRCO2.
//
// The hub is synchronous: a cycle runs to completion on the caller's
// goroutine and a stalled bus stalls the cycle.
package sensorhub
