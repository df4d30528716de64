// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sensorhub is a container for an environmental sensor station.
//
// The sensorhub package reads a DS18B20 probe, a BME280, a CCS811 and a SCD30
// and feeds the ambient temperature and humidity back into the CCS811. The
// drivers periph.io/x/devices lacks live next to it: ccs811, scd30 and the
// ds18b20 chain. linduino reads an LTC2983 RTD board through a Linduino,
// publish sends readings to MQTT, InfluxDB, Prometheus and websockets, and
// cmd/sensorhub ties everything together.
package sensorhub
