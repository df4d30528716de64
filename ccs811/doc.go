// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ccs811 provides a driver for the ams CCS811 digital gas sensor.
//
// The sensor runs an on-chip algorithm that estimates equivalent CO2 (eCO2)
// and total volatile organic compounds (TVOC) from a metal oxide element.
// The estimate improves when the ambient temperature and relative humidity
// are written to the device, see SetEnvironmentalData.
//
// # Datasheet
//
// https://www.sciosense.com/wp-content/uploads/2020/01/SC-001232-DS-2-CCS811B-Datasheet-Revision-2.pdf
package ccs811
