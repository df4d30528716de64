// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package scd30 provides a driver for the Sensirion SCD30 NDIR CO2 sensor.
// The SCD30 measures CO2 concentration and, on the same sample, temperature
// and relative humidity.
//
// Refer to the interface description for more information.
//
// https://sensirion.com/media/documents/D7CEEF4A/6165372F/Sensirion_CO2_Sensors_SCD30_Interface_Description.pdf
package scd30
