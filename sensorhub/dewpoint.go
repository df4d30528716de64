// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sensorhub

import (
	"math"

	"periph.io/x/conn/v3/physic"
)

// Magnus coefficients over water, Sonntag 1990.
const (
	magnusB = 17.62
	magnusC = 243.12
)

// DewPointTemperature returns the dew point of air at temperature t and
// relative humidity rh.
//
// There is no range check: a zero humidity yields NaN.
func DewPointTemperature(t physic.Temperature, rh physic.RelativeHumidity) physic.Temperature {
	dp := DewPointCelsius(t.Celsius(), percent(rh))
	return physic.ZeroCelsius + physic.Temperature(dp*float64(physic.Celsius))
}

// DewPointCelsius is DewPointTemperature on °C and %RH values. Saturated
// air returns t unchanged.
func DewPointCelsius(t, rh float64) float64 {
	if rh == 100 {
		return t
	}
	gamma := math.Log(rh/100) + magnusB*t/(magnusC+t)
	return magnusC * gamma / (magnusB - gamma)
}
