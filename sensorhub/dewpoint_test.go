// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sensorhub

import (
	"math"
	"testing"
)

func TestDewPointCelsius(t *testing.T) {
	data := []struct {
		t, rh, want float64
	}{
		{25, 50, 13.85},
		{23, 40, 8.67},
		{20, 60, 12.00},
		{-5, 80, -7.92},
	}
	for _, line := range data {
		if got := DewPointCelsius(line.t, line.rh); math.Abs(got-line.want) > 0.01 {
			t.Errorf("DewPointCelsius(%g, %g) = %g, want %g", line.t, line.rh, got, line.want)
		}
	}
}

func TestDewPointCelsius_saturated(t *testing.T) {
	for _, c := range []float64{-20, 0, 12.5, 25, 40, 59.9} {
		if got := DewPointCelsius(c, 100); got != c {
			t.Errorf("DewPointCelsius(%g, 100) = %g", c, got)
		}
	}
}

func TestDewPointTemperature(t *testing.T) {
	e := env(25, 50)
	if got := DewPointTemperature(e.Temperature, e.Humidity).Celsius(); math.Abs(got-13.85) > 0.01 {
		t.Fatalf("got %g", got)
	}
	if got := DewPointCelsius(25, 0); !math.IsNaN(got) {
		t.Fatalf("dry air has no dew point, got %g", got)
	}
}
