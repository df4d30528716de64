// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sensorhub

// Cycle is the result of reading every active device once.
type Cycle struct {
	// Readings in emission order.
	Readings []Reading
	// Compensation is what was written to the VOC sensor, nil if nothing
	// was.
	Compensation *Compensation
	// Alarms are the readings outside their alarm band.
	Alarms []Reading
}

// Alarm reports whether any reading is outside its alarm band.
func (c *Cycle) Alarm() bool {
	return len(c.Alarms) != 0
}

// Cycle reads every active device in order, derives the dew points and
// updates the VOC sensor compensation.
//
// A device that is not available this cycle is skipped. Cycle never fails.
func (h *Hub) Cycle() Cycle {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []Reading
	var a ambient

	if t, err := h.readProbe(); err == nil {
		out = append(out, h.float(OneWireProbe, Temperature, t.Celsius()))
		a.offerTemperature(OneWireProbe, t)
	}

	if s, err := h.readThermoHygrometer(); err == nil {
		t, rh := s.Temperature.Celsius(), percent(s.Humidity)
		temp := h.float(HumidityTemp, Temperature, t)
		humi := h.float(HumidityTemp, Humidity, rh)
		if s.Placeholder {
			temp.placeholder, humi.placeholder = true, true
			out = append(out, temp, humi)
		} else {
			out = append(out, temp, humi, h.float(HumidityTemp, DewPoint, DewPointCelsius(t, rh)))
			a.offerTemperature(HumidityTemp, s.Temperature)
			a.offerHumidity(HumidityTemp, s.Humidity)
		}
	}

	if q, err := h.readAirQuality(); err == nil {
		out = append(out, h.integer(VOC, CO2, uint16(q.CO2)), h.integer(VOC, TVOC, uint16(q.TVOC)))
	}

	if e, err := h.readCO2(); err == nil {
		t, rh := e.Temperature.Celsius(), percent(e.Humidity)
		out = append(out,
			h.float(NDIRCO2, Temperature, t),
			h.float(NDIRCO2, Humidity, rh),
			h.float(NDIRCO2, DewPoint, DewPointCelsius(t, rh)),
			h.float(NDIRCO2, CO2, float64(e.CO2)))
		a.offerTemperature(NDIRCO2, e.Temperature)
		a.offerHumidity(NDIRCO2, e.Humidity)
	}

	return Cycle{
		Readings:     out,
		Compensation: h.compensate(&a),
		Alarms:       h.alarmed(out),
	}
}

// Readings runs a cycle and returns its readings.
func (h *Hub) Readings() []Reading {
	return h.Cycle().Readings
}

var _ Source = &Hub{}
