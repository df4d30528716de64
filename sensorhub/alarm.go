// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sensorhub

import "fmt"

type band struct {
	lo, hi float64
}

// SetAlarm sets the band outside of which a reading of quantity q is
// reported in Cycle.Alarms. It applies to every device measuring q.
//
// Values are in °C, %RH, ppm and ppb. Dew point has no alarm.
func (h *Hub) SetAlarm(q Quantity, lo, hi float64) error {
	switch q {
	case Temperature, Humidity, CO2, TVOC:
	default:
		return fmt.Errorf("sensorhub: no alarm for %q", q)
	}
	if lo > hi {
		return fmt.Errorf("sensorhub: %s alarm: low %g above high %g", q, lo, hi)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.alarms[q] = band{lo, hi}
	return nil
}

// ClearAlarm removes the alarm on quantity q.
func (h *Hub) ClearAlarm(q Quantity) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.alarms, q)
}

func (h *Hub) alarmed(rs []Reading) []Reading {
	var out []Reading
	for _, r := range rs {
		b, ok := h.alarms[r.Quantity]
		if !ok || r.placeholder {
			continue
		}
		v, err := r.Float()
		if err != nil {
			continue
		}
		if v < b.lo || v > b.hi {
			out = append(out, r)
		}
	}
	return out
}
