// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sensorhub

import (
	"reflect"
	"testing"
)

func TestSetAlarm(t *testing.T) {
	r := newRig()
	r.ndir.env = ndirEnv(22, 45.5, 1500)
	h := r.hub(t, OneWireProbe, NDIRCO2)
	if err := h.SetAlarm(DewPoint, 0, 10); err == nil {
		t.Fatal("dew point has no alarm")
	}
	if err := h.SetAlarm(Humidity, 60, 40); err == nil {
		t.Fatal("min above max")
	}
	if err := h.SetAlarm(CO2, 0, 1000); err != nil {
		t.Fatal(err)
	}
	if err := h.SetAlarm(Temperature, 21, 30); err != nil {
		t.Fatal(err)
	}
	c := h.Cycle()
	if !c.Alarm() {
		t.Fatal("expected alarm")
	}
	if got := topics(c.Alarms); !reflect.DeepEqual(got, []string{"/sensors/SCD30/co2"}) {
		t.Fatalf("unexpected %v", got)
	}

	h.ClearAlarm(CO2)
	if c := h.Cycle(); c.Alarm() {
		t.Fatalf("unexpected %v", c.Alarms)
	}
	if err := h.SetAlarm(Temperature, 21.6, 30); err != nil {
		t.Fatal(err)
	}
	if got := topics(h.Cycle().Alarms); !reflect.DeepEqual(got, []string{"/sensors/DS/temp"}) {
		t.Fatalf("unexpected %v", got)
	}
}
