// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ccs811

import (
	"errors"
	"testing"
	"time"

	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

func openOps() []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: DefaultAddress, W: []byte{0xff, 0x11, 0xe5, 0x72, 0x8a}},
		{Addr: DefaultAddress, W: []byte{regHWID}, R: []byte{0x81}},
		{Addr: DefaultAddress, W: []byte{regStatus}, R: []byte{0x10}},
		{Addr: DefaultAddress, W: []byte{regAppStart}},
		{Addr: DefaultAddress, W: []byte{regStatus}, R: []byte{0x90}},
		{Addr: DefaultAddress, W: []byte{regMeasMode, 0x10}},
	}
}

func TestNewI2C(t *testing.T) {
	bus := &i2ctest.Playback{Ops: openOps()}
	d, err := NewI2C(bus, DefaultAddress, nil)
	if err != nil {
		t.Fatal(err)
	}
	if d.CO2() != Unavailable || d.TVOC() != Unavailable {
		t.Errorf("expected unavailable values before first fetch, got %s %s", d.CO2(), d.TVOC())
	}
	if s := d.String(); len(s) == 0 {
		t.Error("string returned empty")
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewI2C_fail(t *testing.T) {
	tests := []struct {
		name string
		ops  []i2ctest.IO
	}{
		{"no device", nil},
		{"wrong id", []i2ctest.IO{
			{Addr: DefaultAddress, W: []byte{0xff, 0x11, 0xe5, 0x72, 0x8a}},
			{Addr: DefaultAddress, W: []byte{regHWID}, R: []byte{0x55}},
		}},
		{"no app", []i2ctest.IO{
			{Addr: DefaultAddress, W: []byte{0xff, 0x11, 0xe5, 0x72, 0x8a}},
			{Addr: DefaultAddress, W: []byte{regHWID}, R: []byte{0x81}},
			{Addr: DefaultAddress, W: []byte{regStatus}, R: []byte{0x00}},
		}},
		{"device error", []i2ctest.IO{
			{Addr: DefaultAddress, W: []byte{0xff, 0x11, 0xe5, 0x72, 0x8a}},
			{Addr: DefaultAddress, W: []byte{regHWID}, R: []byte{0x81}},
			{Addr: DefaultAddress, W: []byte{regStatus}, R: []byte{0x11}},
			{Addr: DefaultAddress, W: []byte{regErrorID}, R: []byte{0x10}},
		}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			bus := &i2ctest.Playback{Ops: test.ops, DontPanic: true}
			if d, err := NewI2C(bus, DefaultAddress, &DefaultOpts); d != nil || err == nil {
				t.Fatal("expected failure")
			}
		})
	}
}

func TestDeviceError(t *testing.T) {
	ops := append(openOps(),
		i2ctest.IO{Addr: DefaultAddress, W: []byte{regStatus}, R: []byte{0x91}},
		i2ctest.IO{Addr: DefaultAddress, W: []byte{regErrorID}, R: []byte{0x10}},
	)
	d, err := NewI2C(&i2ctest.Playback{Ops: ops}, DefaultAddress, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = d.DataAvailable()
	var de *DeviceError
	if !errors.As(err, &de) || de.ID != 0x10 {
		t.Fatalf("expected DeviceError 0x10, got %v", err)
	}
}

func TestReadAlgorithmResults(t *testing.T) {
	ops := append(openOps(),
		i2ctest.IO{Addr: DefaultAddress, W: []byte{regStatus}, R: []byte{0x90}},
		i2ctest.IO{Addr: DefaultAddress, W: []byte{regStatus}, R: []byte{0x98}},
		i2ctest.IO{Addr: DefaultAddress, W: []byte{regAlgResultData}, R: []byte{0x01, 0x90, 0x00, 0x05, 0x98, 0x00, 0x12, 0x34}},
	)
	bus := &i2ctest.Playback{Ops: ops}
	d, err := NewI2C(bus, DefaultAddress, nil)
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := d.DataAvailable(); err != nil || ok {
		t.Fatalf("expected no data, got %t %v", ok, err)
	}
	if ok, err := d.DataAvailable(); err != nil || !ok {
		t.Fatalf("expected data, got %t %v", ok, err)
	}
	if err := d.ReadAlgorithmResults(); err != nil {
		t.Fatal(err)
	}
	r := d.Result()
	if r.CO2 != 400 || r.TVOC != 5 || r.Raw != 0x1234 {
		t.Errorf("unexpected result %+v", r)
	}
	if s := r.CO2.String(); s != "400ppm" {
		t.Errorf("unexpected CO2 string %q", s)
	}
	if s := r.TVOC.String(); s != "5ppb" {
		t.Errorf("unexpected TVOC string %q", s)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSetEnvironmentalData(t *testing.T) {
	tests := []struct {
		h physic.RelativeHumidity
		t physic.Temperature
		w []byte
	}{
		{50 * physic.PercentRH, physic.ZeroCelsius + 25*physic.Kelvin, []byte{regEnvData, 0x64, 0x00, 0x64, 0x00}},
		{0, physic.ZeroCelsius - 25*physic.Kelvin, []byte{regEnvData, 0x00, 0x00, 0x00, 0x00}},
		{150 * physic.PercentRH, physic.ZeroCelsius - 40*physic.Kelvin, []byte{regEnvData, 0xc8, 0x00, 0x00, 0x00}},
	}
	for _, test := range tests {
		ops := append(openOps(), i2ctest.IO{Addr: DefaultAddress, W: test.w})
		bus := &i2ctest.Playback{Ops: ops}
		d, err := NewI2C(bus, DefaultAddress, nil)
		if err != nil {
			t.Fatal(err)
		}
		if err := d.SetEnvironmentalData(test.h, test.t); err != nil {
			t.Errorf("SetEnvironmentalData(%s, %s): %v", test.h, test.t, err)
		}
		if err := bus.Close(); err != nil {
			t.Error(err)
		}
	}
}

func TestBaseline(t *testing.T) {
	ops := append(openOps(),
		i2ctest.IO{Addr: DefaultAddress, W: []byte{regBaseline}, R: []byte{0x84, 0xb1}},
		i2ctest.IO{Addr: DefaultAddress, W: []byte{regBaseline, 0x84, 0xb1}},
		i2ctest.IO{Addr: DefaultAddress, W: []byte{regMeasMode, 0x00}},
	)
	bus := &i2ctest.Playback{Ops: ops}
	d, err := NewI2C(bus, DefaultAddress, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := d.Baseline()
	if err != nil {
		t.Fatal(err)
	}
	if b != 0x84b1 {
		t.Errorf("unexpected baseline %#x", b)
	}
	if err := d.SetBaseline(b); err != nil {
		t.Fatal(err)
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSetDriveMode_invalid(t *testing.T) {
	d, err := NewI2C(&i2ctest.Playback{Ops: openOps()}, DefaultAddress, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.SetDriveMode(DriveMode(9)); err == nil {
		t.Fatal("expected invalid drive mode error")
	}
}

func init() {
	sleep = func(time.Duration) {}
}
