// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sensorhub

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/GermanBionicSystems/sensorhub/ccs811"
	"github.com/GermanBionicSystems/sensorhub/scd30"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/onewire"
	"periph.io/x/conn/v3/onewire/onewiretest"
	"periph.io/x/conn/v3/physic"
)

var errBus = errors.New("bus error")

type fakeTransport struct {
	i2cErr, owErr error
	i2cN, owN     int
	closed        int
}

func (t *fakeTransport) I2C() (i2c.Bus, error) {
	t.i2cN++
	if t.i2cErr != nil {
		return nil, t.i2cErr
	}
	return &i2ctest.Playback{DontPanic: true}, nil
}

func (t *fakeTransport) OneWire() (onewire.Bus, error) {
	t.owN++
	if t.owErr != nil {
		return nil, t.owErr
	}
	return &onewiretest.Playback{DontPanic: true}, nil
}

func (t *fakeTransport) Close() error {
	t.closed++
	return nil
}

type fakeChain struct {
	temps    []physic.Temperature
	err      error
	converts int
	halted   bool
}

func (c *fakeChain) Len() int { return len(c.temps) }

func (c *fakeChain) Convert() error {
	c.converts++
	return c.err
}

func (c *fakeChain) Temperature(i int) (physic.Temperature, error) {
	if c.err != nil {
		return 0, c.err
	}
	return c.temps[i], nil
}

func (c *fakeChain) Halt() error {
	c.halted = true
	return nil
}

// fakeTH returns the samples in order, nil entries fail.
type fakeTH struct {
	samples []*physic.Env
	n       int
	halts   int
}

func (f *fakeTH) Halt() error {
	f.halts++
	return nil
}

func (f *fakeTH) Sense(e *physic.Env) error {
	s := f.samples[f.n%len(f.samples)]
	f.n++
	if s == nil {
		return errBus
	}
	*e = *s
	return nil
}

type pushed struct {
	h physic.RelativeHumidity
	t physic.Temperature
}

type fakeVOC struct {
	available []bool
	polls     int
	fetches   int
	result    ccs811.Result
	pushes    []pushed
	pushErr   error
}

func (f *fakeVOC) DataAvailable() (bool, error) {
	ok := true
	if len(f.available) != 0 {
		ok = f.available[f.polls%len(f.available)]
	}
	f.polls++
	return ok, nil
}

func (f *fakeVOC) ReadAlgorithmResults() error {
	f.fetches++
	return nil
}

func (f *fakeVOC) Result() ccs811.Result {
	return f.result
}

func (f *fakeVOC) SetEnvironmentalData(h physic.RelativeHumidity, t physic.Temperature) error {
	f.pushes = append(f.pushes, pushed{h, t})
	return f.pushErr
}

type fakeNDIR struct {
	notReady bool
	env      scd30.Env
	senses   int
}

func (f *fakeNDIR) DataAvailable() (bool, error) {
	return !f.notReady, nil
}

func (f *fakeNDIR) Sense(e *scd30.Env) error {
	f.senses++
	*e = f.env
	return nil
}

// rig wires fakes into a hub and counts driver opens.
type rig struct {
	transport fakeTransport
	chain     *fakeChain
	th        *fakeTH
	voc       *fakeVOC
	ndir      *fakeNDIR

	thErrs []error
	vocErr error
	opens  [numDevices]int
}

func (r *rig) drivers() *Drivers {
	return &Drivers{
		Probe: func(onewire.Bus, int) (ProbeChain, error) {
			r.opens[OneWireProbe]++
			if r.chain == nil {
				return nil, errBus
			}
			return r.chain, nil
		},
		ThermoHygrometer: func(i2c.Bus, uint16) (ThermoHygrometer, error) {
			n := r.opens[HumidityTemp]
			r.opens[HumidityTemp]++
			if n < len(r.thErrs) && r.thErrs[n] != nil {
				return nil, r.thErrs[n]
			}
			if r.th == nil {
				return nil, errBus
			}
			return r.th, nil
		},
		AirQuality: func(i2c.Bus, uint16) (AirQualitySensor, error) {
			r.opens[VOC]++
			if r.vocErr != nil || r.voc == nil {
				return nil, errBus
			}
			return r.voc, nil
		},
		CO2: func(i2c.Bus, uint16) (CO2Sensor, error) {
			r.opens[NDIRCO2]++
			if r.ndir == nil {
				return nil, errBus
			}
			return r.ndir, nil
		},
	}
}

// hub returns a started hub with the given devices active.
func (r *rig) hub(t testing.TB, active ...Device) *Hub {
	opts := DefaultOpts
	opts.Drivers = r.drivers()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(&r.transport, &opts)
	for _, d := range active {
		if err := h.Activate(d, true); err != nil {
			t.Fatal(err)
		}
	}
	if err := h.Begin(); err != nil {
		t.Fatal(err)
	}
	return h
}

func env(c float64, rh float64) *physic.Env {
	return &physic.Env{
		Temperature: physic.ZeroCelsius + physic.Temperature(c*float64(physic.Celsius)),
		Humidity:    physic.RelativeHumidity(rh * float64(physic.PercentRH)),
	}
}

func ndirEnv(c, rh, ppm float64) scd30.Env {
	return scd30.Env{Env: *env(c, rh), CO2: scd30.PPM(ppm)}
}

func topics(rs []Reading) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Topic)
	}
	return out
}

func value(rs []Reading, topic string) (string, bool) {
	for _, r := range rs {
		if r.Topic == topic {
			return r.Value, true
		}
	}
	return "", false
}
