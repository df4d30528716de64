// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sensorhub

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/GermanBionicSystems/sensorhub/ccs811"
	"github.com/GermanBionicSystems/sensorhub/scd30"
	"periph.io/x/conn/v3/i2c"
)

// Opts holds the configuration of a Hub.
type Opts struct {
	// TopicPrefix is prepended to every topic.
	TopicPrefix string
	// ProbeIndex selects the probe reported when the 1-wire bus carries
	// several.
	ProbeIndex int
	// ProbeResolution is the DS18B20 resolution in bits, 9 to 12.
	ProbeResolution int

	ThermoHygrometerAddr uint16
	AirQualityAddr       uint16
	CO2Addr              uint16

	// Drivers opens the devices; nil uses DefaultDrivers.
	Drivers *Drivers
	// Logger receives device init warnings; nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultOpts is the configuration of the reference board.
var DefaultOpts = Opts{
	TopicPrefix:          "/sensors",
	ProbeIndex:           0,
	ProbeResolution:      10,
	ThermoHygrometerAddr: 0x76,
	AirQualityAddr:       ccs811.DefaultAddress,
	CO2Addr:              scd30.SensorAddress,
}

// Hub owns the drivers of the active devices and runs read cycles over
// them.
type Hub struct {
	mu        sync.Mutex
	opts      Opts
	drivers   Drivers
	transport Transport
	log       *slog.Logger

	started bool
	halted  bool
	devices [numDevices]device
	i2c     i2c.Bus

	probe ProbeChain
	th    ThermoHygrometer
	voc   AirQualitySensor
	ndir  CO2Sensor

	alarms map[Quantity]band
}

// New returns a hub with no active device. The transport is not used until
// Begin.
func New(t Transport, opts *Opts) *Hub {
	if opts == nil {
		opts = &DefaultOpts
	}
	h := &Hub{opts: *opts, transport: t, log: opts.Logger, alarms: map[Quantity]band{}}
	if opts.Drivers != nil {
		h.drivers = *opts.Drivers
	} else {
		h.drivers = DefaultDrivers
	}
	if h.log == nil {
		h.log = slog.Default()
	}
	return h
}

// Activate enables or disables a device. It must be called before Begin.
func (h *Hub) Activate(d Device, enabled bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !d.valid() {
		return fmt.Errorf("sensorhub: unknown device %d", int(d))
	}
	if h.started {
		return ErrStarted
	}
	h.devices[d].active = enabled
	return nil
}

// Begin opens the buses and the drivers of the active devices.
//
// A device that cannot be opened is disabled, a warning is logged and the
// other devices are still opened. Begin only fails when called twice.
func (h *Hub) Begin() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return ErrStarted
	}
	h.started = true

	if h.devices[OneWireProbe].active {
		h.beginProbe()
	}
	if h.devices[HumidityTemp].active || h.devices[VOC].active || h.devices[NDIRCO2].active {
		b, err := h.transport.I2C()
		if err != nil {
			for _, d := range Devices {
				if d.onI2C() && h.devices[d].active {
					h.disable(d, err)
				}
			}
		} else {
			h.i2c = b
			h.beginI2C()
		}
	}
	for i := range h.devices {
		h.devices[i].health = Healthy
	}
	return nil
}

func (h *Hub) beginProbe() {
	b, err := h.transport.OneWire()
	if err != nil {
		h.disable(OneWireProbe, err)
		return
	}
	c, err := h.drivers.Probe(b, h.opts.ProbeResolution)
	if err != nil {
		h.disable(OneWireProbe, err)
		return
	}
	if c.Len() == 0 {
		h.disable(OneWireProbe, ErrNoProbe)
		return
	}
	if h.opts.ProbeIndex < 0 || h.opts.ProbeIndex >= c.Len() {
		h.disable(OneWireProbe, fmt.Errorf("probe index %d out of range, %d found", h.opts.ProbeIndex, c.Len()))
		return
	}
	h.probe = c
}

func (h *Hub) beginI2C() {
	var err error
	if h.devices[HumidityTemp].active {
		if h.th, err = h.drivers.ThermoHygrometer(h.i2c, h.opts.ThermoHygrometerAddr); err != nil {
			h.disable(HumidityTemp, err)
		}
	}
	if h.devices[VOC].active {
		if h.voc, err = h.drivers.AirQuality(h.i2c, h.opts.AirQualityAddr); err != nil {
			h.disable(VOC, err)
		}
	}
	if h.devices[NDIRCO2].active {
		if h.ndir, err = h.drivers.CO2(h.i2c, h.opts.CO2Addr); err != nil {
			h.disable(NDIRCO2, err)
		}
	}
}

func (h *Hub) disable(d Device, err error) {
	e := &InitError{Device: d, Err: err}
	h.devices[d].active = false
	h.devices[d].initErr = e
	h.log.Warn("sensor disabled", "device", d.String(), "error", err)
}

// Active reports whether the device is enabled and, after Begin, opened.
func (h *Hub) Active(d Device) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return d.valid() && h.devices[d].active
}

// Health returns the health of the device.
func (h *Hub) Health(d Device) Health {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !d.valid() {
		return Unhealthy
	}
	return h.devices[d].health
}

// InitError returns the *InitError that disabled the device during Begin,
// if any.
func (h *Hub) InitError(d Device) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !d.valid() {
		return nil
	}
	return h.devices[d].initErr
}

// Halt halts the drivers and closes the buses. The hub cannot be used
// afterward.
func (h *Hub) Halt() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.halted {
		return nil
	}
	h.halted = true
	var errs []error
	for _, x := range []any{h.probe, h.th, h.voc, h.ndir} {
		if r, ok := x.(interface{ Halt() error }); ok {
			errs = append(errs, r.Halt())
		}
	}
	if h.started {
		errs = append(errs, h.transport.Close())
	}
	return errors.Join(errs...)
}

func (h *Hub) String() string {
	return fmt.Sprintf("sensorhub{%s}", h.opts.TopicPrefix)
}

// ready reports whether the device has a driver to read from.
func (h *Hub) ready(d Device) bool {
	return h.started && !h.halted && h.devices[d].active
}
