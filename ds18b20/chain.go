// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ds18b20

import (
	"errors"
	"fmt"
	"strings"

	"periph.io/x/conn/v3/onewire"
	"periph.io/x/conn/v3/physic"
)

// Chain is the set of DS18B20/DS18S20 sensors found on one 1-wire bus.
//
// Sensors are addressed by their index in search order, so a setup with a
// single probe uses index 0. One conversion is started for the whole bus and
// each sensor's scratchpad is then read individually.
type Chain struct {
	bus        onewire.Bus
	resolution int
	devs       []*Dev
}

// NewChain searches the bus and opens every temperature sensor found on it.
// Devices of other families are skipped.
//
// An empty chain, including a bus reporting no presence pulse, is not an
// error: callers decide what to do with Len()==0.
func NewChain(o onewire.Bus, resolutionBits int) (*Chain, error) {
	if err := checkResolution(resolutionBits); err != nil {
		return nil, err
	}
	addrs, err := o.Search(false)
	if err != nil {
		var nd onewire.NoDevicesError
		if !errors.As(err, &nd) || !nd.NoDevices() {
			return nil, fmt.Errorf("ds18b20: search: %w", err)
		}
	}
	c := &Chain{bus: o, resolution: resolutionBits}
	for _, a := range addrs {
		if !FamilyOf(a).Supported() {
			continue
		}
		d, err := New(o, a, resolutionBits)
		if err != nil {
			return nil, fmt.Errorf("ds18b20: %#016x: %w", uint64(a), err)
		}
		c.devs = append(c.devs, d)
		c.resolution = max(c.resolution, d.Resolution())
	}
	return c, nil
}

// Len returns the number of sensors on the chain.
func (c *Chain) Len() int {
	return len(c.devs)
}

// Dev returns the sensor at index i.
func (c *Chain) Dev(i int) *Dev {
	return c.devs[i]
}

// Convert starts a conversion on every sensor of the chain and waits for it
// to complete.
func (c *Chain) Convert() error {
	return ConvertAll(c.bus, c.resolution)
}

// Temperature returns the result of the last conversion of the sensor at
// index i.
func (c *Chain) Temperature(i int) (physic.Temperature, error) {
	if i < 0 || i >= len(c.devs) {
		return 0, fmt.Errorf("ds18b20: no sensor at index %d, chain has %d", i, len(c.devs))
	}
	return c.devs[i].LastTemp()
}

func (c *Chain) String() string {
	names := make([]string, len(c.devs))
	for i, d := range c.devs {
		names[i] = d.String()
	}
	return "Chain{" + strings.Join(names, ", ") + "}"
}
