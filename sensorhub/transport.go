// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sensorhub

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/onewire"
	"periph.io/x/conn/v3/onewire/onewirereg"
	"periph.io/x/devices/v3/ds248x"
)

// Transport provides the buses the sensors are attached to.
//
// Each bus is opened at most once and shared by every device on it.
type Transport interface {
	I2C() (i2c.Bus, error)
	OneWire() (onewire.Bus, error)
	Close() error
}

// HostTransport opens the buses registered by periph.io/x/host.
//
// host.Init() must be called before using it.
type HostTransport struct {
	// I2CName is the name of the I²C bus; empty selects the first one.
	I2CName string
	// OneWireName is the name of the 1-wire bus; empty selects the first one.
	// Ignored when OneWireBridge is set.
	OneWireName string
	// OneWireBridge is the I²C address of a DS248x 1-wire master. When 0 a
	// native 1-wire bus is used.
	OneWireBridge uint16

	mu      sync.Mutex
	i2c     i2c.BusCloser
	ow      onewire.Bus
	owClose func() error
}

func (t *HostTransport) String() string {
	return fmt.Sprintf("HostTransport{i2c:%q, onewire:%q, bridge:%#x}", t.I2CName, t.OneWireName, t.OneWireBridge)
}

// I2C opens the I²C bus on first use.
func (t *HostTransport) I2C() (i2c.Bus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.openI2C()
}

func (t *HostTransport) openI2C() (i2c.Bus, error) {
	if t.i2c != nil {
		return t.i2c, nil
	}
	b, err := openI2C(t.I2CName)
	if err != nil {
		return nil, fmt.Errorf("sensorhub: open i2c bus %q: %w", t.I2CName, err)
	}
	t.i2c = b
	return b, nil
}

// OneWire opens the 1-wire bus on first use, either natively or through the
// DS248x bridge on the I²C bus.
func (t *HostTransport) OneWire() (onewire.Bus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ow != nil {
		return t.ow, nil
	}
	if t.OneWireBridge != 0 {
		b, err := t.openI2C()
		if err != nil {
			return nil, err
		}
		d, err := ds248x.New(b, t.OneWireBridge, &ds248x.DefaultOpts)
		if err != nil {
			return nil, fmt.Errorf("sensorhub: open 1-wire bridge at %#x: %w", t.OneWireBridge, err)
		}
		t.ow = d
		return d, nil
	}
	b, err := openOneWire(t.OneWireName)
	if err != nil {
		return nil, fmt.Errorf("sensorhub: open 1-wire bus %q: %w", t.OneWireName, err)
	}
	t.ow = b
	t.owClose = b.Close
	return b, nil
}

// Close closes the buses that were opened.
func (t *HostTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	var errs []error
	if t.owClose != nil {
		errs = append(errs, t.owClose())
	}
	if t.i2c != nil {
		errs = append(errs, t.i2c.Close())
	}
	t.ow, t.owClose, t.i2c = nil, nil, nil
	return errors.Join(errs...)
}

var (
	openI2C     = i2creg.Open
	openOneWire = onewirereg.Open
)

var _ Transport = &HostTransport{}
