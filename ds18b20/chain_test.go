// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ds18b20

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/onewire"
	"periph.io/x/conn/v3/onewire/onewiretest"
	"periph.io/x/conn/v3/physic"
)

// search is the Tx issued by each pass of a bus search.
var search = onewiretest.IO{W: []byte{0xf0}, Pull: onewire.WeakPullup}

// TestChain opens a chain holding one DS18B20 and one foreign device, then
// converts and reads the sensor by index.
func TestChain(t *testing.T) {
	var addr onewire.Address = 0x740000070e41ac28
	var other onewire.Address = 0x3d00000000000001
	ops := []onewiretest.IO{
		// Two search passes, one per device.
		search,
		search,
		// Match ROM + Read Scratchpad (init)
		{
			W: []uint8{0x55, 0x28, 0xac, 0x41, 0xe, 0x7, 0x0, 0x0, 0x74, 0xbe},
			R: []uint8{0xe0, 0x1, 0x0, 0x0, 0x3f, 0xff, 0x10, 0x10, 0x3f},
		},
		// Skip ROM + Convert
		{W: []uint8{0xcc, 0x44}, Pull: true},
		// Match ROM + Read Scratchpad (read temp)
		{
			W: []uint8{0x55, 0x28, 0xac, 0x41, 0xe, 0x7, 0x0, 0x0, 0x74, 0xbe},
			R: []uint8{0xe0, 0x1, 0x0, 0x0, 0x3f, 0xff, 0x10, 0x10, 0x3f},
		},
	}
	bus := onewiretest.Playback{Ops: ops, Devices: []onewire.Address{other, addr}}
	c, err := NewChain(&bus, 10)
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 sensor, got %d", c.Len())
	}
	if c.Dev(0).Addr() != addr {
		t.Errorf("unexpected address %#016x", uint64(c.Dev(0).Addr()))
	}
	if err := c.Convert(); err != nil {
		t.Fatal(err)
	}
	temp, err := c.Temperature(0)
	if err != nil {
		t.Fatal(err)
	}
	if expected := 30*physic.Celsius + physic.ZeroCelsius; temp != expected {
		t.Errorf("expected %s, got %s", expected, temp)
	}
	if _, err := c.Temperature(1); err == nil {
		t.Error("expected error reading past the end of the chain")
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

// noPresence is what a bus master reports when no device answers the reset.
type noPresence struct{}

func (noPresence) Error() string   { return "no presence pulse" }
func (noPresence) NoDevices() bool { return true }
func (noPresence) BusError() bool  { return true }

// silentBus is a bus on which no device answers.
type silentBus struct {
	onewiretest.Playback
}

func (b *silentBus) Search(alarmOnly bool) ([]onewire.Address, error) {
	return nil, noPresence{}
}

func TestChain_empty(t *testing.T) {
	bus := silentBus{}
	c, err := NewChain(&bus, 9)
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty chain, got %d", c.Len())
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestChain_fail_search(t *testing.T) {
	// The search pass succeeds but no device shows up in the triplets.
	bus := onewiretest.Playback{Ops: []onewiretest.IO{search}, DontPanic: true}
	if _, err := NewChain(&bus, 9); err == nil {
		t.Fatal("expected search failure")
	}
}

func TestChain_fail_resolution(t *testing.T) {
	if _, err := NewChain(&onewiretest.Playback{}, 13); err == nil {
		t.Fatal("invalid resolution")
	}
}

func TestChain_fail_open(t *testing.T) {
	ops := []onewiretest.IO{
		search,
		// Match ROM + Read Scratchpad, nobody drives the bus.
		{
			W: []uint8{0x55, 0x28, 0xac, 0x41, 0xe, 0x7, 0x0, 0x0, 0x74, 0xbe},
			R: []uint8{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		},
	}
	bus := onewiretest.Playback{Ops: ops, Devices: []onewire.Address{0x740000070e41ac28}}
	_, err := NewChain(&bus, 9)
	var be onewire.BusError
	if !errors.As(err, &be) || !be.BusError() {
		t.Fatalf("expected scratchpad bus error, got %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}
