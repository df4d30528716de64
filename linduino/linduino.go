// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package linduino reads the RTD temperatures published by a Linduino
// (DC2026) running the LTC2983 demo firmware as an I²C slave.
//
// The Linduino answers a read with one 7 byte record per converter channel,
// each holding a NUL terminated decimal temperature in °C.
package linduino

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/GermanBionicSystems/sensorhub/sensorhub"
	"periph.io/x/conn/v3/i2c"
)

// DefaultAddress is the slave address of the Linduino firmware.
const DefaultAddress = 0x08

// RecordSize is the size of the record of one channel.
const RecordSize = 7

// ErrShortRead is returned when the Linduino sent fewer bytes than the
// channels need.
var ErrShortRead = errors.New("linduino: short read")

// Channel maps a converter channel to the name used in its topic.
type Channel struct {
	Name  string
	Index int
}

// Opts holds the configuration of a Dev.
type Opts struct {
	Addr        uint16
	TopicPrefix string
	// Logger receives short read errors; nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultOpts is the configuration of the reference board.
var DefaultOpts = Opts{
	Addr:        DefaultAddress,
	TopicPrefix: "/sensors",
}

// Dev is a handle to the Linduino.
type Dev struct {
	d        i2c.Dev
	channels []Channel
	prefix   string
	log      *slog.Logger
	size     int

	mu sync.Mutex
}

// New returns a handle reading the given channels. Nothing is sent to the
// device.
func New(b i2c.Bus, channels []Channel, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if len(channels) == 0 {
		return nil, errors.New("linduino: no channel")
	}
	seen := map[string]bool{}
	last := 0
	for _, c := range channels {
		if c.Name == "" || strings.Contains(c.Name, "/") {
			return nil, fmt.Errorf("linduino: invalid channel name %q", c.Name)
		}
		if c.Index < 0 {
			return nil, fmt.Errorf("linduino: channel %s: invalid index %d", c.Name, c.Index)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("linduino: duplicate channel %s", c.Name)
		}
		seen[c.Name] = true
		last = max(last, c.Index)
	}
	d := &Dev{
		d:        i2c.Dev{Bus: b, Addr: opts.Addr},
		channels: append([]Channel(nil), channels...),
		prefix:   opts.TopicPrefix,
		log:      opts.Logger,
		size:     (last + 1) * RecordSize,
	}
	if d.log == nil {
		d.log = slog.Default()
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("Linduino{%s}", &d.d)
}

// Halt is a noop, the Linduino converts continuously.
func (d *Dev) Halt() error {
	return nil
}

// Sense returns the value of every channel, in the order of the channels.
func (d *Dev) Sense() ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r := make([]byte, d.size)
	if err := d.d.Tx(nil, r); err != nil {
		return nil, fmt.Errorf("linduino: %w", err)
	}
	// The bus reads 0xFF once the slave stops sending.
	n := len(bytes.TrimRight(r, "\xff"))
	out := make([]string, 0, len(d.channels))
	for _, c := range d.channels {
		if (c.Index+1)*RecordSize > n {
			return nil, fmt.Errorf("%w: returned only %d bytes while %d were expected", ErrShortRead, n, d.size)
		}
		rec := r[c.Index*RecordSize : (c.Index+1)*RecordSize]
		if i := bytes.IndexByte(rec, 0); i >= 0 {
			rec = rec[:i]
		}
		out = append(out, strings.TrimSpace(string(rec)))
	}
	return out, nil
}

// Readings returns one temperature reading per channel, or none if the
// Linduino could not be read.
func (d *Dev) Readings() []sensorhub.Reading {
	values, err := d.Sense()
	if err != nil {
		d.log.Error("linduino read failed", "error", err)
		return nil
	}
	out := make([]sensorhub.Reading, 0, len(values))
	for i, v := range values {
		tag := "RTD/CHAN" + d.channels[i].Name
		out = append(out, sensorhub.Reading{
			Device:   tag,
			Quantity: sensorhub.Temperature,
			Topic:    sensorhub.Topic(d.prefix, tag, sensorhub.Temperature),
			Value:    v,
		})
	}
	return out
}

// ParseChannels parses a comma separated list of name:index pairs, for
// example "1:0,2:1".
func ParseChannels(s string) ([]Channel, error) {
	var out []Channel
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		name, idx, ok := strings.Cut(f, ":")
		if !ok {
			return nil, fmt.Errorf("linduino: invalid channel %q, want name:index", f)
		}
		i, err := strconv.Atoi(idx)
		if err != nil {
			return nil, fmt.Errorf("linduino: invalid channel %q: %w", f, err)
		}
		out = append(out, Channel{Name: name, Index: i})
	}
	return out, nil
}

var _ sensorhub.Source = &Dev{}
