// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sensorhub

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"periph.io/x/conn/v3/physic"
)

// Reading is one published value.
type Reading struct {
	// Device is the tag of the device that produced the value.
	Device   string   `json:"device"`
	Quantity Quantity `json:"quantity"`
	Topic    string   `json:"topic"`
	Value    string   `json:"value"`

	placeholder bool
}

func (r Reading) String() string {
	return r.Topic + " -> " + r.Value
}

// Float parses the value.
func (r Reading) Float() (float64, error) {
	return strconv.ParseFloat(r.Value, 64)
}

// Source produces the readings of one cycle.
type Source interface {
	Readings() []Reading
}

// Topic returns "<prefix>/<tag>/<quantity>".
func Topic(prefix, tag string, q Quantity) string {
	return strings.TrimSuffix(prefix, "/") + "/" + tag + "/" + string(q)
}

// FormatFloat formats a measurement with two decimals.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Print writes one "topic -> value" line per reading.
func Print(w io.Writer, readings []Reading) error {
	for _, r := range readings {
		if _, err := fmt.Fprintln(w, r.String()); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hub) reading(d Device, q Quantity, value string) Reading {
	tag := d.String()
	return Reading{Device: tag, Quantity: q, Topic: Topic(h.opts.TopicPrefix, tag, q), Value: value}
}

func (h *Hub) float(d Device, q Quantity, v float64) Reading {
	return h.reading(d, q, FormatFloat(v))
}

func (h *Hub) integer(d Device, q Quantity, v uint16) Reading {
	return h.reading(d, q, strconv.Itoa(int(v)))
}

func percent(h physic.RelativeHumidity) float64 {
	return float64(h) / float64(physic.PercentRH)
}
