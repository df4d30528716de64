// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sensorhub

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned when reading a device that is not active.
	ErrNotConfigured = errors.New("sensorhub: device not configured")
	// ErrNotAvailable is returned when a device produced no data this cycle.
	ErrNotAvailable = errors.New("sensorhub: reading not available")
	// ErrStarted is returned by configuration calls made after Begin.
	ErrStarted = errors.New("sensorhub: already started")
	// ErrNoProbe is the init error of a 1-wire bus without temperature sensor.
	ErrNoProbe = errors.New("sensorhub: no 1-wire temperature sensor found")
)

// InitError is recorded for a device that was active but could not be
// opened by Begin. The device is disabled.
type InitError struct {
	Device Device
	Err    error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("sensorhub: %s init: %v", e.Device, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

func notAvailable(err error) error {
	if err == nil {
		return ErrNotAvailable
	}
	return fmt.Errorf("%w: %w", ErrNotAvailable, err)
}
