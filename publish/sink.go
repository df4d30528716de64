// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package publish

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/GermanBionicSystems/sensorhub/sensorhub"
)

// Sink consumes the readings of a cycle.
type Sink interface {
	Publish(ctx context.Context, readings []sensorhub.Reading) error
	Close() error
}

// Multi publishes to every sink, in order. A failing sink does not prevent
// the next ones from receiving the readings.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, readings []sensorhub.Reading) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, readings); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", s, err))
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

// Log writes "topic -> value" lines.
type Log struct {
	W io.Writer
}

func (l *Log) Publish(_ context.Context, readings []sensorhub.Reading) error {
	return sensorhub.Print(l.W, readings)
}

func (l *Log) Close() error {
	return nil
}

var (
	_ Sink = Multi(nil)
	_ Sink = &Log{}
)
