// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package publish delivers the readings of a cycle to their consumers.
//
// Every consumer implements Sink: an MQTT broker, an InfluxDB bucket, a
// Prometheus gauge, a text log, and an HTTP server offering the latest
// readings as JSON and as a websocket stream.
package publish
