// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sensorhub_test

import (
	"fmt"
	"log"
	"os"

	"github.com/GermanBionicSystems/sensorhub/sensorhub"
	"periph.io/x/host/v3"
)

func Example() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	// Use the first I²C and 1-wire buses.
	h := sensorhub.New(&sensorhub.HostTransport{}, nil)
	defer h.Halt()
	for _, d := range []sensorhub.Device{sensorhub.OneWireProbe, sensorhub.HumidityTemp, sensorhub.VOC} {
		if err := h.Activate(d, true); err != nil {
			log.Fatal(err)
		}
	}
	// Devices that do not answer are disabled.
	if err := h.Begin(); err != nil {
		log.Fatal(err)
	}

	c := h.Cycle()
	if err := sensorhub.Print(os.Stdout, c.Readings); err != nil {
		log.Fatal(err)
	}
	if c.Compensation != nil {
		fmt.Printf("VOC compensated with %s from %s and %s from %s\n",
			c.Compensation.Temperature, c.Compensation.TemperatureSource,
			c.Compensation.Humidity, c.Compensation.HumiditySource)
	}
}

func ExampleDewPointCelsius() {
	fmt.Printf("%.2f\n", sensorhub.DewPointCelsius(25, 50))
	// Output:
	// 13.85
}
