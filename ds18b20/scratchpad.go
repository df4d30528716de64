// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ds18b20

import (
	"periph.io/x/conn/v3/onewire"
	"periph.io/x/conn/v3/physic"
)

// scratchpad is the 9 byte memory returned by Read Scratchpad:
//
//	0-1  temperature, LSB first
//	2-3  TH and TL alarm registers
//	4    configuration (DS18B20)
//	5    reserved
//	6    COUNT REMAIN (DS18S20)
//	7    COUNT PER °C (DS18S20)
//	8    CRC
type scratchpad [9]byte

func (s *scratchpad) check() error {
	if onewire.CheckCRC(s[:]) {
		return nil
	}
	for _, b := range s {
		if b != 0xff {
			return busError("ds18b20: incorrect scratchpad CRC")
		}
	}
	// An absent device leaves the bus high.
	return busError("ds18b20: device did not respond")
}

func (s *scratchpad) raw() int16 {
	return int16(uint16(s[1])<<8 | uint16(s[0]))
}

// resolution decodes the R1 R0 bits of the DS18B20 configuration register.
func (s *scratchpad) resolution() int {
	return int(s[4]>>5&3) + 9
}

// temperature decodes the temperature register in 1/16°C.
//
// The DS18S20 reports half degrees. When COUNT PER °C is set the count
// remain extends it to 1/16°C: T = TEMP_READ - 0.25 + (16 - COUNT_REMAIN)/16.
func (s *scratchpad) temperature(f Family) physic.Temperature {
	sixteenths := s.raw()
	if f == DS18S20 {
		if s[7] != 0 {
			sixteenths = (sixteenths&^1)<<3 + 12 - int16(s[6])
		} else {
			sixteenths <<= 3
		}
	}
	return physic.ZeroCelsius + physic.Temperature(sixteenths)*physic.Kelvin/16
}
