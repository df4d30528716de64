// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains functions used across multiple packages. For
// example, a CRC8 calculation and the framing of CRC protected 16 bit words
// used by Sensirion sensors.
package common

import "errors"

// ErrCRC is returned when a received word does not match its CRC byte.
var ErrCRC = errors.New("crc mismatch")

// CRC8 calculates the 8-bit CRC of the byte slice parameter and returns the
// calculated value. CRC bytes are used in sensors from TI and Sensirion.
func CRC8(bytes []byte) byte {
	var crc byte = 0xff
	for _, val := range bytes {
		crc ^= val
		for i := 0; i < 8; i++ {
			if (crc & 0x80) == 0 {
				crc <<= 1
			} else {
				crc = (byte)((crc << 1) ^ 0x31)
			}
		}
	}
	return crc
}

// AppendWords appends each word big endian followed by its CRC to b.
func AppendWords(b []byte, words ...uint16) []byte {
	for _, w := range words {
		hi, lo := byte(w>>8), byte(w)
		b = append(b, hi, lo, CRC8([]byte{hi, lo}))
	}
	return b
}

// Words decodes a buffer made of 3 byte groups (2 data bytes, 1 CRC byte).
// Trailing bytes that do not form a full group are ignored.
func Words(b []byte) ([]uint16, error) {
	words := make([]uint16, len(b)/3)
	for i := range words {
		g := b[i*3 : i*3+3]
		if CRC8(g[:2]) != g[2] {
			return nil, ErrCRC
		}
		words[i] = uint16(g[0])<<8 | uint16(g[1])
	}
	return words, nil
}
