// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ccs811

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

const (
	// DefaultAddress is the address with ADDR pulled low. 0x5b is the
	// alternative.
	DefaultAddress uint16 = 0x5a

	// Unavailable is the value of CO2 and TVOC until an algorithm result has
	// been read.
	Unavailable = 65535
)

const (
	regStatus        byte = 0x00
	regMeasMode      byte = 0x01
	regAlgResultData byte = 0x02
	regEnvData       byte = 0x05
	regBaseline      byte = 0x11
	regHWID          byte = 0x20
	regErrorID       byte = 0xe0
	regAppStart      byte = 0xf4
	regSWReset       byte = 0xff

	hwID = 0x81

	statusError     byte = 1 << 0
	statusDataReady byte = 1 << 3
	statusAppValid  byte = 1 << 4
	statusFWMode    byte = 1 << 7
)

var resetSequence = []byte{regSWReset, 0x11, 0xe5, 0x72, 0x8a}

// DriveMode selects how often the sensor produces a new algorithm result.
type DriveMode byte

const (
	ModeIdle DriveMode = iota
	Mode1s
	Mode10s
	Mode60s
	Mode250ms
)

// Opts holds the configuration options for the device.
type Opts struct {
	Mode DriveMode
}

// DefaultOpts produces a new result every second.
var DefaultOpts = Opts{Mode: Mode1s}

// CO2 is an equivalent carbon dioxide concentration in ppm.
type CO2 uint16

func (c CO2) String() string {
	return strconv.Itoa(int(c)) + "ppm"
}

// TVOC is a total volatile organic compounds concentration in ppb.
type TVOC uint16

func (t TVOC) String() string {
	return strconv.Itoa(int(t)) + "ppb"
}

// Result is the content of the ALG_RESULT_DATA register.
type Result struct {
	CO2    CO2
	TVOC   TVOC
	Status byte
	Error  byte
	Raw    uint16
}

// NewI2C resets the sensor, checks its identity, starts the application
// firmware and sets the drive mode.
func NewI2C(b i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{
		d:      &i2c.Dev{Bus: b, Addr: addr},
		result: Result{CO2: Unavailable, TVOC: Unavailable},
	}
	if err := d.makeDev(opts); err != nil {
		return nil, err
	}
	return d, nil
}

// Dev is a handle to an initialized CCS811 device.
type Dev struct {
	d      conn.Conn
	mu     sync.Mutex
	result Result
}

func (d *Dev) makeDev(opts *Opts) error {
	if err := d.d.Tx(resetSequence, nil); err != nil {
		return fmt.Errorf("ccs811: reset: %w", err)
	}
	sleep(20 * time.Millisecond)

	var id [1]byte
	if err := d.d.Tx([]byte{regHWID}, id[:]); err != nil {
		return fmt.Errorf("ccs811: reading hardware id: %w", err)
	}
	if id[0] != hwID {
		return fmt.Errorf("ccs811: unexpected hardware id %#x, expected %#x", id[0], hwID)
	}

	status, err := d.status()
	if err != nil {
		return err
	}
	if status&statusAppValid == 0 {
		return errors.New("ccs811: no valid application firmware")
	}
	if err := d.d.Tx([]byte{regAppStart}, nil); err != nil {
		return fmt.Errorf("ccs811: app start: %w", err)
	}
	sleep(time.Millisecond)

	if status, err = d.status(); err != nil {
		return err
	}
	if status&statusFWMode == 0 {
		return errors.New("ccs811: application firmware did not start")
	}
	return d.SetDriveMode(opts.Mode)
}

// SetDriveMode changes the measurement period.
func (d *Dev) SetDriveMode(m DriveMode) error {
	if m > Mode250ms {
		return fmt.Errorf("ccs811: invalid drive mode %d", m)
	}
	if err := d.d.Tx([]byte{regMeasMode, byte(m) << 4}, nil); err != nil {
		return fmt.Errorf("ccs811: setting drive mode: %w", err)
	}
	return nil
}

// status reads the status register and turns the error flag into an error
// carrying the ERROR_ID register.
func (d *Dev) status() (byte, error) {
	var s [1]byte
	if err := d.d.Tx([]byte{regStatus}, s[:]); err != nil {
		return 0, fmt.Errorf("ccs811: reading status: %w", err)
	}
	if s[0]&statusError != 0 {
		var e [1]byte
		if err := d.d.Tx([]byte{regErrorID}, e[:]); err != nil {
			return 0, fmt.Errorf("ccs811: reading error id: %w", err)
		}
		return s[0], &DeviceError{ID: e[0]}
	}
	return s[0], nil
}

// DataAvailable reports whether a new algorithm result is ready.
func (d *Dev) DataAvailable() (bool, error) {
	s, err := d.status()
	if err != nil {
		return false, err
	}
	return s&statusDataReady != 0, nil
}

// ReadAlgorithmResults fetches the latest algorithm result from the sensor.
// The values are then available through CO2, TVOC and Result.
func (d *Dev) ReadAlgorithmResults() error {
	var b [8]byte
	if err := d.d.Tx([]byte{regAlgResultData}, b[:]); err != nil {
		return fmt.Errorf("ccs811: reading algorithm result: %w", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.result = Result{
		CO2:    CO2(uint16(b[0])<<8 | uint16(b[1])),
		TVOC:   TVOC(uint16(b[2])<<8 | uint16(b[3])),
		Status: b[4],
		Error:  b[5],
		Raw:    uint16(b[6])<<8 | uint16(b[7]),
	}
	return nil
}

// Result returns the last fetched algorithm result.
func (d *Dev) Result() Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.result
}

// CO2 returns the last fetched eCO2 value.
func (d *Dev) CO2() CO2 {
	return d.Result().CO2
}

// TVOC returns the last fetched TVOC value.
func (d *Dev) TVOC() TVOC {
	return d.Result().TVOC
}

// SetEnvironmentalData writes the ambient conditions used by the algorithm
// to compensate the next results.
//
// Both values use 1/512 units, temperature is offset by 25°C.
func (d *Dev) SetEnvironmentalData(h physic.RelativeHumidity, t physic.Temperature) error {
	rh := float64(h) / float64(physic.PercentRH)
	if rh < 0 {
		rh = 0
	} else if rh > 100 {
		rh = 100
	}
	tc := t.Celsius() + 25
	if tc < 0 {
		tc = 0
	} else if tc > 127 {
		tc = 127
	}
	hw := uint16(rh * 512)
	tw := uint16(tc * 512)
	w := []byte{regEnvData, byte(hw >> 8), byte(hw), byte(tw >> 8), byte(tw)}
	if err := d.d.Tx(w, nil); err != nil {
		return fmt.Errorf("ccs811: writing environment data: %w", err)
	}
	return nil
}

// Baseline returns the current baseline of the algorithm. It can be saved
// and restored with SetBaseline after a power cycle.
func (d *Dev) Baseline() (uint16, error) {
	var b [2]byte
	if err := d.d.Tx([]byte{regBaseline}, b[:]); err != nil {
		return 0, fmt.Errorf("ccs811: reading baseline: %w", err)
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// SetBaseline restores a baseline previously read with Baseline.
func (d *Dev) SetBaseline(v uint16) error {
	if err := d.d.Tx([]byte{regBaseline, byte(v >> 8), byte(v)}, nil); err != nil {
		return fmt.Errorf("ccs811: writing baseline: %w", err)
	}
	return nil
}

// Halt puts the sensor in idle mode. Implements conn.Resource.
func (d *Dev) Halt() error {
	return d.SetDriveMode(ModeIdle)
}

func (d *Dev) String() string {
	return fmt.Sprintf("ccs811{%s}", d.d)
}

// DeviceError is the content of the ERROR_ID register.
type DeviceError struct {
	ID byte
}

func (e *DeviceError) Error() string {
	var reasons []string
	for bit, r := range errorReasons {
		if e.ID&(1<<bit) != 0 {
			reasons = append(reasons, r)
		}
	}
	return fmt.Sprintf("ccs811: device error %#x %v", e.ID, reasons)
}

var errorReasons = [...]string{
	"write register invalid",
	"read register invalid",
	"measurement mode invalid",
	"max resistance",
	"heater fault",
	"heater supply",
}

var sleep = time.Sleep

var _ conn.Resource = &Dev{}
