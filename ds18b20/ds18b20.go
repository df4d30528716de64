// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ds18b20

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/onewire"
	"periph.io/x/conn/v3/physic"
)

// Family is the 1-wire family code, the low byte of the device address.
type Family byte

const (
	DS18S20 Family = 0x10
	DS18B20 Family = 0x28
)

// FamilyOf returns the family code of a 1-wire address.
func FamilyOf(a onewire.Address) Family {
	return Family(a & 0xff)
}

func (f Family) String() string {
	switch f {
	case DS18S20:
		return "DS18S20"
	case DS18B20:
		return "DS18B20"
	default:
		return "unknown"
	}
}

// Supported reports whether f is a temperature sensor handled by this
// package.
func (f Family) Supported() bool {
	return f == DS18S20 || f == DS18B20
}

// Function commands, datasheet p.11.
const (
	cmdSkipROM         = 0xcc
	cmdConvert         = 0x44
	cmdWriteScratchpad = 0x4e
	cmdReadScratchpad  = 0xbe
	cmdCopyScratchpad  = 0x48
	cmdReadPowerSupply = 0xb4
)

// ConversionTime is the duration of a conversion at the given resolution:
// 94ms at 9 bits, doubling with each bit up to 752ms at 12 bits.
func ConversionTime(resolutionBits int) time.Duration {
	return (94 << uint(resolutionBits-9)) * time.Millisecond
}

func checkResolution(bits int) error {
	if bits < 9 || bits > 12 {
		return fmt.Errorf("ds18b20: invalid resolution %d bits, want 9 to 12", bits)
	}
	return nil
}

// ConvertAll starts a conversion on every sensor of the bus and waits for
// the slowest one to complete.
//
// The bus is held in strong pull-up during the conversion to power
// parasitic devices.
func ConvertAll(o onewire.Bus, maxResolutionBits int) error {
	if err := checkResolution(maxResolutionBits); err != nil {
		return err
	}
	if err := StartAll(o); err != nil {
		return err
	}
	sleep(ConversionTime(maxResolutionBits))
	return nil
}

// StartAll starts a conversion on every sensor of the bus and returns
// immediately. Results are read with LastTemp once ConversionTime elapsed.
func StartAll(o onewire.Bus) error {
	return o.Tx([]byte{cmdSkipROM, cmdConvert}, nil, onewire.StrongPullup)
}

// ParasitePowered reports whether at least one sensor on the bus draws its
// power from the data line.
func ParasitePowered(o onewire.Bus) (bool, error) {
	var r [1]byte
	if err := o.Tx([]byte{cmdSkipROM, cmdReadPowerSupply}, r[:], onewire.WeakPullup); err != nil {
		return false, err
	}
	// Parasite powered devices pull the read slot low.
	return r[0]&1 == 0, nil
}

// New opens the sensor at addr and sets its resolution.
//
// resolutionBits is 9 to 12, trading precision for conversion time: 0.5°C
// in 94ms up to 0.0625°C in 752ms. 10 bits gives 0.25°C, already better than
// the ±0.5°C accuracy of the part. A DS18S20 has a fixed resolution and
// always takes 752ms.
func New(o onewire.Bus, addr onewire.Address, resolutionBits int) (*Dev, error) {
	if err := checkResolution(resolutionBits); err != nil {
		return nil, err
	}
	d := &Dev{dev: onewire.Dev{Bus: o, Addr: addr}, family: FamilyOf(addr), bits: resolutionBits}
	sp, err := d.readScratchpad()
	if err != nil {
		return nil, err
	}
	if d.family == DS18S20 {
		d.bits = 12
		return d, nil
	}
	if sp.resolution() != resolutionBits {
		if err := d.configure(sp, resolutionBits); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Dev is a handle to a DS18B20 or DS18S20 temperature sensor on a 1-wire
// bus.
type Dev struct {
	dev    onewire.Dev
	family Family
	bits   int

	mu   sync.Mutex
	stop chan struct{}
}

func (d *Dev) Family() Family {
	return d.family
}

// Addr returns the 64-bit 1-wire address of the sensor.
func (d *Dev) Addr() onewire.Address {
	return d.dev.Addr
}

// Resolution returns the resolution in bits.
func (d *Dev) Resolution() int {
	return d.bits
}

func (d *Dev) String() string {
	return d.family.String() + "{" + d.dev.String() + "}"
}

// Halt stops a running SenseContinuous.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		close(d.stop)
		d.stop = nil
	}
	return nil
}

// Sense converts and reads the temperature of this sensor only.
func (d *Dev) Sense(e *physic.Env) error {
	if err := d.dev.TxPower([]byte{cmdConvert}, nil); err != nil {
		return err
	}
	sleep(ConversionTime(d.bits))
	t, err := d.LastTemp()
	if err != nil {
		return err
	}
	e.Temperature = t
	return nil
}

// SenseContinuous converts every interval until Halt is called. Failed
// conversions are skipped.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	if interval < ConversionTime(d.bits) {
		return nil, fmt.Errorf("ds18b20: interval %s shorter than a %d bits conversion", interval, d.bits)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return nil, errors.New("ds18b20: SenseContinuous already running")
	}
	stop := make(chan struct{})
	d.stop = stop
	ch := make(chan physic.Env, 1)
	go func() {
		defer close(ch)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				var e physic.Env
				if err := d.Sense(&e); err != nil {
					continue
				}
				select {
				case ch <- e:
				case <-stop:
					return
				}
			}
		}
	}()
	return ch, nil
}

// Precision returns the temperature step at the configured resolution.
func (d *Dev) Precision(e *physic.Env) {
	e.Temperature = physic.Kelvin / physic.Temperature(int64(1)<<uint(d.bits-8))
}

// LastTemp returns the result of the last conversion, see ConvertAll.
func (d *Dev) LastTemp() (physic.Temperature, error) {
	sp, err := d.readScratchpad()
	if err != nil {
		return 0, err
	}
	t := sp.temperature(d.family)
	// 85°C is the power-on value of the register: either no conversion ran or
	// it browned out. A real 85°C reading is lost.
	if t == physic.ZeroCelsius+85*physic.Celsius {
		return 0, busError("ds18b20: no conversion result, check the pull-up")
	}
	return t, nil
}

// configure writes the resolution while keeping the alarm registers, then
// persists it to EEPROM.
func (d *Dev) configure(sp scratchpad, bits int) error {
	w := []byte{cmdWriteScratchpad, sp[2], sp[3], byte(bits-9)<<5 | 0x1f}
	if err := d.dev.Tx(w, nil); err != nil {
		return fmt.Errorf("ds18b20: write configuration: %w", err)
	}
	if err := d.dev.TxPower([]byte{cmdCopyScratchpad}, nil); err != nil {
		return fmt.Errorf("ds18b20: copy scratchpad: %w", err)
	}
	// EEPROM write, datasheet p.26.
	sleep(10 * time.Millisecond)
	return nil
}

func (d *Dev) readScratchpad() (scratchpad, error) {
	var sp scratchpad
	if err := d.dev.Tx([]byte{cmdReadScratchpad}, sp[:]); err != nil {
		return sp, err
	}
	return sp, sp.check()
}

// busError is an onewire.BusError.
type busError string

func (e busError) Error() string  { return string(e) }
func (e busError) BusError() bool { return true }

var sleep = time.Sleep

var (
	_ conn.Resource   = &Dev{}
	_ physic.SenseEnv = &Dev{}
)
