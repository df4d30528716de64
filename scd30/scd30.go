// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package scd30

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/GermanBionicSystems/sensorhub/common"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

const (
	// The device only supports this i2c address.
	SensorAddress uint16 = 0x61
)

type cmd uint16

// Get and set variants of a setting share the command word: a set sends an
// argument, a get reads the response after the command.
const (
	cmdStartContinuous     cmd = 0x0010
	cmdStopContinuous      cmd = 0x0104
	cmdMeasurementInterval cmd = 0x4600
	cmdDataReady           cmd = 0x0202
	cmdReadMeasurement     cmd = 0x0300
	cmdASC                 cmd = 0x5306
	cmdForcedRecalibration cmd = 0x5204
	cmdTemperatureOffset   cmd = 0x5403
	cmdAltitude            cmd = 0x5102
	cmdFirmwareVersion     cmd = 0xd100
	cmdSoftReset           cmd = 0xd304
)

// Minimum delay between a command and the read of its response.
const readDelay = 3 * time.Millisecond

// PPM is a CO2 concentration in parts per million.
type PPM float64

func (p PPM) String() string {
	return strconv.FormatFloat(float64(p), 'f', 2, 64) + " PPM"
}

// Env is one sample of the sensor. All three values come from the same
// measurement.
type Env struct {
	physic.Env
	CO2 PPM
}

func (e *Env) String() string {
	return fmt.Sprintf("Temperature: %s Humidity: %s CO2: %s", e.Temperature, e.Humidity, e.CO2)
}

// Opts holds the configuration applied when the device is opened.
type Opts struct {
	// Interval between measurements, 2s..1800s.
	Interval time.Duration
	// AmbientPressure compensates the CO2 reading. 0 disables compensation.
	AmbientPressure physic.Pressure
}

// DefaultOpts measures every 2 seconds without pressure compensation.
var DefaultOpts = Opts{Interval: 2 * time.Second}

// Dev represents an SCD30 device.
type Dev struct {
	d  *i2c.Dev
	mu sync.Mutex
}

// NewI2C opens the sensor, checks that it answers with its firmware version
// and starts continuous measurement.
func NewI2C(b i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{d: &i2c.Dev{Bus: b, Addr: addr}}
	if _, _, err := d.FirmwareVersion(); err != nil {
		return nil, err
	}
	if err := d.SetMeasurementInterval(opts.Interval); err != nil {
		return nil, err
	}
	if err := d.StartContinuous(opts.AmbientPressure); err != nil {
		return nil, err
	}
	return d, nil
}

// write sends a command with its optional arguments.
func (d *Dev) write(c cmd, args ...uint16) error {
	w := common.AppendWords([]byte{byte(c >> 8), byte(c)}, args...)
	if err := d.d.Tx(w, nil); err != nil {
		return fmt.Errorf("scd30 cmd 0x%04x: %w", uint16(c), err)
	}
	return nil
}

// read sends a command and reads n words of response.
func (d *Dev) read(c cmd, n int) ([]uint16, error) {
	if err := d.write(c); err != nil {
		return nil, err
	}
	sleep(readDelay)
	r := make([]byte, n*3)
	if err := d.d.Tx(nil, r); err != nil {
		return nil, fmt.Errorf("scd30 cmd 0x%04x: %w", uint16(c), err)
	}
	words, err := common.Words(r)
	if err != nil {
		return nil, fmt.Errorf("scd30 cmd 0x%04x: %w", uint16(c), err)
	}
	return words, nil
}

// FirmwareVersion returns the major and minor firmware version.
func (d *Dev) FirmwareVersion() (major, minor byte, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	words, err := d.read(cmdFirmwareVersion, 1)
	if err != nil {
		return 0, 0, err
	}
	return byte(words[0] >> 8), byte(words[0]), nil
}

// StartContinuous starts continuous measurement. The setting survives a
// power cycle.
func (d *Dev) StartContinuous(pressure physic.Pressure) error {
	mbar := int64(0)
	if pressure != 0 {
		mbar = int64(pressure / (100 * physic.Pascal))
		if mbar < 700 || mbar > 1400 {
			return fmt.Errorf("scd30: ambient pressure %s out of range 700..1400 mbar", pressure)
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.write(cmdStartContinuous, uint16(mbar))
}

// Halt stops continuous measurement. Implements conn.Resource.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.write(cmdStopContinuous)
}

// MeasurementInterval returns the configured interval between samples.
func (d *Dev) MeasurementInterval() (time.Duration, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	words, err := d.read(cmdMeasurementInterval, 1)
	if err != nil {
		return 0, err
	}
	return time.Duration(words[0]) * time.Second, nil
}

// SetMeasurementInterval sets the interval between samples.
func (d *Dev) SetMeasurementInterval(interval time.Duration) error {
	if interval < 2*time.Second || interval > 1800*time.Second {
		return fmt.Errorf("scd30: invalid measurement interval %s", interval)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.write(cmdMeasurementInterval, uint16(interval/time.Second))
}

// DataAvailable reports whether a new sample can be read.
func (d *Dev) DataAvailable() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	words, err := d.read(cmdDataReady, 1)
	if err != nil {
		return false, err
	}
	return words[0] == 1, nil
}

// Sense reads the last sample. Call DataAvailable first: reading before a
// new sample is ready returns the previous one.
func (d *Dev) Sense(env *Env) error {
	env.Temperature = 0
	env.Humidity = 0
	env.Pressure = 0
	env.CO2 = 0

	d.mu.Lock()
	defer d.mu.Unlock()
	words, err := d.read(cmdReadMeasurement, 6)
	if err != nil {
		return err
	}
	co2 := wordsToFloat(words[0], words[1])
	temp := wordsToFloat(words[2], words[3])
	rh := wordsToFloat(words[4], words[5])
	if math.IsNaN(co2) || math.IsNaN(temp) || math.IsNaN(rh) {
		return errors.New("scd30: invalid measurement")
	}
	env.CO2 = PPM(co2)
	env.Temperature = physic.ZeroCelsius + physic.Temperature(temp*float64(physic.Celsius))
	env.Humidity = physic.RelativeHumidity(rh * float64(physic.PercentRH))
	return nil
}

// ASC reports whether automatic self calibration is enabled.
func (d *Dev) ASC() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	words, err := d.read(cmdASC, 1)
	if err != nil {
		return false, err
	}
	return words[0] == 1, nil
}

// SetASC enables or disables automatic self calibration.
func (d *Dev) SetASC(enabled bool) error {
	v := uint16(0)
	if enabled {
		v = 1
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.write(cmdASC, v)
}

// SetForcedRecalibration sets the CO2 reference the sensor is currently
// exposed to, 400..2000 ppm.
func (d *Dev) SetForcedRecalibration(ref PPM) error {
	if ref < 400 || ref > 2000 {
		return fmt.Errorf("scd30: invalid recalibration reference %s", ref)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.write(cmdForcedRecalibration, uint16(ref))
}

// TemperatureOffset returns the offset subtracted from the temperature
// reading to compensate self heating.
func (d *Dev) TemperatureOffset() (physic.Temperature, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	words, err := d.read(cmdTemperatureOffset, 1)
	if err != nil {
		return 0, err
	}
	return physic.Temperature(words[0]) * 10 * physic.MilliKelvin, nil
}

// SetTemperatureOffset sets the self heating offset, in 0.01K steps.
func (d *Dev) SetTemperatureOffset(offset physic.Temperature) error {
	if offset < 0 || offset > 0xffff*10*physic.MilliKelvin {
		return fmt.Errorf("scd30: invalid temperature offset %s", offset)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.write(cmdTemperatureOffset, uint16(offset/(10*physic.MilliKelvin)))
}

// Altitude returns the altitude used for compensation when no ambient
// pressure is set.
func (d *Dev) Altitude() (physic.Distance, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	words, err := d.read(cmdAltitude, 1)
	if err != nil {
		return 0, err
	}
	return physic.Distance(words[0]) * physic.Metre, nil
}

// SetAltitude sets the altitude of the sensor above sea level.
func (d *Dev) SetAltitude(alt physic.Distance) error {
	if alt < 0 || alt > 0xffff*physic.Metre {
		return fmt.Errorf("scd30: invalid altitude %s", alt)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.write(cmdAltitude, uint16(alt/physic.Metre))
}

// Reset performs a soft reset. Continuous measurement resumes with the saved
// settings.
func (d *Dev) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.write(cmdSoftReset)
	sleep(2 * time.Second)
	return err
}

// Precision returns the resolution of the readings.
func (d *Dev) Precision(env *Env) {
	env.Temperature = physic.Kelvin / 100
	env.Humidity = physic.PercentRH / 100
	env.Pressure = 0
	env.CO2 = 1
}

func (d *Dev) String() string {
	return fmt.Sprintf("scd30: %s", d.d.String())
}

func wordsToFloat(hi, lo uint16) float64 {
	return float64(math.Float32frombits(uint32(hi)<<16 | uint32(lo)))
}

var sleep = time.Sleep
