// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/GermanBionicSystems/sensorhub/sensorhub"
	"github.com/joho/godotenv"
)

type alarm struct {
	q      sensorhub.Quantity
	lo, hi float64
}

type config struct {
	i2cBus          string
	oneWireBus      string
	oneWireBridge   uint
	devices         []sensorhub.Device
	prefix          string
	probeIndex      int
	probeResolution int
	linduino        string
	alarms          []alarm
	interval        time.Duration

	mqttBroker   string
	mqttClientID string
	mqttQoS      uint
	mqttRetained bool

	influxURL    string
	influxToken  string
	influxOrg    string
	influxBucket string

	listen string
	debug  bool
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

// getEnvUint accepts decimal, 0x hexadecimal and 0o octal values.
func getEnvUint(key string, def uint) uint {
	if v, err := strconv.ParseUint(os.Getenv(key), 0, 16); err == nil {
		return uint(v)
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

// loadConfig reads the .env file if present, then the environment, then
// the command line.
func loadConfig(args []string, envFiles ...string) (*config, error) {
	// A missing .env file is fine.
	_ = godotenv.Load(envFiles...)

	c := &config{}
	var devices, alarms string
	fs := flag.NewFlagSet("sensorhub", flag.ContinueOnError)
	fs.StringVar(&c.i2cBus, "i2c", getEnv("SENSORHUB_I2C", ""), "I²C bus to use")
	fs.StringVar(&c.oneWireBus, "onewire", getEnv("SENSORHUB_ONEWIRE", ""), "1-wire bus to use")
	fs.UintVar(&c.oneWireBridge, "onewire-bridge", getEnvUint("SENSORHUB_ONEWIRE_BRIDGE", 0), "I²C address of a DS248x 1-wire master, 0 for a native bus")
	fs.StringVar(&devices, "devices", getEnv("SENSORHUB_DEVICES", "DS,BME,CCS,SCD30"), "comma separated devices to activate")
	fs.StringVar(&c.prefix, "prefix", getEnv("SENSORHUB_PREFIX", sensorhub.DefaultOpts.TopicPrefix), "topic prefix")
	fs.IntVar(&c.probeIndex, "probe", getEnvInt("SENSORHUB_PROBE_INDEX", 0), "index of the 1-wire probe to report")
	fs.IntVar(&c.probeResolution, "probe-bits", getEnvInt("SENSORHUB_PROBE_BITS", sensorhub.DefaultOpts.ProbeResolution), "1-wire probe resolution, 9 to 12")
	fs.StringVar(&c.linduino, "linduino", getEnv("SENSORHUB_LINDUINO", ""), "Linduino RTD channels as name:index,...; empty disables")
	fs.StringVar(&alarms, "alarms", getEnv("SENSORHUB_ALARMS", ""), "alarm bands as quantity:min:max,...")
	fs.DurationVar(&c.interval, "interval", getEnvDuration("SENSORHUB_INTERVAL", 2*time.Second), "read cycle interval")
	fs.StringVar(&c.mqttBroker, "mqtt", getEnv("MQTT_BROKER", ""), "MQTT broker url, tcp://<host>:<port>; empty disables")
	fs.StringVar(&c.mqttClientID, "mqtt-id", getEnv("MQTT_CLIENT_ID", "sensorhub"), "MQTT client id")
	fs.UintVar(&c.mqttQoS, "mqtt-qos", getEnvUint("MQTT_QOS", 0), "MQTT QoS, 0 to 2")
	fs.BoolVar(&c.mqttRetained, "mqtt-retained", getEnvBool("MQTT_RETAINED", false), "publish retained messages")
	fs.StringVar(&c.influxURL, "influx", getEnv("INFLUX_URL", ""), "InfluxDB url; empty disables")
	fs.StringVar(&c.influxToken, "influx-token", getEnv("INFLUX_TOKEN", ""), "InfluxDB token")
	fs.StringVar(&c.influxOrg, "influx-org", getEnv("INFLUX_ORG", ""), "InfluxDB organization")
	fs.StringVar(&c.influxBucket, "influx-bucket", getEnv("INFLUX_BUCKET", ""), "InfluxDB bucket")
	fs.StringVar(&c.listen, "l", getEnv("SENSORHUB_LISTEN", ":8080"), "HTTP address to listen on; empty disables")
	fs.BoolVar(&c.debug, "d", getEnvBool("SENSORHUB_DEBUG", false), "debug logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	var err error
	if c.devices, err = parseDevices(devices); err != nil {
		return nil, err
	}
	if c.alarms, err = parseAlarms(alarms); err != nil {
		return nil, err
	}
	if c.interval <= 0 {
		return nil, fmt.Errorf("invalid interval %s", c.interval)
	}
	if c.mqttQoS > 2 {
		return nil, fmt.Errorf("invalid MQTT QoS %d", c.mqttQoS)
	}
	if c.oneWireBridge > 0x7f {
		return nil, fmt.Errorf("invalid 1-wire bridge address %#x", c.oneWireBridge)
	}
	return c, nil
}

func parseDevices(s string) ([]sensorhub.Device, error) {
	var out []sensorhub.Device
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		found := false
		for _, d := range sensorhub.Devices {
			if strings.EqualFold(f, d.String()) {
				out = append(out, d)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown device %q", f)
		}
	}
	return out, nil
}

func parseAlarms(s string) ([]alarm, error) {
	var out []alarm
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		parts := strings.Split(f, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid alarm %q, want quantity:min:max", f)
		}
		lo, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid alarm %q: %w", f, err)
		}
		hi, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid alarm %q: %w", f, err)
		}
		out = append(out, alarm{q: sensorhub.Quantity(parts[0]), lo: lo, hi: hi})
	}
	return out, nil
}
