// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// sensorhub reads the environmental sensors of the board on a fixed
// interval and publishes the readings to MQTT, InfluxDB, Prometheus and a
// websocket.
//
// Every flag can also be set through the environment or a .env file in the
// working directory.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GermanBionicSystems/sensorhub/linduino"
	"github.com/GermanBionicSystems/sensorhub/publish"
	"github.com/GermanBionicSystems/sensorhub/sensorhub"
	"github.com/prometheus/client_golang/prometheus"
	"periph.io/x/host/v3"
)

// cycler is a source that also reports alarms.
type cycler interface {
	Cycle() sensorhub.Cycle
}

func run(ctx context.Context, logger *slog.Logger, interval time.Duration, sources []sensorhub.Source, sink publish.Sink) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		var all []sensorhub.Reading
		for _, s := range sources {
			if c, ok := s.(cycler); ok {
				cy := c.Cycle()
				for _, a := range cy.Alarms {
					logger.Warn("alarm", "topic", a.Topic, "value", a.Value)
				}
				all = append(all, cy.Readings...)
				continue
			}
			all = append(all, s.Readings()...)
		}
		if err := sink.Publish(ctx, all); err != nil {
			logger.Error("publish failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func mainImpl() error {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		return err
	}
	lvl := slog.LevelInfo
	if cfg.debug {
		lvl = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	if _, err := host.Init(); err != nil {
		return err
	}
	tr := &sensorhub.HostTransport{
		I2CName:       cfg.i2cBus,
		OneWireName:   cfg.oneWireBus,
		OneWireBridge: uint16(cfg.oneWireBridge),
	}
	opts := sensorhub.DefaultOpts
	opts.TopicPrefix = cfg.prefix
	opts.ProbeIndex = cfg.probeIndex
	opts.ProbeResolution = cfg.probeResolution
	opts.Logger = logger
	hub := sensorhub.New(tr, &opts)
	for _, d := range cfg.devices {
		if err := hub.Activate(d, true); err != nil {
			return err
		}
	}
	for _, a := range cfg.alarms {
		if err := hub.SetAlarm(a.q, a.lo, a.hi); err != nil {
			return err
		}
	}
	if err := hub.Begin(); err != nil {
		return err
	}
	defer func() {
		if err := hub.Halt(); err != nil {
			logger.Error("halt failed", "error", err)
		}
	}()
	for _, d := range sensorhub.Devices {
		logger.Info("sensor", "device", d.String(), "active", hub.Active(d))
	}

	sources := []sensorhub.Source{hub}
	if cfg.linduino != "" {
		chans, err := linduino.ParseChannels(cfg.linduino)
		if err != nil {
			return err
		}
		b, err := tr.I2C()
		if err != nil {
			return err
		}
		lopts := linduino.DefaultOpts
		lopts.TopicPrefix = cfg.prefix
		lopts.Logger = logger
		l, err := linduino.New(b, chans, &lopts)
		if err != nil {
			return err
		}
		sources = append(sources, l)
	}

	reg := prometheus.NewRegistry()
	metrics, err := publish.NewMetrics(reg)
	if err != nil {
		return err
	}
	sinks := publish.Multi{&publish.Log{W: os.Stdout}, metrics}
	if cfg.mqttBroker != "" {
		c, err := publish.Connect(cfg.mqttBroker, cfg.mqttClientID, 5*time.Second)
		if err != nil {
			return err
		}
		logger.Debug("mqtt connected", "broker", cfg.mqttBroker)
		sinks = append(sinks, publish.NewMQTT(c, &publish.MQTTOpts{
			QoS:      byte(cfg.mqttQoS),
			Retained: cfg.mqttRetained,
			Timeout:  5 * time.Second,
		}))
	}
	if cfg.influxURL != "" {
		sinks = append(sinks, publish.DialInflux(cfg.influxURL, cfg.influxToken, cfg.influxOrg, cfg.influxBucket))
	}
	if cfg.listen != "" {
		srv := publish.NewServer(reg, logger)
		sinks = append(sinks, srv)
		go func() {
			logger.Info("http server start", "listen", cfg.listen)
			if err := srv.ListenAndServe(cfg.listen); err != nil {
				logger.Error("http server failed", "error", err)
			}
		}()
	}
	defer func() {
		if err := sinks.Close(); err != nil {
			logger.Error("close failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	run(ctx, logger, cfg.interval, sources, sinks)
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "sensorhub: %s.\n", err)
		os.Exit(1)
	}
}
