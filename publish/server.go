// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package publish

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/GermanBionicSystems/sensorhub/sensorhub"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Snapshot is the body of GET /readings and of each websocket message.
type Snapshot struct {
	Updated  time.Time           `json:"updated"`
	Readings []sensorhub.Reading `json:"readings"`
}

// Server serves the latest readings:
//
//	GET /readings  latest Snapshot as JSON
//	GET /metrics   Prometheus metrics
//	GET /ws        websocket streaming one Snapshot per cycle
type Server struct {
	engine   *gin.Engine
	upgrader websocket.Upgrader
	log      *slog.Logger
	now      func() time.Time
	// writeWait bounds each websocket write so a stalled client cannot hold
	// up Publish.
	writeWait time.Duration

	mu      sync.Mutex
	last    Snapshot
	clients map[*websocket.Conn]struct{}
	http    *http.Server
	closed  bool
}

// NewServer returns a server exposing the metrics of g. A nil logger uses
// slog.Default().
func NewServer(g prometheus.Gatherer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		engine: gin.New(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log:       log,
		now:       time.Now,
		writeWait: 5 * time.Second,
		last:      Snapshot{Readings: []sensorhub.Reading{}},
		clients:   map[*websocket.Conn]struct{}{},
	}
	s.engine.Use(gin.Recovery(), s.logRequest)
	s.engine.GET("/readings", s.getReadings)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))
	s.engine.GET("/ws", s.stream)
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until Close is called. It returns nil
// immediately if Close was already called.
func (s *Server) ListenAndServe(addr string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.http = &http.Server{Addr: addr, Handler: s.engine}
	srv := s.http
	s.mu.Unlock()
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequest(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.Debug("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "duration", time.Since(start))
}

func (s *Server) getReadings(c *gin.Context) {
	s.mu.Lock()
	snap := s.last
	s.mu.Unlock()
	c.JSON(http.StatusOK, snap)
}

func (s *Server) stream(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	s.mu.Lock()
	s.clients[conn] = struct{}{}
	err = s.send(conn, s.last)
	n := len(s.clients)
	s.mu.Unlock()
	s.log.Debug("websocket client connected", "remote", c.Request.RemoteAddr, "clients", n)
	if err == nil {
		// Drain until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}
	s.drop(conn)
}

// send must be called with mu held, gorilla connections support a single
// concurrent writer.
func (s *Server) send(conn *websocket.Conn, v any) error {
	if err := conn.SetWriteDeadline(time.Now().Add(s.writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}

func (s *Server) drop(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[conn]; ok {
		delete(s.clients, conn)
		_ = conn.Close()
	}
}

// Publish records the readings as the latest snapshot and sends it to every
// websocket client. Clients that cannot be written to are disconnected.
func (s *Server) Publish(_ context.Context, readings []sensorhub.Reading) error {
	snap := Snapshot{Updated: s.now(), Readings: append([]sensorhub.Reading{}, readings...)}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = snap
	for conn := range s.clients {
		if err := s.send(conn, snap); err != nil {
			s.log.Debug("websocket write failed", "remote", conn.RemoteAddr().String(), "error", err)
			delete(s.clients, conn)
			_ = conn.Close()
		}
	}
	return nil
}

// Close disconnects the websocket clients and stops ListenAndServe, including
// a ListenAndServe call that has not started yet.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	for conn := range s.clients {
		_ = conn.Close()
		delete(s.clients, conn)
	}
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

var _ Sink = &Server{}
