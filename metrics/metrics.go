// Package metrics counts generations and websocket traffic for the board server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Collector holds the live counters. Create it with NewCollector.
type Collector struct {
	generations atomic.Int64
	latencySum  atomic.Int64 // nanoseconds
	latencyMax  atomic.Int64
	lastTick    atomic.Int64 // unix nanoseconds, 0 before the first generation

	commands atomic.Int64
	rejected atomic.Int64

	wsActive   atomic.Int64
	wsIn       atomic.Int64
	wsOut      atomic.Int64
	wsFailures atomic.Int64

	StartTime time.Time
}

// NewCollector creates a collector starting its uptime clock now
func NewCollector() *Collector {
	return &Collector{StartTime: time.Now()}
}

// RecordGeneration records one computed generation
func (c *Collector) RecordGeneration(latency time.Duration) {
	c.generations.Add(1)
	c.latencySum.Add(int64(latency))
	for cur := c.latencyMax.Load(); int64(latency) > cur; cur = c.latencyMax.Load() {
		if c.latencyMax.CompareAndSwap(cur, int64(latency)) {
			break
		}
	}
	c.lastTick.Store(time.Now().UnixNano())
}

// RecordCommand records a client command, rejected ones are counted separately
func (c *Collector) RecordCommand(err error) {
	c.commands.Add(1)
	if err != nil {
		c.rejected.Add(1)
	}
}

// RecordWSConnection adds delta to the number of open websockets
func (c *Collector) RecordWSConnection(delta int64) {
	c.wsActive.Add(delta)
}

// RecordWSMessage counts one frame in either direction
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		c.wsIn.Add(1)
		return
	}
	c.wsOut.Add(1)
}

// RecordWSError counts a failed read, write or upgrade
func (c *Collector) RecordWSError() {
	c.wsFailures.Add(1)
}

// GenerationReport describes stepping cost
type GenerationReport struct {
	Count        int64      `json:"count"`
	AvgLatencyMs float64    `json:"avg_latency_ms"`
	MaxLatencyMs float64    `json:"max_latency_ms"`
	LastTick     *time.Time `json:"last_tick,omitempty"`
}

// InputReport describes client commands
type InputReport struct {
	Commands int64 `json:"commands"`
	Rejected int64 `json:"rejected"`
}

// WebSocketReport describes connection traffic
type WebSocketReport struct {
	Active      int64 `json:"active_connections"`
	MessagesIn  int64 `json:"messages_in"`
	MessagesOut int64 `json:"messages_out"`
	Errors      int64 `json:"errors"`
}

// Report is a point-in-time copy of every counter
type Report struct {
	UptimeSeconds float64          `json:"uptime_seconds"`
	Generations   GenerationReport `json:"generations"`
	Input         InputReport      `json:"input"`
	WebSocket     WebSocketReport  `json:"websocket"`
}

// Report reads all counters
func (c *Collector) Report() Report {
	r := Report{
		UptimeSeconds: time.Since(c.StartTime).Seconds(),
		Generations: GenerationReport{
			Count:        c.generations.Load(),
			MaxLatencyMs: millis(c.latencyMax.Load()),
		},
		Input: InputReport{
			Commands: c.commands.Load(),
			Rejected: c.rejected.Load(),
		},
		WebSocket: WebSocketReport{
			Active:      c.wsActive.Load(),
			MessagesIn:  c.wsIn.Load(),
			MessagesOut: c.wsOut.Load(),
			Errors:      c.wsFailures.Load(),
		},
	}
	if n := r.Generations.Count; n > 0 {
		r.Generations.AvgLatencyMs = millis(c.latencySum.Load()) / float64(n)
	}
	if ns := c.lastTick.Load(); ns != 0 {
		at := time.Unix(0, ns).UTC()
		r.Generations.LastTick = &at
	}
	return r
}

func millis(ns int64) float64 {
	return float64(ns) / float64(time.Millisecond)
}

// Handler serves the Report as JSON
func (c *Collector) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		json.NewEncoder(w).Encode(c.Report())
	}
}

// series is one line of the text exposition
type series struct {
	name, kind, help, labels string
	value                    float64
}

func (r Report) series() []series {
	ok := r.Input.Commands - r.Input.Rejected
	return []series{
		{"gol_generations_total", "counter", "Generations computed", "", float64(r.Generations.Count)},
		{"gol_generation_latency_max_ms", "gauge", "Slowest generation", "", r.Generations.MaxLatencyMs},
		{"gol_commands_total", "counter", "Client commands", `result="ok"`, float64(ok)},
		{"gol_commands_total", "counter", "Client commands", `result="rejected"`, float64(r.Input.Rejected)},
		{"gol_ws_connections", "gauge", "Open websockets", "", float64(r.WebSocket.Active)},
		{"gol_ws_messages_total", "counter", "Websocket frames", `direction="in"`, float64(r.WebSocket.MessagesIn)},
		{"gol_ws_messages_total", "counter", "Websocket frames", `direction="out"`, float64(r.WebSocket.MessagesOut)},
		{"gol_ws_errors_total", "counter", "Websocket failures", "", float64(r.WebSocket.Errors)},
	}
}

// PrometheusHandler serves the Report in Prometheus text format
func (c *Collector) PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

		var last string
		for _, s := range c.Report().series() {
			if s.name != last {
				fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", s.name, s.help, s.name, s.kind)
				last = s.name
			}
			name := s.name
			if s.labels != "" {
				name += "{" + s.labels + "}"
			}
			fmt.Fprintf(w, "%s %g\n", name, s.value)
		}
	}
}
