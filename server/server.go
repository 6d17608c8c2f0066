// Package server is the browser side of the board: it serves the page, relays
// clicks and button presses to the Board and pushes snapshots back over a
// websocket.
package server

import (
	_ "embed"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/sheikhrachel/gol-board/logger"
	"github.com/sheikhrachel/gol-board/metrics"
	"github.com/sheikhrachel/gol-board/model"
	"github.com/sheikhrachel/gol-board/scheduler"
)

//go:embed static/index.html
var indexHTML []byte

// Board is the part of the run loop the page drives
type Board interface {
	Toggle(x, y int) error
	Highlight(x, y int) error
	Unhighlight()
	Play()
	Pause()
	PlayPause()
	Step()
	Clear()
	IncreaseTickRate() bool
	DecreaseTickRate() bool
	Snapshot() scheduler.Snapshot
	Grid() *model.Grid
}

// Server wires HTTP routes to a Board and a Hub
type Server struct {
	board    Board
	hub      *Hub
	logger   *logger.Logger
	metrics  *metrics.Collector
	renderer model.TextRenderer
	upgrader websocket.Upgrader
	nextID   atomic.Int64
}

// New creates a Server. The hub must be running before clients connect.
func New(board Board, hub *Hub, log *logger.Logger, m *metrics.Collector) *Server {
	return &Server{
		board:   board,
		hub:     hub,
		logger:  log,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Routes returns the HTTP handler for every endpoint
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /ws", s.serveWs)
	mux.HandleFunc("GET /grid.txt", s.handleGridText)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.Handle("GET /metrics/prometheus", s.metrics.PrometheusHandler())
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func (s *Server) handleGridText(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := s.renderer.Display(w, s.board.Grid()); err != nil {
		s.logger.Errorf("failed to render grid: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

// serveWs upgrades the request and starts the client pumps.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorf("failed to upgrade websocket connection: %v", err)
		s.metrics.RecordWSError()
		return
	}

	client := newClient(fmt.Sprintf("client-%d", s.nextID.Add(1)), s.hub, s.board, conn)
	if !s.hub.join(client) {
		conn.Close()
		return
	}

	// Joined first so no change after this snapshot is missed. A broadcast may
	// still overtake it, the page drops whichever of the two is older.
	initial, err := encodeSnapshot(s.board.Snapshot())
	if err != nil {
		s.logger.Errorf("failed to serialize initial snapshot: %v", err)
		s.hub.leave(client)
		conn.Close()
		return
	}
	s.hub.deliver(client, initial)

	go client.writePump()
	go client.readPump()
}
