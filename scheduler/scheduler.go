// Package scheduler drives the board: a two-state run loop that advances the
// grid one generation per tick, plus the input operations clients dispatch.
//
// Every grid access goes through the Scheduler's mutex, so clicks and ticks are
// applied one at a time in arrival order and a tick always steps a complete
// snapshot of the previous generation.
package scheduler

import (
	"math"
	"sync"
	"time"

	"github.com/sheikhrachel/gol-board/logger"
	"github.com/sheikhrachel/gol-board/metrics"
	"github.com/sheikhrachel/gol-board/model"
	"github.com/sheikhrachel/gol-board/utils"
)

// State of the run loop
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Status summarizes the population trend of the board
type Status string

const (
	StatusExtinct  Status = "extinct"
	StatusActive   Status = "active"
	StatusStagnant Status = "stagnant"
)

// Observer receives a snapshot after every change. It is called with the
// Scheduler locked, so it must not block or call back into the Scheduler.
type Observer func(Snapshot)

// Scheduler owns the current grid and the timer that steps it
type Scheduler struct {
	mu sync.Mutex

	grid       *model.Grid
	history    *model.History
	stats      *utils.Stats
	generation int
	status     Status
	lastStep   time.Time

	config  utils.Config
	rate    float64
	state   State
	session chan struct{} // closed by pause, identifies the live ticker goroutine

	observers []Observer
	version   uint64
	log       *logger.Logger
	metrics   *metrics.Collector
}

// Option customizes a Scheduler
type Option func(*Scheduler)

// WithLogger sets the logger, the default discards output
func WithLogger(l *logger.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// WithMetrics sets the metrics collector
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Scheduler) { s.metrics = c }
}

// New creates a stopped scheduler for grid using the tick settings of config
func New(grid *model.Grid, config utils.Config, opts ...Option) *Scheduler {
	s := &Scheduler{
		grid:    grid,
		history: model.NewHistory(config.HistorySize),
		stats:   utils.NewStats(),
		config:  config,
		rate:    clamp(round2(config.TickRate), config.TickMin, config.TickMax),
		state:   Stopped,
		log:     logger.Discard(),
		metrics: metrics.NewCollector(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.status = s.inputStatusLocked()
	return s
}

// Subscribe registers an observer for every subsequent change
func (s *Scheduler) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// State returns the current run state
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// TickRate returns the seconds between generations
func (s *Scheduler) TickRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}

// Generation returns the number of generations computed since the last clear
func (s *Scheduler) Generation() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Grid returns a copy of the current grid
func (s *Scheduler) Grid() *model.Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Clone()
}

// Play starts the ticker. Calling it while running does nothing.
func (s *Scheduler) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playLocked() {
		s.notifyLocked()
	}
}

// Pause stops the ticker. Calling it while stopped does nothing.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pauseLocked() {
		s.notifyLocked()
	}
}

// PlayPause toggles between Running and Stopped
func (s *Scheduler) PlayPause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Running {
		s.pauseLocked()
	} else {
		s.playLocked()
	}
	s.notifyLocked()
}

func (s *Scheduler) playLocked() bool {
	if s.state == Running {
		return false
	}
	s.state = Running
	s.session = make(chan struct{})
	interval := utils.Interval(s.rate)
	go s.run(s.session, interval)
	s.log.Debugf("run loop started, interval %v", interval)
	return true
}

func (s *Scheduler) pauseLocked() bool {
	if s.state == Stopped {
		return false
	}
	s.state = Stopped
	close(s.session)
	s.session = nil
	s.log.Debugf("run loop paused at generation %d", s.generation)
	return true
}

// run is the ticker goroutine of one Running session
func (s *Scheduler) run(session chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-session:
			return
		case <-ticker.C:
			s.mu.Lock()
			// a pause may have won the lock while this tick was waiting
			if s.session != session {
				s.mu.Unlock()
				return
			}
			s.stepLocked()
			s.notifyLocked()
			s.mu.Unlock()
		}
	}
}

// Step advances one generation immediately without changing the run state
func (s *Scheduler) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stepLocked()
	s.notifyLocked()
}

func (s *Scheduler) stepLocked() {
	start := time.Now()

	s.history.Record(s.grid.Hash())
	s.grid = s.grid.Step()
	s.generation++

	population := s.grid.Population()
	switch {
	case population == 0:
		s.status = StatusExtinct
	case s.history.Repeats(s.grid.Hash()):
		s.status = StatusStagnant
	default:
		s.status = StatusActive
	}

	if !s.lastStep.IsZero() {
		s.stats.Update(s.generation, population, start.Sub(s.lastStep))
	} else {
		s.stats.Update(s.generation, population, 0)
	}
	s.lastStep = start
	s.metrics.RecordGeneration(time.Since(start))
}

// ChangeTickRate pauses, then moves the rate by delta, clamped to
// [TickMin, TickMax] and rounded to 2 decimal places. It returns the new rate.
func (s *Scheduler) ChangeTickRate(delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changeTickRateLocked(delta)
	s.notifyLocked()
	return s.rate
}

func (s *Scheduler) changeTickRateLocked(delta float64) {
	s.pauseLocked()
	s.rate = clamp(round2(s.rate+delta), s.config.TickMin, s.config.TickMax)
	s.log.Debugf("tick rate set to %.2fs", s.rate)
}

// IncreaseTickRate slows the board down by one TickDelta. It reports false and
// leaves everything untouched when that would pass TickMax.
func (s *Scheduler) IncreaseTickRate() bool {
	return s.nudgeTickRate(s.config.TickDelta)
}

// DecreaseTickRate speeds the board up by one TickDelta. It reports false and
// leaves everything untouched when that would pass TickMin.
func (s *Scheduler) DecreaseTickRate() bool {
	return s.nudgeTickRate(-s.config.TickDelta)
}

func (s *Scheduler) nudgeTickRate(delta float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := round2(s.rate + delta)
	if next > s.config.TickMax || next < s.config.TickMin {
		return false
	}
	s.changeTickRateLocked(delta)
	s.notifyLocked()
	return true
}

// Toggle flips the cell at (x, y)
func (s *Scheduler) Toggle(x, y int) error {
	return s.mutate(func(g *model.Grid) error {
		return g.Toggle(x, y)
	}, true)
}

// Highlight marks (x, y) as hovered
func (s *Scheduler) Highlight(x, y int) error {
	return s.mutate(func(g *model.Grid) error {
		return g.Highlight(x, y)
	}, false)
}

// Unhighlight clears the hovered cell
func (s *Scheduler) Unhighlight() {
	_ = s.mutate(func(g *model.Grid) error {
		g.Unhighlight()
		return nil
	}, false)
}

// Clear pauses the run loop and kills every cell
func (s *Scheduler) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pauseLocked()
	s.grid.Clear()
	s.generation = 0
	s.lastStep = time.Time{}
	s.history.Reset()
	s.stats.Reset()
	s.status = s.inputStatusLocked()
	s.notifyLocked()
}

// mutate applies fn to the live grid. Cell edits invalidate the cycle history.
func (s *Scheduler) mutate(fn func(*model.Grid) error, cells bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.grid); err != nil {
		return err
	}
	if cells {
		s.history.Reset()
		s.status = s.inputStatusLocked()
	}
	s.notifyLocked()
	return nil
}

func (s *Scheduler) inputStatusLocked() Status {
	if s.grid.Population() == 0 {
		return StatusExtinct
	}
	return StatusActive
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
