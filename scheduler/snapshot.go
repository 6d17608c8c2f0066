package scheduler

import "github.com/sheikhrachel/gol-board/utils"

// Cell addresses one grid position
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Snapshot is everything a renderer needs to draw the board and its controls
type Snapshot struct {
	Version    uint64      `json:"version"` // increases with every change
	Size       int         `json:"size"`
	Rows       []string    `json:"rows"`
	Highlight  *Cell       `json:"highlight,omitempty"`
	Generation int         `json:"generation"`
	Population int         `json:"population"`
	TickRate   float64     `json:"tick_rate"`
	TickMin    float64     `json:"tick_min"`
	TickMax    float64     `json:"tick_max"`
	Playing    bool        `json:"playing"`
	State      string      `json:"state"`
	Status     Status      `json:"status"`
	Stats      utils.Stats `json:"stats"`
}

// Snapshot returns the current board state
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Scheduler) snapshotLocked() Snapshot {
	snap := Snapshot{
		Version:    s.version,
		Size:       s.grid.GetSize(),
		Rows:       s.grid.Rows(),
		Generation: s.generation,
		Population: s.grid.Population(),
		TickRate:   s.rate,
		TickMin:    s.config.TickMin,
		TickMax:    s.config.TickMax,
		Playing:    s.state == Running,
		State:      s.state.String(),
		Status:     s.status,
		Stats:      *s.stats,
	}
	if x, y, ok := s.grid.HighlightedCell(); ok {
		snap.Highlight = &Cell{X: x, Y: y}
	}
	return snap
}

func (s *Scheduler) notifyLocked() {
	s.version++
	if len(s.observers) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, o := range s.observers {
		o(snap)
	}
}
