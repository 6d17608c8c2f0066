package utils

import (
	"encoding/json"
	"math"
	"os"
	"time"

	"github.com/pkg/errors"
)

// Config holds the configuration for the board and its server
type Config struct {
	Size        int     `json:"size"`
	TickRate    float64 `json:"tick_rate"`  // seconds per generation
	TickDelta   float64 `json:"tick_delta"` // step used by the +/- buttons
	TickMin     float64 `json:"tick_min"`
	TickMax     float64 `json:"tick_max"`
	Addr        string  `json:"addr"`
	HistorySize int     `json:"history_size"`
	Debug       bool    `json:"debug"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Size:        50,
		TickRate:    0.25,
		TickDelta:   0.01,
		TickMin:     0.01,
		TickMax:     2,
		Addr:        ":8080",
		HistorySize: 5,
		Debug:       false,
	}
}

// LoadConfig loads configuration from JSON file
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to read file: %+v", filename)
	}

	if err = json.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to unmarshal data from file: %+v", filename)
	}

	if err = config.Validate(); err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] invalid config in file: %+v", filename)
	}

	return config, nil
}

// Validate checks the ranges the board and run loop rely on
func (c Config) Validate() error {
	switch {
	case c.Size <= 0:
		return errors.Errorf("size must be positive, got %d", c.Size)
	case c.TickMin <= 0:
		return errors.Errorf("tick_min must be positive, got %v", c.TickMin)
	case c.TickMax < c.TickMin:
		return errors.Errorf("tick_max %v is below tick_min %v", c.TickMax, c.TickMin)
	case c.TickRate < c.TickMin || c.TickRate > c.TickMax:
		return errors.Errorf("tick_rate %v outside [%v, %v]", c.TickRate, c.TickMin, c.TickMax)
	case c.TickDelta <= 0:
		return errors.Errorf("tick_delta must be positive, got %v", c.TickDelta)
	case c.Addr == "":
		return errors.New("addr must not be empty")
	}

	// rates live on a 0.01s lattice, so every bound and step must sit on it
	for name, v := range map[string]float64{
		"tick_rate":  c.TickRate,
		"tick_delta": c.TickDelta,
		"tick_min":   c.TickMin,
		"tick_max":   c.TickMax,
	} {
		if !OnTickLattice(v) {
			return errors.Errorf("%s %v has more than 2 decimal places", name, v)
		}
	}
	return nil
}

// OnTickLattice reports whether seconds has at most 2 decimal places
func OnTickLattice(seconds float64) bool {
	scaled := seconds * 100
	return math.Abs(scaled-math.Round(scaled)) < 1e-9
}

// Interval converts a tick rate in seconds to a timer duration
func Interval(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
