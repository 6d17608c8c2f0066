package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"size": 20, "tick_rate": 0.5}`), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Size != 20 || config.TickRate != 0.5 {
		t.Errorf("Expected size 20 and tick rate 0.5, got %d and %v", config.Size, config.TickRate)
	}
	if config.TickMax != 2 {
		t.Errorf("Expected untouched fields to keep defaults, got tick_max %v", config.TickMax)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Errorf("Expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	_ = os.WriteFile(bad, []byte(`{"size":`), 0o644)
	if _, err := LoadConfig(bad); err == nil {
		t.Errorf("Expected error for malformed JSON")
	}

	invalid := filepath.Join(dir, "invalid.json")
	_ = os.WriteFile(invalid, []byte(`{"tick_rate": 5}`), 0o644)
	if _, err := LoadConfig(invalid); err == nil {
		t.Errorf("Expected error for tick rate above tick_max")
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"zero size":      func(c *Config) { c.Size = 0 },
		"zero tick min":  func(c *Config) { c.TickMin = 0 },
		"max below min":  func(c *Config) { c.TickMax = 0.001 },
		"negative delta": func(c *Config) { c.TickDelta = -0.01 },
		"empty addr":     func(c *Config) { c.Addr = "" },
		"fine tick min":  func(c *Config) { c.TickMin = 0.005 },
		"fine tick max":  func(c *Config) { c.TickMax = 1.995 },
		"fine delta":     func(c *Config) { c.TickDelta = 0.015 },
		"fine tick rate": func(c *Config) { c.TickRate = 0.125 },
	}
	for name, mutate := range cases {
		c := DefaultConfig()
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestInterval(t *testing.T) {
	if got := Interval(0.25); got != 250*time.Millisecond {
		t.Errorf("Expected 250ms, got %v", got)
	}
}

func TestStatsUpdate(t *testing.T) {
	s := NewStats()
	s.Update(1, 100, 100*time.Millisecond)
	if s.AveragePopulation != 100 || s.GenerationsPerSecond != 10 {
		t.Errorf("unexpected stats after first update: %+v", s)
	}

	s.Update(2, 0, 0)
	if s.AveragePopulation != 90 {
		t.Errorf("Expected moving average 90, got %v", s.AveragePopulation)
	}
	if s.TotalGenerations != 2 {
		t.Errorf("Expected 2 generations, got %d", s.TotalGenerations)
	}
}

func TestOnTickLattice(t *testing.T) {
	for _, v := range []float64{0.01, 0.25, 1.99, 2, 0.1 + 0.2} {
		if !OnTickLattice(v) {
			t.Errorf("Expected %v to be on the 0.01 lattice", v)
		}
	}
	for _, v := range []float64{0.005, 1.995, 0.125} {
		if OnTickLattice(v) {
			t.Errorf("Expected %v to be rejected", v)
		}
	}
}

func TestLoadConfigRejectsFineBounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	_ = os.WriteFile(path, []byte(`{"tick_min": 0.005}`), 0o644)

	if _, err := LoadConfig(path); err == nil {
		t.Errorf("Expected tick_min with 3 decimal places to be rejected")
	}
}
