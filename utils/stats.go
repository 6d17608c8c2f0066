package utils

import "time"

// Stats for performance monitoring
type Stats struct {
	GenerationsPerSecond float64   `json:"generations_per_second"`
	AveragePopulation    float64   `json:"average_population"`
	TotalGenerations     int       `json:"total_generations"`
	StartTime            time.Time `json:"start_time"`
}

func NewStats() *Stats {
	return &Stats{StartTime: time.Now()}
}

// Update records a finished generation, duration is the time since the previous one
func (s *Stats) Update(generation int, population int, duration time.Duration) {
	s.TotalGenerations = generation
	if duration > 0 {
		s.GenerationsPerSecond = 1.0 / duration.Seconds()
	}

	// Simple moving average for population
	if s.AveragePopulation == 0 {
		s.AveragePopulation = float64(population)
	} else {
		s.AveragePopulation = (s.AveragePopulation * 0.9) + (float64(population) * 0.1)
	}
}

// Reset starts a fresh measurement window
func (s *Stats) Reset() {
	*s = Stats{StartTime: time.Now()}
}
