package rules

const (
	// SurviveMin and SurviveMax bound the neighbor count that keeps a live cell alive
	SurviveMin = 2
	SurviveMax = 3
	// BirthCount is the exact neighbor count that brings a dead cell to life
	BirthCount = 3
)

/*
ApplyConwayRules decides whether a cell is alive in the next generation.

A live cell with SurviveMin..SurviveMax neighbors survives, a dead cell with
exactly BirthCount neighbors is born, every other cell is dead.
*/
func ApplyConwayRules(neighbors int, alive bool) bool {
	if alive {
		return neighbors >= SurviveMin && neighbors <= SurviveMax
	}
	return neighbors == BirthCount
}
