package model

import (
	"crypto/md5"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/gol-board/rules"
)

// ErrOutOfRange is returned for any cell access outside [0, size)
var ErrOutOfRange = errors.New("cell out of range")

const (
	rowAlive = '1'
	rowDead  = '0'
)

// Grid represents the square game board
type Grid struct {
	size  int
	cells [][]bool

	// at most one hovered cell
	highlight struct {
		x, y  int
		valid bool
	}
}

// NewGrid creates an all-dead grid of size x size cells
func NewGrid(size int) *Grid {
	size = max(size, 0)
	cells := make([][]bool, size)
	for i := range cells {
		cells[i] = make([]bool, size)
	}
	return &Grid{
		size:  size,
		cells: cells,
	}
}

// GetSize returns the side length of the grid
func (g *Grid) GetSize() int {
	return g.size
}

// InBounds reports whether (x, y) addresses a cell of the grid
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.size && y >= 0 && y < g.size
}

func (g *Grid) outOfRange(op string, x, y int) error {
	return errors.Wrapf(ErrOutOfRange, "[%s] (%d, %d) on %dx%d grid", op, x, y, g.size, g.size)
}

// Get returns the state of a cell, out-of-range cells read as dead
func (g *Grid) Get(x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	return g.cells[y][x]
}

// Alive is the checked variant of Get
func (g *Grid) Alive(x, y int) (bool, error) {
	if !g.InBounds(x, y) {
		return false, g.outOfRange("Alive", x, y)
	}
	return g.cells[y][x], nil
}

// Set sets a cell to alive (true) or dead (false)
func (g *Grid) Set(x, y int, alive bool) error {
	if !g.InBounds(x, y) {
		return g.outOfRange("Set", x, y)
	}
	g.cells[y][x] = alive
	return nil
}

// Toggle flips a single cell
func (g *Grid) Toggle(x, y int) error {
	if !g.InBounds(x, y) {
		return g.outOfRange("Toggle", x, y)
	}
	g.cells[y][x] = !g.cells[y][x]
	return nil
}

// Clear kills every cell. The highlight is presentation state and is kept.
func (g *Grid) Clear() {
	for y := range g.size {
		for x := range g.size {
			g.cells[y][x] = false
		}
	}
}

// Highlight marks (x, y) as the hovered cell, replacing any previous one
func (g *Grid) Highlight(x, y int) error {
	if !g.InBounds(x, y) {
		return g.outOfRange("Highlight", x, y)
	}
	g.highlight.x, g.highlight.y, g.highlight.valid = x, y, true
	return nil
}

// Unhighlight drops the hovered cell
func (g *Grid) Unhighlight() {
	g.highlight.valid = false
}

// Highlighted reports whether (x, y) is the hovered cell
func (g *Grid) Highlighted(x, y int) bool {
	return g.highlight.valid && g.highlight.x == x && g.highlight.y == y
}

// HighlightedCell returns the hovered cell, ok is false when nothing is hovered
func (g *Grid) HighlightedCell() (x, y int, ok bool) {
	return g.highlight.x, g.highlight.y, g.highlight.valid
}

// CountNeighbors counts living cells among the 8 surrounding cells
func (g *Grid) CountNeighbors(x, y int) int {
	count := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if g.Get(x+dx, y+dy) {
				count++
			}
		}
	}
	return count
}

// Step calculates the next generation into a fresh grid.
// The receiver is only read, so it stays a valid snapshot of the previous generation.
func (g *Grid) Step() *Grid {
	next := NewGrid(g.size)
	next.highlight = g.highlight

	for y := range g.size {
		for x := range g.size {
			next.cells[y][x] = rules.ApplyConwayRules(g.CountNeighbors(x, y), g.cells[y][x])
		}
	}
	return next
}

// Clone returns a deep copy of the grid
func (g *Grid) Clone() *Grid {
	c := NewGrid(g.size)
	c.highlight = g.highlight
	for y := range g.size {
		copy(c.cells[y], g.cells[y])
	}
	return c
}

// Population returns the total number of living cells
func (g *Grid) Population() (count int) {
	for y := range g.size {
		for x := range g.size {
			if g.cells[y][x] {
				count++
			}
		}
	}
	return
}

// Hash returns an MD5 digest of the cell states
func (g *Grid) Hash() string {
	h := md5.New()
	for y := range g.size {
		for x := range g.size {
			if g.cells[y][x] {
				h.Write([]byte{1})
			} else {
				h.Write([]byte{0})
			}
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Rows encodes each row as a string of '1' (alive) and '0' (dead), indexed by y
func (g *Grid) Rows() []string {
	rows := make([]string, g.size)
	var sb strings.Builder
	for y := range g.size {
		sb.Reset()
		sb.Grow(g.size)
		for x := range g.size {
			if g.cells[y][x] {
				sb.WriteByte(rowAlive)
			} else {
				sb.WriteByte(rowDead)
			}
		}
		rows[y] = sb.String()
	}
	return rows
}

// ParseRows builds a grid from the Rows encoding. Any byte other than '1' is dead.
func ParseRows(rows []string) (*Grid, error) {
	g := NewGrid(len(rows))
	for y, row := range rows {
		if len(row) != g.size {
			return nil, errors.Errorf("[ParseRows] row %d has %d cells, want %d", y, len(row), g.size)
		}
		for x := range g.size {
			g.cells[y][x] = row[x] == rowAlive
		}
	}
	return g, nil
}
