package model

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

const (
	gridPosBlock     = "██"
	gridPosEmpty     = "  "
	gridPosHighlight = "[]"
	gridPosHotAlive  = "▓▓"
)

// TextRenderer writes a grid as text, two columns per cell
type TextRenderer struct{}

// Display renders the grid to w
func (r *TextRenderer) Display(w io.Writer, g *Grid) error {
	bw := bufio.NewWriter(w)
	for y := range g.size {
		for x := range g.size {
			bw.WriteString(cellGlyph(g.cells[y][x], g.Highlighted(x, y)))
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "[Display] failed to write grid")
	}
	return nil
}

func cellGlyph(alive, highlighted bool) string {
	switch {
	case alive && highlighted:
		return gridPosHotAlive
	case alive:
		return gridPosBlock
	case highlighted:
		return gridPosHighlight
	default:
		return gridPosEmpty
	}
}
