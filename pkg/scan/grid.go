package scan

import (
	"errors"
	"fmt"
)

// Default grid dimensions.
const (
	DefaultRows    = 5
	DefaultColumns = 8
)

// ErrInvalidGrid is returned when a grid has fewer than one row or column.
var ErrInvalidGrid = errors.New("scan: grid must have at least one row and one column")

// Position is a 1-indexed cell on the grid. The zero value means "no cell".
type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// String returns the position as "(row,column)".
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Column)
}

// IsZero reports whether p is the undefined position.
func (p Position) IsZero() bool {
	return p.Row == 0 && p.Column == 0
}

// Grid describes the selectable surface. It is fixed for a session.
type Grid struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// NewGrid returns a grid or ErrInvalidGrid.
func NewGrid(rows, columns int) (Grid, error) {
	g := Grid{Rows: rows, Columns: columns}
	if err := g.Validate(); err != nil {
		return Grid{}, err
	}
	return g, nil
}

// DefaultGrid returns the 5x8 keyboard grid.
func DefaultGrid() Grid {
	return Grid{Rows: DefaultRows, Columns: DefaultColumns}
}

// Validate checks the grid invariant.
func (g Grid) Validate() error {
	if g.Rows < 1 || g.Columns < 1 {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidGrid, g.Rows, g.Columns)
	}
	return nil
}

// Origin returns (1,1).
func (g Grid) Origin() Position {
	return Position{Row: 1, Column: 1}
}

// NextColumn returns the column after c, wrapping from the last to 1.
func (g Grid) NextColumn(c int) int {
	return c%g.Columns + 1
}

// NextRow returns the row after r, wrapping from the last to 1.
func (g Grid) NextRow(r int) int {
	return r%g.Rows + 1
}

// Contains reports whether p lies on the grid.
func (g Grid) Contains(p Position) bool {
	return p.Row >= 1 && p.Row <= g.Rows && p.Column >= 1 && p.Column <= g.Columns
}

// Cells returns the number of cells.
func (g Grid) Cells() int {
	return g.Rows * g.Columns
}
