package scan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid(t *testing.T) {
	tests := []struct {
		name    string
		rows    int
		columns int
		wantErr bool
	}{
		{"default keyboard", 5, 8, false},
		{"single cell", 1, 1, false},
		{"zero rows", 0, 8, true},
		{"zero columns", 5, 0, true},
		{"negative", -1, -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGrid(tt.rows, tt.columns)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidGrid))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.rows*tt.columns, g.Cells())
		})
	}
}

func TestGrid_WraparoundReturnsToStart(t *testing.T) {
	for rows := 1; rows <= 6; rows++ {
		for cols := 1; cols <= 9; cols++ {
			g := Grid{Rows: rows, Columns: cols}
			for c := 1; c <= cols; c++ {
				got := c
				for i := 0; i < cols; i++ {
					got = g.NextColumn(got)
					require.True(t, got >= 1 && got <= cols, "column %d out of range on %dx%d", got, rows, cols)
				}
				assert.Equal(t, c, got, "column wrap on %dx%d", rows, cols)
			}
			for r := 1; r <= rows; r++ {
				got := r
				for i := 0; i < rows; i++ {
					got = g.NextRow(got)
					require.True(t, got >= 1 && got <= rows, "row %d out of range on %dx%d", got, rows, cols)
				}
				assert.Equal(t, r, got, "row wrap on %dx%d", rows, cols)
			}
		}
	}
}

func TestGrid_NextAtEdges(t *testing.T) {
	g := DefaultGrid()
	assert.Equal(t, 2, g.NextColumn(1))
	assert.Equal(t, 1, g.NextColumn(8))
	assert.Equal(t, 2, g.NextRow(1))
	assert.Equal(t, 1, g.NextRow(5))
}

func TestGrid_Contains(t *testing.T) {
	g := DefaultGrid()
	assert.True(t, g.Contains(Position{Row: 1, Column: 1}))
	assert.True(t, g.Contains(Position{Row: 5, Column: 8}))
	assert.False(t, g.Contains(Position{}))
	assert.False(t, g.Contains(Position{Row: 6, Column: 1}))
	assert.False(t, g.Contains(Position{Row: 1, Column: 9}))
}

func TestPosition_String(t *testing.T) {
	assert.Equal(t, "(3,4)", Position{Row: 3, Column: 4}.String())
	assert.True(t, Position{}.IsZero())
}
