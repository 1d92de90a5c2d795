package keyboard

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bft-labs/blinkscan/pkg/scan"
)

// ErrInvalidLayout is returned when a layout cannot be built or does not fit a grid.
var ErrInvalidLayout = errors.New("keyboard: invalid layout")

// DefaultLayoutName names the built-in layout.
const DefaultLayoutName = "qwerty"

var defaultRows = [][]string{
	{"Q", "W", "E", "R", "T", "Y", "U", "I"},
	{"O", "P", "A", "S", "D", "F", "G", "H"},
	{"J", "K", "L", "Z", "X", "C", "V", "B"},
	{"N", "M", "1", "2", "3", "4", "5", "6"},
	{"7", "8", "9", "0", LabelDelete, LabelSpace, LabelSend, LabelExit},
}

// Layout maps grid positions to keys. A Layout is immutable.
type Layout struct {
	name string
	grid scan.Grid
	rows [][]string
	keys map[scan.Position]Key
}

// NewLayout builds a layout from rows of labels. The grid is sized by the
// number of rows and the longest row; an empty label leaves a cell without a key.
func NewLayout(name string, rows [][]string) (*Layout, error) {
	columns := 0
	for _, r := range rows {
		columns = max(columns, len(r))
	}
	grid, err := scan.NewGrid(len(rows), columns)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}

	l := &Layout{
		name: name,
		grid: grid,
		rows: make([][]string, len(rows)),
		keys: make(map[scan.Position]Key),
	}
	for i, r := range rows {
		l.rows[i] = append([]string(nil), r...)
		for j, label := range r {
			if label == "" {
				continue
			}
			key, err := ParseKey(label)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i+1, j+1, err)
			}
			l.keys[scan.Position{Row: i + 1, Column: j + 1}] = key
		}
	}
	return l, nil
}

// DefaultLayout returns the built-in 5x8 layout.
func DefaultLayout() *Layout {
	l, err := NewLayout(DefaultLayoutName, defaultRows)
	if err != nil {
		panic(err)
	}
	return l
}

// Name returns the layout name.
func (l *Layout) Name() string {
	return l.name
}

// Grid returns the smallest grid holding every row of the layout.
func (l *Layout) Grid() scan.Grid {
	return l.grid
}

// KeyAt returns the key at pos, if any.
func (l *Layout) KeyAt(pos scan.Position) (Key, bool) {
	k, ok := l.keys[pos]
	return k, ok
}

// Label returns the label at pos, or "" if the cell is empty.
func (l *Layout) Label(pos scan.Position) string {
	return l.keys[pos].Label
}

// Len returns the number of keys.
func (l *Layout) Len() int {
	return len(l.keys)
}

// Fits reports whether every key lies inside g.
func (l *Layout) Fits(g scan.Grid) error {
	if l.grid.Rows > g.Rows || l.grid.Columns > g.Columns {
		return fmt.Errorf("%w: %s is %dx%d but the scan grid is %dx%d",
			ErrInvalidLayout, l.name, l.grid.Rows, l.grid.Columns, g.Rows, g.Columns)
	}
	return nil
}

// layoutFile is the YAML form of a layout.
type layoutFile struct {
	Name string     `yaml:"name"`
	Rows [][]string `yaml:"rows"`
}

// ParseLayout decodes a YAML layout.
func ParseLayout(data []byte) (*Layout, error) {
	var f layoutFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	if f.Name == "" {
		f.Name = "custom"
	}
	return NewLayout(f.Name, f.Rows)
}

// LoadLayout reads a YAML layout file.
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	l, err := ParseLayout(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// MarshalYAML encodes the layout in the form ParseLayout reads.
func (l *Layout) MarshalYAML() (interface{}, error) {
	return layoutFile{Name: l.name, Rows: l.rows}, nil
}
