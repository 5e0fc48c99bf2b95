package catalog

import (
	"errors"
	"fmt"
)

// ID identifies a piece type. It doubles as the value written into locked
// board cells, so the zero value is reserved for empty cells.
type ID string

// Empty marks an unoccupied board cell.
const Empty ID = ""

var (
	ErrEmpty        = errors.New("catalog has no entries")
	ErrInvalidEntry = errors.New("invalid catalog entry")
)

// Entry is one piece type: its canonical shape and the reference code
// taught alongside it.
type Entry struct {
	ID    ID
	Code  string
	Shape [][]bool
}

// Catalog is a read-only, ordered mapping from piece type to entry.
type Catalog struct {
	entries []Entry
	index   map[ID]int
}

// New builds a catalog from entries, keeping their order. Entries are
// validated and deep-copied so later changes by the caller are not seen.
func New(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[ID]int, len(entries)),
	}
	for _, e := range entries {
		if err := validate(e); err != nil {
			return nil, err
		}
		if _, dup := c.index[e.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidEntry, e.ID)
		}
		c.index[e.ID] = len(c.entries)
		c.entries = append(c.entries, Entry{ID: e.ID, Code: e.Code, Shape: CopyShape(e.Shape)})
	}
	return c, nil
}

func validate(e Entry) error {
	if e.ID == Empty {
		return fmt.Errorf("%w: missing id", ErrInvalidEntry)
	}
	if len(e.Shape) == 0 || len(e.Shape[0]) == 0 {
		return fmt.Errorf("%w: %q has an empty shape", ErrInvalidEntry, e.ID)
	}
	width := len(e.Shape[0])
	occupied := false
	for _, row := range e.Shape {
		if len(row) != width {
			return fmt.Errorf("%w: %q shape is not rectangular", ErrInvalidEntry, e.ID)
		}
		for _, cell := range row {
			occupied = occupied || cell
		}
	}
	if !occupied {
		return fmt.Errorf("%w: %q shape has no occupied cells", ErrInvalidEntry, e.ID)
	}
	return nil
}

// Len returns the number of piece types.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// At returns the i-th entry in declaration order. The shape is a copy.
func (c *Catalog) At(i int) Entry {
	e := c.entries[i]
	e.Shape = CopyShape(e.Shape)
	return e
}

// Lookup returns the entry for id.
func (c *Catalog) Lookup(id ID) (Entry, bool) {
	i, ok := c.index[id]
	if !ok {
		return Entry{}, false
	}
	return c.At(i), true
}

// IndexOf returns the declaration index of id, or -1.
func (c *Catalog) IndexOf(id ID) int {
	if i, ok := c.index[id]; ok {
		return i
	}
	return -1
}

// IDs returns all piece type ids in declaration order.
func (c *Catalog) IDs() []ID {
	ids := make([]ID, len(c.entries))
	for i, e := range c.entries {
		ids[i] = e.ID
	}
	return ids
}

// CopyShape returns a deep copy of a shape matrix.
func CopyShape(shape [][]bool) [][]bool {
	out := make([][]bool, len(shape))
	for i, row := range shape {
		out[i] = make([]bool, len(row))
		copy(out[i], row)
	}
	return out
}

// ParseShape turns rows such as "##." into a shape matrix. '#' and 'X'
// mark occupied cells; anything else is empty.
func ParseShape(rows []string) [][]bool {
	shape := make([][]bool, len(rows))
	for i, row := range rows {
		r := []rune(row)
		shape[i] = make([]bool, len(r))
		for j, ch := range r {
			shape[i][j] = ch == '#' || ch == 'X' || ch == 'x'
		}
	}
	return shape
}

// Default returns the classic seven tetrominoes. Codes equal the ids; a
// host that teaches real codes supplies its own catalog file.
func Default() *Catalog {
	c, err := New([]Entry{
		{ID: "I", Code: "I", Shape: ParseShape([]string{"####"})},
		{ID: "O", Code: "O", Shape: ParseShape([]string{"##", "##"})},
		{ID: "T", Code: "T", Shape: ParseShape([]string{".#.", "###"})},
		{ID: "S", Code: "S", Shape: ParseShape([]string{".##", "##."})},
		{ID: "Z", Code: "Z", Shape: ParseShape([]string{"##.", ".##"})},
		{ID: "J", Code: "J", Shape: ParseShape([]string{"#..", "###"})},
		{ID: "L", Code: "L", Shape: ParseShape([]string{"..#", "###"})},
	})
	if err != nil {
		panic(err)
	}
	return c
}
