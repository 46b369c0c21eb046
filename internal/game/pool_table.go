package game

// Pocket represents one of the 6 holes on the table.
type Pocket struct {
	ID       int  `json:"id"`
	Position Vec2 `json:"position"`
}

// Table holds the playable rectangle and the pocket positions.
type Table struct {
	Min     Vec2
	Max     Vec2
	Pockets []Pocket
}

// NewSlimeTable creates the standard table: the cloth inside the cushions,
// pockets on the four corners and in the middle of the long rails.
func NewSlimeTable() *Table {
	min := NewVec2(BorderSize, BorderSize)
	max := NewVec2(TableWidth-BorderSize, TableHeight-BorderSize)
	midX := TableWidth / 2

	pockets := []Pocket{
		{ID: 0, Position: NewVec2(min.X, min.Y)},
		{ID: 1, Position: NewVec2(midX, min.Y)},
		{ID: 2, Position: NewVec2(max.X, min.Y)},
		{ID: 3, Position: NewVec2(min.X, max.Y)},
		{ID: 4, Position: NewVec2(midX, max.Y)},
		{ID: 5, Position: NewVec2(max.X, max.Y)},
	}

	return &Table{Min: min, Max: max, Pockets: pockets}
}

// inPocket reports whether position lies within HoleRadius of a pocket.
func (t *Table) inPocket(position Vec2) (int, bool) {
	for _, p := range t.Pockets {
		if position.Distance(p.Position) < HoleRadius {
			return p.ID, true
		}
	}
	return -1, false
}
