package crossword

// grid is a sparse coordinate to letter mapping. order keeps cells in the
// order they were first written so scans do not depend on map iteration.
type grid struct {
	letters map[Cell]byte
	order   []Cell
}

func newGrid() *grid {
	return &grid{letters: make(map[Cell]byte)}
}

func (g *grid) at(c Cell) (byte, bool) {
	l, ok := g.letters[c]
	return l, ok
}

func (g *grid) occupied(c Cell) bool {
	_, ok := g.letters[c]
	return ok
}

func (g *grid) set(c Cell, l byte) {
	if _, ok := g.letters[c]; !ok {
		g.order = append(g.order, c)
	}
	g.letters[c] = l
}

func (g *grid) len() int {
	return len(g.order)
}

// canPlace reports whether word fits with its first letter at (x, y).
//
// Every covered cell must either already hold the same letter, or be empty
// with no occupied orthogonal neighbour other than this word's own previous
// and next cells. The cells just before and just after the word must be empty.
func (g *grid) canPlace(word string, x, y int, dir Direction) bool {
	dx, dy := dir.step()
	for i := 0; i < len(word); i++ {
		c := Cell{X: x + i*dx, Y: y + i*dy}
		if l, ok := g.at(c); ok {
			if l != word[i] {
				return false
			}
			continue
		}
		neighbours := [4]Cell{
			{c.X + 1, c.Y}, {c.X - 1, c.Y}, {c.X, c.Y + 1}, {c.X, c.Y - 1},
		}
		prev := Cell{c.X - dx, c.Y - dy}
		next := Cell{c.X + dx, c.Y + dy}
		for _, n := range neighbours {
			if n == prev || n == next {
				continue
			}
			if g.occupied(n) {
				return false
			}
		}
	}

	before := Cell{x - dx, y - dy}
	after := Cell{x + len(word)*dx, y + len(word)*dy}
	return !g.occupied(before) && !g.occupied(after)
}

// bounds returns the bounding box of occupied cells. ok is false for an
// empty grid.
func (g *grid) bounds() (minX, minY, maxX, maxY int, ok bool) {
	if len(g.order) == 0 {
		return 0, 0, 0, 0, false
	}
	first := g.order[0]
	minX, maxX = first.X, first.X
	minY, maxY = first.Y, first.Y
	for _, c := range g.order[1:] {
		minX = min(minX, c.X)
		maxX = max(maxX, c.X)
		minY = min(minY, c.Y)
		maxY = max(maxY, c.Y)
	}
	return minX, minY, maxX, maxY, true
}
