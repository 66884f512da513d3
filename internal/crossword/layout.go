package crossword

import (
	"cmp"
	"fmt"
	"slices"
)

// Letters rebuilds the solution as a Height x Width matrix, indexed
// [row][col]. Black squares hold 0. Conflicting words make it fail with
// ErrConflictingLetters. Malformed puzzles are reported as errors.
func (p *Puzzle) Letters() ([][]byte, error) {
	if p.Width < 1 || p.Height < 1 {
		return nil, fmt.Errorf("invalid grid size %dx%d", p.Width, p.Height)
	}
	for _, w := range p.Words {
		if w.Length != len(w.Word) {
			return nil, fmt.Errorf("word %q has length %d, declared %d", w.Word, len(w.Word), w.Length)
		}
		if w.Direction != Horizontal && w.Direction != Vertical {
			return nil, fmt.Errorf("word %q has unknown direction %q", w.Word, w.Direction)
		}
	}
	rows := make([][]byte, p.Height)
	for i := range rows {
		rows[i] = make([]byte, p.Width)
	}
	for _, w := range p.Words {
		for i, c := range w.Cells() {
			if c.X < 0 || c.Y < 0 || c.X >= p.Width || c.Y >= p.Height {
				return nil, fmt.Errorf("word %q leaves the %dx%d grid at (%d,%d)", w.Word, p.Width, p.Height, c.X, c.Y)
			}
			l := w.Word[i]
			if cur := rows[c.Y][c.X]; cur != 0 && cur != l {
				return nil, fmt.Errorf("%w: %q and %q at (%d,%d)", ErrConflictingLetters, cur, l, c.X, c.Y)
			}
			rows[c.Y][c.X] = l
		}
	}
	return rows, nil
}

// Validate checks that the words agree on every shared cell and fit the
// declared dimensions.
func (p *Puzzle) Validate() error {
	_, err := p.Letters()
	return err
}

// Clue is a numbered entry as printed next to a crossword.
type Clue struct {
	Number    int       `json:"number"`
	Direction Direction `json:"direction"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Word      string    `json:"word"`
	Text      string    `json:"text"`
}

// Clues numbers the puzzle the usual way: start cells get consecutive
// numbers in reading order and words starting on the same cell share one.
// Horizontal clues come first, each group ordered by number.
func (p *Puzzle) Clues() []Clue {
	starts := make([]Cell, 0, len(p.Words))
	for _, w := range p.Words {
		starts = append(starts, Cell{X: w.StartX, Y: w.StartY})
	}
	slices.SortFunc(starts, func(a, b Cell) int {
		return cmp.Or(cmp.Compare(a.Y, b.Y), cmp.Compare(a.X, b.X))
	})
	starts = slices.Compact(starts)

	numbers := make(map[Cell]int, len(starts))
	for i, c := range starts {
		numbers[c] = i + 1
	}

	clues := make([]Clue, 0, len(p.Words))
	for _, w := range p.Words {
		clues = append(clues, Clue{
			Number:    numbers[Cell{X: w.StartX, Y: w.StartY}],
			Direction: w.Direction,
			X:         w.StartX,
			Y:         w.StartY,
			Word:      w.Word,
			Text:      w.Clue,
		})
	}
	slices.SortStableFunc(clues, func(a, b Clue) int {
		return cmp.Or(cmp.Compare(dirRank(a.Direction), dirRank(b.Direction)), cmp.Compare(a.Number, b.Number))
	})
	return clues
}

func dirRank(d Direction) int {
	if d == Horizontal {
		return 0
	}
	return 1
}
