// Package crossword lays out words on a sparse letter grid so that they
// interlock like a crossword.
//
// The Builder runs a bounded randomized search: every attempt seeds the
// longest word horizontally at the origin, shuffles the rest and fits each
// one through a letter intersection when the adjacency rules allow it. The
// attempt that places the most words wins and is shifted so that its bounding
// box starts at (0,0).
package crossword

import (
	"errors"
	"time"
)

var (
	// ErrEmptyInput is returned when there is nothing to place.
	ErrEmptyInput = errors.New("crossword: empty input")

	// ErrConflictingLetters is returned when two words disagree on a cell.
	ErrConflictingLetters = errors.New("crossword: conflicting letters")
)

// Direction is the orientation of a placed word.
type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

// step returns the unit offset along d.
func (d Direction) step() (dx, dy int) {
	if d == Horizontal {
		return 1, 0
	}
	return 0, 1
}

// WordInput is a word with its clue payload, as produced upstream.
type WordInput struct {
	Word       string `json:"word"`
	Clue       string `json:"clue"`
	Definition string `json:"definition,omitempty"`
	SourceURL  string `json:"source_url,omitempty"`
}

// Cell is a grid coordinate. Coordinates may be negative during search.
type Cell struct {
	X, Y int
}

// PlacedWord is a word committed to the grid.
type PlacedWord struct {
	Word       string    `json:"word"`
	Clue       string    `json:"clue"`
	Definition string    `json:"definition"`
	SourceURL  string    `json:"source_url"`
	StartX     int       `json:"startX"`
	StartY     int       `json:"startY"`
	Direction  Direction `json:"direction"`
	Length     int       `json:"length"`
}

// Cells returns the coordinates covered by the word, first letter first.
func (w PlacedWord) Cells() []Cell {
	dx, dy := w.Direction.step()
	cells := make([]Cell, w.Length)
	for i := range cells {
		cells[i] = Cell{X: w.StartX + i*dx, Y: w.StartY + i*dy}
	}
	return cells
}

// Puzzle is the exported layout. ID, Title and GeneratedAt are left for the
// caller to fill in.
type Puzzle struct {
	ID          string       `json:"id,omitempty"`
	Title       string       `json:"title,omitempty"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	Words       []PlacedWord `json:"words"`
	GeneratedAt time.Time    `json:"generated_at_utc,omitzero"`
}

// Score is the number of placed words.
func (p *Puzzle) Score() int {
	return len(p.Words)
}
