package crossword

import (
	"reflect"
	"testing"
)

// catGrid holds CAT horizontally at (0,0).
func catGrid() *grid {
	g := newGrid()
	a := &attempt{grid: g}
	a.place(WordInput{Word: "CAT"}, 0, 0, Horizontal)
	return g
}

func TestCanPlace(t *testing.T) {
	tests := []struct {
		name string
		word string
		x, y int
		dir  Direction
		want bool
	}{
		{"cross at first letter", "CAR", 0, 0, Vertical, true},
		{"cross at last letter", "ART", 2, -2, Vertical, true},
		{"cross in the middle", "BAD", 1, -1, Vertical, true},
		{"letter mismatch", "DOG", 0, 0, Vertical, false},
		{"parallel touching below", "DOG", 0, 1, Horizontal, false},
		{"parallel touching above", "DOG", 1, -1, Horizontal, false},
		{"extends run at start", "XC", -1, 0, Horizontal, false},
		{"extends run at end", "TO", 2, 0, Horizontal, false},
		{"suffix of existing word", "AT", 1, 0, Horizontal, false},
		{"vertical ending on a word", "OX", 1, -2, Vertical, false},
		{"vertical starting under a word", "OX", 1, 1, Vertical, false},
		{"detached", "DOG", 10, 10, Horizontal, true},
		{"diagonal corner is fine", "DOG", 3, 1, Horizontal, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := catGrid().canPlace(tt.word, tt.x, tt.y, tt.dir); got != tt.want {
				t.Fatalf("canPlace(%q, %d, %d, %s) = %v, want %v", tt.word, tt.x, tt.y, tt.dir, got, tt.want)
			}
		})
	}
}

func TestTryFitLeavesGridOnFailure(t *testing.T) {
	g := catGrid()
	a := &attempt{grid: g, words: []PlacedWord{{Word: "CAT"}}, rng: newRand(1)}

	if a.tryFit(WordInput{Word: "DOG"}) {
		t.Fatal("DOG shares no letter with CAT")
	}
	if g.len() != 3 || len(a.words) != 1 {
		t.Fatalf("grid changed: %d cells, %d words", g.len(), len(a.words))
	}

	if !a.tryFit(WordInput{Word: "CAR"}) {
		t.Fatal("CAR should cross CAT")
	}
	if got := a.words[1].Direction; got != Vertical {
		t.Fatalf("expected CAR vertical, got %s", got)
	}
}

func TestNormalize(t *testing.T) {
	g := newGrid()
	a := &attempt{grid: g}
	a.place(WordInput{Word: "CAT"}, 0, 0, Horizontal)
	a.place(WordInput{Word: "ART"}, 2, -2, Vertical)
	a.place(WordInput{Word: "BAD"}, 1, -1, Vertical)

	width, height, shifted, ok := normalize(g, a.words)
	if !ok {
		t.Fatal("expected normalization")
	}
	if width != 3 || height != 4 {
		t.Fatalf("expected 3x4, got %dx%d", width, height)
	}

	var got [][2]int
	for _, w := range shifted {
		got = append(got, [2]int{w.StartX, w.StartY})
	}
	want := [][2]int{{0, 2}, {2, 0}, {1, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected starts %v, got %v", want, got)
	}

	// Originals are untouched.
	if a.words[1].StartY != -2 {
		t.Fatalf("normalize mutated input: %+v", a.words[1])
	}
}

func TestNormalizeEmptyGrid(t *testing.T) {
	if _, _, _, ok := normalize(newGrid(), nil); ok {
		t.Fatal("empty grid should not normalize")
	}
}

func TestGridOrderIsInsertionOrder(t *testing.T) {
	g := newGrid()
	g.set(Cell{2, 0}, 'A')
	g.set(Cell{-1, 3}, 'B')
	g.set(Cell{2, 0}, 'A')

	want := []Cell{{2, 0}, {-1, 3}}
	if !reflect.DeepEqual(g.order, want) {
		t.Fatalf("expected %v, got %v", want, g.order)
	}
}
