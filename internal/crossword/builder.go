package crossword

import (
	"cmp"
	"io"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultMaxAttempts is the number of attempts made when none is configured.
const DefaultMaxAttempts = 50

// Builder searches for the densest layout of a word list.
// A Builder is not safe for concurrent use; its random source is shared
// across calls.
type Builder struct {
	rng         *rand.Rand
	maxAttempts int
	logger      *log.Logger

	// observe, when set, sees every finished attempt in order.
	observe func(*attempt)
}

// Option configures a Builder.
type Option func(*Builder)

// WithRand sets the random source used to shuffle words and pick candidates.
func WithRand(rng *rand.Rand) Option {
	return func(b *Builder) { b.rng = rng }
}

// WithSeed seeds a PCG random source, making Generate reproducible.
func WithSeed(seed uint64) Option {
	return func(b *Builder) { b.rng = newRand(seed) }
}

// WithMaxAttempts sets how many independent attempts Generate makes.
// Values below 1 are treated as 1.
func WithMaxAttempts(n int) Option {
	return func(b *Builder) { b.maxAttempts = max(n, 1) }
}

// WithLogger sets the logger used for debug traces of the search.
func WithLogger(l *log.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// NewBuilder returns a Builder seeded from the clock unless configured otherwise.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{maxAttempts: DefaultMaxAttempts}
	for _, opt := range opts {
		opt(b)
	}
	if b.rng == nil {
		b.rng = newRand(uint64(time.Now().UnixNano()))
	}
	if b.logger == nil {
		b.logger = log.New(io.Discard)
	}
	return b
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// GenerateAttempts is Generate with an explicit attempt count.
func (b *Builder) GenerateAttempts(words []WordInput, maxAttempts int) (*Puzzle, error) {
	saved := b.maxAttempts
	b.maxAttempts = max(maxAttempts, 1)
	defer func() { b.maxAttempts = saved }()
	return b.Generate(words)
}

// Generate places as many words as it can and returns the normalized layout
// of the best attempt. Words are expected to be upper-case and alphabetic
// (see PrepareWords). Ties between attempts keep the earliest one.
func (b *Builder) Generate(words []WordInput) (*Puzzle, error) {
	if len(words) == 0 {
		return nil, ErrEmptyInput
	}

	sorted := slices.Clone(words)
	slices.SortStableFunc(sorted, func(a, c WordInput) int {
		return cmp.Compare(len(c.Word), len(a.Word))
	})
	if sorted[0].Word == "" {
		return nil, ErrEmptyInput
	}

	var best *attempt
	for i := range b.maxAttempts {
		a := b.runAttempt(sorted)
		b.logger.Debug("attempt finished", "attempt", i+1, "placed", a.score(), "words", len(sorted))
		if b.observe != nil {
			b.observe(a)
		}
		if best == nil || a.score() > best.score() {
			best = a
		}
	}

	width, height, placed, ok := normalize(best.grid, best.words)
	if !ok {
		return nil, ErrEmptyInput
	}
	return &Puzzle{Width: width, Height: height, Words: placed}, nil
}

// runAttempt performs one full pass on a fresh grid.
func (b *Builder) runAttempt(sorted []WordInput) *attempt {
	a := &attempt{grid: newGrid(), rng: b.rng}
	a.place(sorted[0], 0, 0, Horizontal)

	rest := slices.Clone(sorted[1:])
	b.rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	for _, w := range rest {
		if !a.tryFit(w) {
			b.logger.Debug("word unplaced", "word", w.Word)
		}
	}
	return a
}

// attempt is the grid and word list of a single pass.
type attempt struct {
	grid  *grid
	words []PlacedWord
	rng   *rand.Rand
}

func (a *attempt) score() int {
	return len(a.words)
}

// place writes w onto the grid starting at (x, y) and records it.
func (a *attempt) place(w WordInput, x, y int, dir Direction) {
	dx, dy := dir.step()
	for i := 0; i < len(w.Word); i++ {
		a.grid.set(Cell{X: x + i*dx, Y: y + i*dy}, w.Word[i])
	}
	a.words = append(a.words, PlacedWord{
		Word:       w.Word,
		Clue:       w.Clue,
		Definition: w.Definition,
		SourceURL:  w.SourceURL,
		StartX:     x,
		StartY:     y,
		Direction:  dir,
		Length:     len(w.Word),
	})
}

type move struct {
	x, y int
	dir  Direction
}

// tryFit looks for every valid crossing of w with the current grid and
// commits one of them at random.
func (a *attempt) tryFit(w WordInput) bool {
	var moves []move
	for i := 0; i < len(w.Word); i++ {
		for _, c := range a.grid.order {
			if l, _ := a.grid.at(c); l != w.Word[i] {
				continue
			}
			// Orientation is not tracked per cell; try both.
			if a.grid.canPlace(w.Word, c.X, c.Y-i, Vertical) {
				moves = append(moves, move{c.X, c.Y - i, Vertical})
			}
			if a.grid.canPlace(w.Word, c.X-i, c.Y, Horizontal) {
				moves = append(moves, move{c.X - i, c.Y, Horizontal})
			}
		}
	}
	if len(moves) == 0 {
		return false
	}
	m := moves[a.rng.IntN(len(moves))]
	a.place(w, m.x, m.y, m.dir)
	return true
}

// normalize shifts words so the bounding box of g starts at (0,0).
func normalize(g *grid, words []PlacedWord) (width, height int, shifted []PlacedWord, ok bool) {
	minX, minY, maxX, maxY, ok := g.bounds()
	if !ok {
		return 0, 0, nil, false
	}
	shifted = make([]PlacedWord, len(words))
	for i, w := range words {
		w.StartX -= minX
		w.StartY -= minY
		shifted[i] = w
	}
	return maxX - minX + 1, maxY - minY + 1, shifted, true
}
