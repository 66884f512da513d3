package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bodul/crossword/internal/crossword"
)

var (
	// ErrNotEnoughWords is returned when too few usable words remain after
	// cleanup to make a puzzle worth publishing.
	ErrNotEnoughWords = errors.New("not enough words to build a puzzle")

	// ErrExtractionDisabled is returned for text input when no Gemini client
	// is configured.
	ErrExtractionDisabled = errors.New("clue extraction is not configured")
)

// WordExtractor turns free text into crossword words and clues.
type WordExtractor interface {
	ExtractWords(ctx context.Context, text string) ([]crossword.WordInput, error)
}

// GenerateOptions tune a single generation. Zero values use the defaults.
type GenerateOptions struct {
	Attempts int
	Seed     *uint64
	Title    string
}

// Generator cleans word lists, runs the grid builder and stamps the result.
type Generator struct {
	extractor   WordExtractor
	maxAttempts int
	minWords    int
	logger      *log.Logger
	now         func() time.Time
}

// NewGenerator returns a Generator. extractor may be nil, in which case
// FromText fails with ErrExtractionDisabled.
func NewGenerator(cfg GeneratorConfig, extractor WordExtractor, logger *log.Logger) *Generator {
	return &Generator{
		extractor:   extractor,
		maxAttempts: max(cfg.MaxAttempts, 1),
		minWords:    max(cfg.MinWords, 1),
		logger:      logger,
		now:         time.Now,
	}
}

// FromText extracts words from text with Gemini and builds a puzzle.
func (g *Generator) FromText(ctx context.Context, text string, opts GenerateOptions) (*crossword.Puzzle, error) {
	if g.extractor == nil {
		return nil, ErrExtractionDisabled
	}

	p := newProgress(g.logger)
	words, err := g.extractor.ExtractWords(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("extract words: %w", err)
	}
	p.done("Extracted words", "count", len(words))

	return g.FromWords(words, opts)
}

// FromWords normalizes words and lays them out.
func (g *Generator) FromWords(words []crossword.WordInput, opts GenerateOptions) (*crossword.Puzzle, error) {
	words = crossword.PrepareWords(words)
	if len(words) < g.minWords {
		return nil, fmt.Errorf("%w: %d valid unique words, need %d", ErrNotEnoughWords, len(words), g.minWords)
	}

	attempts := g.maxAttempts
	if opts.Attempts > 0 {
		attempts = opts.Attempts
	}
	builderOpts := []crossword.Option{
		crossword.WithMaxAttempts(attempts),
		crossword.WithLogger(g.logger),
	}
	if opts.Seed != nil {
		builderOpts = append(builderOpts, crossword.WithSeed(*opts.Seed))
	}

	p := newProgress(g.logger)
	puzzle, err := crossword.NewBuilder(builderOpts...).Generate(words)
	if err != nil {
		return nil, fmt.Errorf("build grid: %w", err)
	}
	p.done("Built grid", "placed", puzzle.Score(), "words", len(words), "size", fmt.Sprintf("%dx%d", puzzle.Width, puzzle.Height))

	now := g.now()
	puzzle.GeneratedAt = now.UTC()
	puzzle.Title = opts.Title
	if puzzle.Title == "" {
		// The title carries the local calendar day, the stamp stays UTC.
		puzzle.Title = "Daily News Crossword: " + now.Format(time.DateOnly)
	}
	return puzzle, nil
}
