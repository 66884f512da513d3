package main

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bodul/crossword/internal/crossword"
)

// ErrPuzzleNotFound is returned by stores for unknown IDs.
var ErrPuzzleNotFound = errors.New("puzzle not found")

// PuzzleStore persists generated puzzles.
type PuzzleStore interface {
	// Save stores p, assigning an ID and generation time when missing.
	Save(ctx context.Context, p *crossword.Puzzle) (*crossword.Puzzle, error)
	Get(ctx context.Context, id string) (*crossword.Puzzle, error)
	// List returns all puzzles, most recent first.
	List(ctx context.Context) ([]*crossword.Puzzle, error)
	Close() error
}

// stamp fills in the fields a store is responsible for.
func stamp(p *crossword.Puzzle) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.GeneratedAt.IsZero() {
		p.GeneratedAt = time.Now().UTC()
	}
}

// MemoryStore holds puzzles in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	puzzles map[string]*crossword.Puzzle
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{puzzles: make(map[string]*crossword.Puzzle)}
}

func (s *MemoryStore) Save(_ context.Context, p *crossword.Puzzle) (*crossword.Puzzle, error) {
	stamp(p)

	s.mu.Lock()
	s.puzzles[p.ID] = p
	s.mu.Unlock()

	return p, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*crossword.Puzzle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.puzzles[id]
	if !ok {
		return nil, ErrPuzzleNotFound
	}
	return p, nil
}

func (s *MemoryStore) List(_ context.Context) ([]*crossword.Puzzle, error) {
	s.mu.RLock()
	list := make([]*crossword.Puzzle, 0, len(s.puzzles))
	for _, p := range s.puzzles {
		list = append(list, p)
	}
	s.mu.RUnlock()

	slices.SortFunc(list, func(a, b *crossword.Puzzle) int {
		return b.GeneratedAt.Compare(a.GeneratedAt)
	})
	return list, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
