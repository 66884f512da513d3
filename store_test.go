package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bodul/crossword/internal/crossword"
)

func TestMemoryStoreSaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	p, err := s.Save(ctx, crossPuzzle())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if p.ID == "" {
		t.Fatal("expected puzzle to have an ID")
	}
	if p.GeneratedAt.IsZero() {
		t.Fatal("expected generation time to be stamped")
	}

	got, err := s.Get(ctx, p.ID)
	if err != nil || got.ID != p.ID {
		t.Fatalf("expected to find saved puzzle, got %v, %v", got, err)
	}
	if _, err := s.Get(ctx, "nonexistent"); !errors.Is(err, ErrPuzzleNotFound) {
		t.Fatalf("expected ErrPuzzleNotFound, got %v", err)
	}
}

func TestMemoryStoreKeepsExistingStamp(t *testing.T) {
	ts := time.Date(2026, 10, 19, 6, 0, 0, 0, time.UTC)
	p := crossPuzzle()
	p.ID = "daily-2026-10-19"
	p.GeneratedAt = ts

	saved, _ := NewMemoryStore().Save(context.Background(), p)
	if saved.ID != "daily-2026-10-19" || !saved.GeneratedAt.Equal(ts) {
		t.Fatalf("existing stamp overwritten: %s %s", saved.ID, saved.GeneratedAt)
	}
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	for i := range 3 {
		p := crossPuzzle()
		p.GeneratedAt = base.Add(time.Duration(i) * time.Hour)
		s.Save(ctx, p)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 puzzles, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].GeneratedAt.After(list[i-1].GeneratedAt) {
			t.Fatal("expected puzzles sorted by descending generation time")
		}
	}
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, _ := s.Save(ctx, &crossword.Puzzle{Width: 1, Height: 1})
			s.Get(ctx, p.ID)
			s.List(ctx)
		}()
	}
	wg.Wait()

	list, _ := s.List(ctx)
	if len(list) != 50 {
		t.Fatalf("expected 50 puzzles, got %d", len(list))
	}
}
