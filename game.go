package main

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bodul/crossword/internal/crossword"
)

var (
	errOutOfBounds = errors.New("position out of bounds")
	errBlackSquare = errors.New("position is a black square")
)

// Player represents a connected player.
type Player struct {
	Pseudo   string    `json:"pseudo"`
	Color    string    `json:"color"`
	JoinedAt time.Time `json:"joined_at"`
}

// GameSession is a shared attempt at solving one puzzle.
type GameSession struct {
	ID        string             `json:"id"`
	PuzzleID  string             `json:"puzzle_id"`
	Players   map[string]*Player `json:"players"`
	State     [][]string         `json:"state"` // [row][col], "" when empty
	CreatedAt time.Time          `json:"created_at"`

	solution [][]byte
	mu       sync.Mutex
}

// playerColors is the palette assigned to players in order.
var playerColors = []string{
	"#2563eb", "#dc2626", "#16a34a", "#9333ea",
	"#ea580c", "#0891b2", "#c026d3", "#ca8a04",
}

// newGameSession sizes the board from the puzzle's solution.
func newGameSession(p *crossword.Puzzle) (*GameSession, error) {
	solution, err := p.Letters()
	if err != nil {
		return nil, fmt.Errorf("puzzle %s: %w", p.ID, err)
	}
	state := make([][]string, p.Height)
	for i := range state {
		state[i] = make([]string, p.Width)
	}
	return &GameSession{
		ID:        uuid.NewString(),
		PuzzleID:  p.ID,
		Players:   make(map[string]*Player),
		State:     state,
		CreatedAt: time.Now(),
		solution:  solution,
	}, nil
}

// AddPlayer adds a player, or returns the existing one with that pseudo.
func (g *GameSession) AddPlayer(pseudo string) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	if p, ok := g.Players[pseudo]; ok {
		return p
	}

	p := &Player{
		Pseudo:   pseudo,
		Color:    playerColors[len(g.Players)%len(playerColors)],
		JoinedAt: time.Now(),
	}
	g.Players[pseudo] = p
	return p
}

func (g *GameSession) RemovePlayer(pseudo string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.Players, pseudo)
}

// PlayerList returns a snapshot of the players.
func (g *GameSession) PlayerList() map[string]Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make(map[string]Player, len(g.Players))
	for k, p := range g.Players {
		out[k] = *p
	}
	return out
}

// SetCell writes value at (row, col). Only letter cells of the puzzle
// accept input.
func (g *GameSession) SetCell(row, col int, value string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if row < 0 || row >= len(g.State) || col < 0 || col >= len(g.State[row]) {
		return errOutOfBounds
	}
	if g.solution[row][col] == 0 {
		return errBlackSquare
	}
	g.State[row][col] = value
	return nil
}

// GetState returns a copy of the board.
func (g *GameSession) GetState() [][]string {
	g.mu.Lock()
	defer g.mu.Unlock()

	cp := make([][]string, len(g.State))
	for i, row := range g.State {
		cp[i] = make([]string, len(row))
		copy(cp[i], row)
	}
	return cp
}

// Solved reports whether every letter cell holds the right letter.
func (g *GameSession) Solved() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	for y, row := range g.solution {
		for x, l := range row {
			if l != 0 && g.State[y][x] != string(l) {
				return false
			}
		}
	}
	return true
}

// GameRegistry tracks live games in memory.
type GameRegistry struct {
	mu    sync.RWMutex
	games map[string]*GameSession
}

func NewGameRegistry() *GameRegistry {
	return &GameRegistry{games: make(map[string]*GameSession)}
}

// Create starts a game for p.
func (r *GameRegistry) Create(p *crossword.Puzzle) (*GameSession, error) {
	game, err := newGameSession(p)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.games[game.ID] = game
	r.mu.Unlock()

	return game, nil
}

// Get returns a game by ID, or nil if not found.
func (r *GameRegistry) Get(id string) *GameSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.games[id]
}
