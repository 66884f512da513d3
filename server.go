package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bodul/crossword/internal/crossword"
)

const maxRequestSize = 1 << 20 // 1 MiB

// rateLimiter is a per-IP token bucket. Idle visitors are evicted lazily.
type rateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*bucket
	rate      int           // tokens per interval
	interval  time.Duration // refill interval
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	tokens   int
	lastSeen time.Time
}

func newRateLimiter(rate int, interval time.Duration) *rateLimiter {
	return &rateLimiter{
		visitors: make(map[string]*bucket),
		rate:     rate,
		interval: interval,
		now:      time.Now,
	}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > time.Minute {
		for k, b := range rl.visitors {
			if now.Sub(b.lastSeen) > 5*time.Minute {
				delete(rl.visitors, k)
			}
		}
		rl.lastSweep = now
	}

	b, ok := rl.visitors[ip]
	if !ok {
		rl.visitors[ip] = &bucket{tokens: rl.rate - 1, lastSeen: now}
		return true
	}

	if refill := int(now.Sub(b.lastSeen) / rl.interval); refill > 0 {
		b.tokens = min(b.tokens+refill*rl.rate, rl.rate)
		b.lastSeen = now
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// Server is the HTTP API for puzzles and collaborative games.
type Server struct {
	router     chi.Router
	puzzles    PuzzleStore
	games      *GameRegistry
	generator  *Generator
	sse        *Broadcaster
	logger     *log.Logger
	generateRL *rateLimiter
	moveRL     *rateLimiter
}

// NewServer creates a configured HTTP server.
func NewServer(cfg ServerConfig, puzzles PuzzleStore, generator *Generator, logger *log.Logger) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		puzzles:    puzzles,
		games:      NewGameRegistry(),
		generator:  generator,
		sse:        NewBroadcaster(),
		logger:     logger,
		generateRL: newRateLimiter(max(cfg.GeneratesPerMinute, 1), time.Minute),
		moveRL:     newRateLimiter(max(cfg.MovesPerSecond, 1), time.Second),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(securityHeaders)

	r.Route("/api", func(r chi.Router) {
		r.Post("/puzzles", s.handleCreatePuzzle)
		r.Get("/puzzles", s.handleListPuzzles)
		r.Get("/puzzles/{id}", s.handleGetPuzzle)
		r.Get("/puzzles/{id}/clues", s.handleGetClues)

		r.Post("/games", s.handleCreateGame)
		r.Get("/games/{id}", s.handleGetGame)
		r.Post("/games/{id}/join", s.handleJoinGame)
		r.Post("/games/{id}/move", s.handleMove)
		r.Get("/games/{id}/events", s.handleGameEvents)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start).Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// --- Puzzle handlers ---

// POST /api/puzzles: build a puzzle from a word list or from news text.
func (s *Server) handleCreatePuzzle(w http.ResponseWriter, r *http.Request) {
	if !s.generateRL.allow(r.RemoteAddr) {
		jsonError(w, "Too many requests, try again later", http.StatusTooManyRequests)
		return
	}

	var req struct {
		Words    []crossword.WordInput `json:"words"`
		Text     string                `json:"text"`
		Attempts int                   `json:"attempts"`
		Seed     *uint64               `json:"seed"`
		Title    string                `json:"title"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Attempts < 0 || req.Attempts > 1000 {
		jsonError(w, "'attempts' must be between 1 and 1000", http.StatusBadRequest)
		return
	}

	opts := GenerateOptions{Attempts: req.Attempts, Seed: req.Seed, Title: req.Title}
	var (
		puzzle *crossword.Puzzle
		err    error
	)
	switch {
	case len(req.Words) > 0:
		puzzle, err = s.generator.FromWords(req.Words, opts)
	case strings.TrimSpace(req.Text) != "":
		puzzle, err = s.generator.FromText(r.Context(), req.Text, opts)
	default:
		jsonError(w, "Field 'words' or 'text' is required", http.StatusBadRequest)
		return
	}

	switch {
	case errors.Is(err, ErrExtractionDisabled):
		jsonError(w, "Clue extraction is not configured", http.StatusServiceUnavailable)
		return
	case errors.Is(err, ErrNotEnoughWords), errors.Is(err, crossword.ErrEmptyInput):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	case err != nil:
		s.logger.Error("generate puzzle", "err", err)
		jsonError(w, "Failed to generate puzzle", http.StatusInternalServerError)
		return
	}

	saved, err := s.puzzles.Save(r.Context(), puzzle)
	if err != nil {
		s.logger.Error("save puzzle", "err", err)
		jsonError(w, "Failed to save puzzle", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

// GET /api/puzzles: list all puzzles.
func (s *Server) handleListPuzzles(w http.ResponseWriter, r *http.Request) {
	puzzles, err := s.puzzles.List(r.Context())
	if err != nil {
		s.logger.Error("list puzzles", "err", err)
		jsonError(w, "Failed to list puzzles", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, puzzles)
}

// GET /api/puzzles/{id}: get a single puzzle.
func (s *Server) handleGetPuzzle(w http.ResponseWriter, r *http.Request) {
	puzzle, ok := s.lookupPuzzle(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, puzzle)
}

// GET /api/puzzles/{id}/clues: numbered clues, without the grid.
func (s *Server) handleGetClues(w http.ResponseWriter, r *http.Request) {
	puzzle, ok := s.lookupPuzzle(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, puzzle.Clues())
}

// lookupPuzzle writes the error response itself when it returns false.
func (s *Server) lookupPuzzle(w http.ResponseWriter, r *http.Request, id string) (*crossword.Puzzle, bool) {
	puzzle, err := s.puzzles.Get(r.Context(), id)
	if errors.Is(err, ErrPuzzleNotFound) {
		jsonError(w, "Puzzle not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		s.logger.Error("get puzzle", "id", id, "err", err)
		jsonError(w, "Failed to load puzzle", http.StatusInternalServerError)
		return nil, false
	}
	return puzzle, true
}

// --- Game handlers ---

// gameView is a consistent snapshot of a game for JSON responses.
type gameView struct {
	ID        string            `json:"id"`
	PuzzleID  string            `json:"puzzle_id"`
	Players   map[string]Player `json:"players"`
	State     [][]string        `json:"state"`
	CreatedAt time.Time         `json:"created_at"`
	Puzzle    *crossword.Puzzle `json:"puzzle,omitempty"`
}

func viewOf(g *GameSession) gameView {
	return gameView{
		ID:        g.ID,
		PuzzleID:  g.PuzzleID,
		Players:   g.PlayerList(),
		State:     g.GetState(),
		CreatedAt: g.CreatedAt,
	}
}

// POST /api/games: create a game from a puzzle.
func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PuzzleID string `json:"puzzle_id"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PuzzleID == "" {
		jsonError(w, "Field 'puzzle_id' is required", http.StatusBadRequest)
		return
	}

	puzzle, ok := s.lookupPuzzle(w, r, req.PuzzleID)
	if !ok {
		return
	}

	game, err := s.games.Create(puzzle)
	if err != nil {
		s.logger.Error("create game", "puzzle", req.PuzzleID, "err", err)
		jsonError(w, "Puzzle is not playable", http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusCreated, viewOf(game))
}

// GET /api/games/{id}: current game state with its puzzle.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game := s.games.Get(chi.URLParam(r, "id"))
	if game == nil {
		jsonError(w, "Game not found", http.StatusNotFound)
		return
	}

	view := viewOf(game)
	if puzzle, err := s.puzzles.Get(r.Context(), game.PuzzleID); err == nil {
		view.Puzzle = puzzle
	}
	writeJSON(w, http.StatusOK, view)
}

// POST /api/games/{id}/join: join a game with a pseudo.
func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	game := s.games.Get(chi.URLParam(r, "id"))
	if game == nil {
		jsonError(w, "Game not found", http.StatusNotFound)
		return
	}

	var req struct {
		Pseudo string `json:"pseudo"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Field 'pseudo' is required", http.StatusBadRequest)
		return
	}
	pseudo := sanitizePseudo(req.Pseudo)
	if pseudo == "" {
		jsonError(w, "Invalid pseudo", http.StatusBadRequest)
		return
	}

	player := game.AddPlayer(pseudo)
	s.publish(game.ID, map[string]string{
		"type":   eventPlayerJoined,
		"pseudo": player.Pseudo,
		"color":  player.Color,
	})

	writeJSON(w, http.StatusOK, player)
}

// POST /api/games/{id}/move: write or erase a letter.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	if !s.moveRL.allow(r.RemoteAddr) {
		jsonError(w, "Too many requests, try again later", http.StatusTooManyRequests)
		return
	}

	game := s.games.Get(chi.URLParam(r, "id"))
	if game == nil {
		jsonError(w, "Game not found", http.StatusNotFound)
		return
	}

	var req struct {
		Pseudo string `json:"pseudo"`
		Row    int    `json:"row"`
		Col    int    `json:"col"`
		Value  string `json:"value"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	value := strings.ToUpper(strings.TrimSpace(req.Value))
	if value != "" && (utf8.RuneCountInString(value) != 1 || value < "A" || value > "Z") {
		jsonError(w, "Invalid value: one letter A-Z or empty", http.StatusBadRequest)
		return
	}

	switch err := game.SetCell(req.Row, req.Col, value); {
	case errors.Is(err, errBlackSquare):
		jsonError(w, "Black square", http.StatusBadRequest)
		return
	case errors.Is(err, errOutOfBounds):
		jsonError(w, "Position out of bounds", http.StatusBadRequest)
		return
	}

	s.publish(game.ID, map[string]any{
		"type":   eventCellUpdate,
		"row":    req.Row,
		"col":    req.Col,
		"value":  value,
		"pseudo": sanitizePseudo(req.Pseudo),
	})
	if value != "" && game.Solved() {
		s.publish(game.ID, map[string]string{
			"type":   eventPuzzleSolved,
			"pseudo": sanitizePseudo(req.Pseudo),
		})
	}

	w.WriteHeader(http.StatusNoContent)
}

// GET /api/games/{id}/events: SSE stream.
func (s *Server) handleGameEvents(w http.ResponseWriter, r *http.Request) {
	game := s.games.Get(chi.URLParam(r, "id"))
	if game == nil {
		jsonError(w, "Game not found", http.StatusNotFound)
		return
	}

	pseudo := sanitizePseudo(r.URL.Query().Get("pseudo"))
	initial := map[string]any{
		"type":    eventGameState,
		"state":   game.GetState(),
		"players": game.PlayerList(),
	}

	s.sse.Stream(w, r, game.ID, initial, func() {
		if pseudo == "" {
			return
		}
		game.RemovePlayer(pseudo)
		s.publish(game.ID, map[string]string{
			"type":   eventPlayerLeft,
			"pseudo": pseudo,
		})
	})
}

// --- Helpers ---

func (s *Server) publish(gameID string, event any) {
	if err := s.sse.Publish(gameID, event); err != nil {
		s.logger.Warn("publish event", "game", gameID, "err", err)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizePseudo(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > 20 {
		s = string([]rune(s)[:20])
	}
	return s
}
