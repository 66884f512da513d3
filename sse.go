package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	sseChannelBuffer = 16
	sseHeartbeat     = 30 * time.Second
)

// Event types pushed to game subscribers.
const (
	eventGameState    = "game_state"
	eventPlayerJoined = "player_joined"
	eventPlayerLeft   = "player_left"
	eventCellUpdate   = "cell_update"
	eventPuzzleSolved = "puzzle_solved"
)

// subscriber is a single SSE connection to a game.
type subscriber struct {
	ch     chan []byte
	gameID string
}

// Broadcaster fans game events out to SSE subscribers.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{} // by game ID
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[string]map[*subscriber]struct{})}
}

// Subscribe registers a subscriber for gameID.
func (b *Broadcaster) Subscribe(gameID string) *subscriber {
	s := &subscriber{
		ch:     make(chan []byte, sseChannelBuffer),
		gameID: gameID,
	}
	b.mu.Lock()
	if b.subs[gameID] == nil {
		b.subs[gameID] = make(map[*subscriber]struct{})
	}
	b.subs[gameID][s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Unsubscribe removes s and closes its channel. Calling it twice is safe.
func (b *Broadcaster) Unsubscribe(s *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set := b.subs[s.gameID]
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	close(s.ch)
	if len(set) == 0 {
		delete(b.subs, s.gameID)
	}
}

// Publish encodes event as JSON and queues it for every subscriber of
// gameID. Subscribers with a full buffer miss the event.
func (b *Broadcaster) Publish(gameID string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs[gameID] {
		select {
		case s.ch <- data:
		default:
		}
	}
	return nil
}

// Subscribers returns the number of connections for gameID.
func (b *Broadcaster) Subscribers(gameID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[gameID])
}

// Stream serves an SSE connection until the client goes away. initial, when
// non-nil, is sent first; onClose runs after the subscriber is removed.
func (b *Broadcaster) Stream(w http.ResponseWriter, r *http.Request, gameID string, initial any, onClose func()) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s := b.Subscribe(gameID)
	defer func() {
		b.Unsubscribe(s)
		if onClose != nil {
			onClose()
		}
	}()

	if initial != nil {
		data, err := json.Marshal(initial)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-s.ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}
