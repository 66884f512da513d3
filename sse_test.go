package main

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestBroadcasterSubscribeUnsubscribe(t *testing.T) {
	b := NewBroadcaster()

	s1 := b.Subscribe("game1")
	s2 := b.Subscribe("game1")
	s3 := b.Subscribe("game2")

	if b.Subscribers("game1") != 2 {
		t.Fatalf("expected 2 subscribers for game1, got %d", b.Subscribers("game1"))
	}
	if b.Subscribers("game2") != 1 {
		t.Fatalf("expected 1 subscriber for game2, got %d", b.Subscribers("game2"))
	}

	b.Unsubscribe(s1)
	if b.Subscribers("game1") != 1 {
		t.Fatalf("expected 1 subscriber for game1 after unsubscribe, got %d", b.Subscribers("game1"))
	}

	b.Unsubscribe(s2)
	b.Unsubscribe(s3)
	if b.Subscribers("game1") != 0 || b.Subscribers("game2") != 0 {
		t.Fatal("expected 0 subscribers after full unsubscribe")
	}
}

func TestBroadcasterDoubleUnsubscribe(t *testing.T) {
	b := NewBroadcaster()
	s := b.Subscribe("game1")
	b.Unsubscribe(s)
	b.Unsubscribe(s) // must not panic on a closed channel
}

func TestPublish(t *testing.T) {
	b := NewBroadcaster()

	s1 := b.Subscribe("game1")
	s2 := b.Subscribe("game2")
	defer b.Unsubscribe(s1)
	defer b.Unsubscribe(s2)

	if err := b.Publish("game1", map[string]string{"type": eventPuzzleSolved}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case msg := <-s1.ch:
		var evt map[string]string
		if err := json.Unmarshal(msg, &evt); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if evt["type"] != eventPuzzleSolved {
			t.Fatalf("unexpected event: %s", msg)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("s1 did not receive the event")
	}

	select {
	case <-s2.ch:
		t.Fatal("s2 should not receive game1 events")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishSkipsFullChannel(t *testing.T) {
	b := NewBroadcaster()
	s := b.Subscribe("game1")
	defer b.Unsubscribe(s)

	for range sseChannelBuffer {
		b.Publish("game1", "fill")
	}

	done := make(chan struct{})
	go func() {
		b.Publish("game1", "overflow")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestPublishUnencodable(t *testing.T) {
	b := NewBroadcaster()
	if err := b.Publish("game1", make(chan int)); err == nil {
		t.Fatal("expected an encoding error")
	}
}

func TestBroadcasterConcurrent(t *testing.T) {
	b := NewBroadcaster()
	var wg sync.WaitGroup

	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			gameID := "game1"
			if i%2 == 0 {
				gameID = "game2"
			}
			s := b.Subscribe(gameID)
			b.Publish(gameID, "msg")
			b.Subscribers(gameID)
			b.Unsubscribe(s)
		}(i)
	}
	wg.Wait()

	if b.Subscribers("game1") != 0 || b.Subscribers("game2") != 0 {
		t.Fatal("expected 0 subscribers after concurrent test")
	}
}

func TestStreamSendsInitialEvent(t *testing.T) {
	b := NewBroadcaster()
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	closed := make(chan struct{})
	go func() {
		b.Stream(w, req, "game1", map[string]string{"type": eventGameState}, func() { close(closed) })
	}()

	// Wait for the subscription before cancelling.
	deadline := time.Now().Add(time.Second)
	for b.Subscribers("game1") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("stream did not stop after cancellation")
	}

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected text/event-stream, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), `data: {"type":"game_state"}`) {
		t.Fatalf("initial event missing from %q", w.Body.String())
	}
}
