package main

import (
	"context"
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bodul/crossword/internal/crossword"
)

const sampleNews = `Stocks rallied on Tuesday after the central bank held interest rates
steady. Oil prices slipped while the dollar weakened against major currencies.
Analysts said strong earnings from banks and retailers lifted market sentiment,
although new tariff threats kept bond yields volatile.`

func TestExtractWords(t *testing.T) {
	projectID := os.Getenv("GCP_PROJECT_ID")
	if projectID == "" {
		t.Skip("GCP_PROJECT_ID not set, skipping integration test")
	}

	ctx := context.Background()
	client, err := NewGeminiClient(ctx, GeminiConfig{Project: projectID})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer client.Close()

	words, err := client.ExtractWords(ctx, sampleNews)
	if err != nil {
		t.Fatalf("extract words: %v", err)
	}

	valid := crossword.PrepareWords(words)
	if len(valid) == 0 {
		t.Fatalf("no usable words in %+v", words)
	}
	for _, w := range valid {
		if w.Clue == "" {
			t.Errorf("word %s has no clue", w.Word)
		}
	}
	t.Logf("Extracted %d words, %d usable", len(words), len(valid))
}

func TestParseWordList(t *testing.T) {
	words, err := parseWordList(`
[
  {"word": "market", "clue": "Place where stocks are traded"},
  {"word": "OIL", "clue": "Crude commodity", "definition": "A viscous liquid", "source_url": "https://example.com/oil"}
]`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	if words[1].Definition != "A viscous liquid" || words[1].SourceURL != "https://example.com/oil" {
		t.Fatalf("optional fields not decoded: %+v", words[1])
	}
}

func TestParseWordListRejects(t *testing.T) {
	for name, text := range map[string]string{
		"empty":     "   ",
		"object":    `{"word": "MARKET"}`,
		"malformed": `[{"word": "MARKET"`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := parseWordList(text); err == nil {
				t.Fatalf("expected an error for %q", text)
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	s := strings.Repeat("é", 10)
	if got := truncateRunes(s, 4); utf8.RuneCountInString(got) != 4 {
		t.Fatalf("expected 4 runes, got %q", got)
	}
	if got := truncateRunes("abc", 10); got != "abc" {
		t.Fatalf("short strings must be unchanged, got %q", got)
	}
}
