package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/bodul/crossword/internal/crossword"
)

// maxPromptRunes caps how much news text is sent to the model.
const maxPromptRunes = 12000

const extractPrompt = `Analyze the following news text.
1. Extract 25 unique, distinct words that are relevant to the news or general vocabulary found in the text.
2. Words must be between 3 and 10 letters long.
3. No spaces, no hyphens, no special characters.
4. For each word, write a crossword clue. The clue should be witty, cryptic, or fact-based relative to the news.
5. Optionally add a short plain "definition" of the word.
6. Return ONLY valid JSON in this format:
[
  {"word": "MARKET", "clue": "Place where stocks are traded", "definition": "A venue for trading"},
  ...
]

TEXT:
`

// ExtractWords asks Gemini for crossword words and clues drawn from text.
// The result is raw model output; run it through crossword.PrepareWords.
func (g *GeminiClient) ExtractWords(ctx context.Context, text string) ([]crossword.WordInput, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName,
		[]*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: extractPrompt + truncateRunes(text, maxPromptRunes)}},
		}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0.7)),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	return parseWordList(resp.Text())
}

// parseWordList decodes the model's JSON answer, which must be an array.
func parseWordList(text string) ([]crossword.WordInput, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty gemini response")
	}
	if !strings.HasPrefix(text, "[") {
		return nil, fmt.Errorf("gemini response is not a list: %.80s", text)
	}

	var words []crossword.WordInput
	if err := json.Unmarshal([]byte(text), &words); err != nil {
		return nil, fmt.Errorf("parse word list JSON: %w\nraw response: %s", err, text)
	}
	return words, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
