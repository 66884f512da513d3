package crossword

import "strings"

// PrepareWords normalizes raw input for Generate: words are trimmed and
// upper-cased, entries that are empty or contain anything but A-Z are
// dropped, and duplicates keep their first occurrence.
func PrepareWords(in []WordInput) []WordInput {
	seen := make(map[string]bool, len(in))
	out := make([]WordInput, 0, len(in))
	for _, w := range in {
		word := strings.ToUpper(strings.TrimSpace(w.Word))
		if word == "" || !isAlpha(word) || seen[word] {
			continue
		}
		seen[word] = true
		w.Word = word
		out = append(out, w)
	}
	return out
}

func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
