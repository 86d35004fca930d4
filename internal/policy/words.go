package policy

import (
	"context"

	"github.com/iamwavecut/warden/internal/db"
	"github.com/iamwavecut/warden/internal/utils/text"
)

type (
	WordFilter struct {
		store WordStore
	}

	MatchResult struct {
		Matched bool
		Word    string
	}
)

func NewWordFilter(store WordStore) *WordFilter {
	return &WordFilter{store: store}
}

// Check returns the first censored entry of the chat that matches content.
func (f *WordFilter) Check(ctx context.Context, chatID int64, content string) (MatchResult, error) {
	if content == "" {
		return MatchResult{}, nil
	}
	words, err := f.store.ListCensoredWords(ctx, chatID)
	if err != nil {
		return MatchResult{}, err
	}
	if len(words) == 0 {
		return MatchResult{}, nil
	}

	normalized := text.Normalize(content)
	var tokens map[string]struct{}
	for _, w := range words {
		word := text.Normalize(w.Word)
		if word == "" {
			continue
		}
		switch w.MatchMode {
		case db.MatchStrict:
			if normalized == word {
				return MatchResult{Matched: true, Word: w.Word}, nil
			}
		default:
			if tokens == nil {
				tokens = map[string]struct{}{}
				for _, t := range text.Tokens(normalized) {
					tokens[t] = struct{}{}
				}
			}
			if _, ok := tokens[word]; ok || text.ContainsBounded(normalized, word) {
				return MatchResult{Matched: true, Word: w.Word}, nil
			}
		}
	}
	return MatchResult{}, nil
}
