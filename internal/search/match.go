// Package search implements case-insensitive full-text matching over message
// content, structured result filters, and cross-provider result ordering.
package search

import (
	"strings"

	"github.com/theirongolddev/aislog/internal/model"
)

// MatchesMessage reports whether the message's content contains the query,
// case-insensitively. Matching descends recursively through the block
// structure rather than stringifying it: string leaves are checked directly,
// arrays and objects by visiting every value.
func MatchesMessage(msg *model.Message, query string) bool {
	if msg.Content == nil {
		return false
	}
	q := strings.ToLower(query)
	if !msg.Content.IsBlocks() {
		return containsFold(msg.Content.Text, q)
	}
	for _, b := range msg.Content.Blocks {
		if matchesBlock(&b, q) {
			return true
		}
	}
	return false
}

func matchesBlock(b *model.ContentBlock, q string) bool {
	if containsFold(b.Text, q) || containsFold(b.Thinking, q) || containsFold(b.Name, q) {
		return true
	}
	for _, v := range b.Input {
		if matchesValue(v, q) {
			return true
		}
	}
	return matchesValue(b.Content, q)
}

// matchesValue descends into arbitrary decoded JSON.
func matchesValue(v any, q string) bool {
	switch val := v.(type) {
	case string:
		return containsFold(val, q)
	case []any:
		for _, item := range val {
			if matchesValue(item, q) {
				return true
			}
		}
	case map[string]any:
		for _, item := range val {
			if matchesValue(item, q) {
				return true
			}
		}
	}
	return false
}

func containsFold(s, lowerQuery string) bool {
	if s == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), lowerQuery)
}
