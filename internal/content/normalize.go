// Package content implements the deterministic text rules of the pipeline:
// whitespace normalization, hashtag extraction, CTA rewriting and scoring.
package content

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyText marks a row without usable text. Callers skip the row.
var ErrEmptyText = errors.New("empty content text")

// DefaultMaxHashtags is how many hashtags a rewrite keeps
const DefaultMaxHashtags = 3

var hashtagPattern = regexp.MustCompile(`#[\p{L}\p{N}_]+`)

// Normalize collapses whitespace runs to a single space and trims the ends
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// ExtractHashtags returns the text with every hashtag removed and the first
// limit distinct hashtags in order of appearance.
func ExtractHashtags(text string, limit int) (string, []string) {
	found := hashtagPattern.FindAllString(text, -1)

	tags := make([]string, 0, len(found))
	seen := make(map[string]struct{}, len(found))
	for _, tag := range found {
		if len(tags) >= limit {
			break
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	body := strings.TrimSpace(hashtagPattern.ReplaceAllString(text, ""))
	return body, tags
}

// CountHashtags counts every hashtag occurrence, duplicates included
func CountHashtags(text string) int {
	return len(hashtagPattern.FindAllStringIndex(text, -1))
}

// WordCount counts whitespace separated words
func WordCount(text string) int {
	return len(strings.Fields(text))
}
