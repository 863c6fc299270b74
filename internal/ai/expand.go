package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/content-optimizer/pkg/logger"
)

// DefaultExpansionCount is how many topics a keyword expands into
const DefaultExpansionCount = 3

const jsonOnly = "\n\nIMPORTANT: Respond ONLY with valid JSON. No markdown, no explanation, just the JSON object."

// ErrNoJSONObject is returned when a reply contains no JSON object
var ErrNoJSONObject = errors.New("no JSON object in reply")

// ExpandedTopic is one topic idea derived from a keyword
type ExpandedTopic struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// KeywordExpander asks the provider to turn a keyword into concrete topic ideas
type KeywordExpander struct {
	completer Completer
	count     int
	log       *logger.Logger
}

// NewKeywordExpander creates an expander producing up to count topics per
// keyword. Non-positive counts use DefaultExpansionCount.
func NewKeywordExpander(completer Completer, count int, log *logger.Logger) *KeywordExpander {
	if count <= 0 {
		count = DefaultExpansionCount
	}
	return &KeywordExpander{
		completer: completer,
		count:     count,
		log:       log.WithComponent("keyword_expander"),
	}
}

// ExpandKeyword returns at most count distinct topic ideas for keyword
func (e *KeywordExpander) ExpandKeyword(ctx context.Context, keyword string) ([]*ExpandedTopic, error) {
	reply, err := e.completer.Complete(ctx,
		TopicExpansionSystemPrompt+jsonOnly,
		fmt.Sprintf(TopicExpansionUserPrompt, e.count, keyword),
	)
	if err != nil {
		return nil, fmt.Errorf("expand %q: %w", keyword, err)
	}

	topics, err := parseExpansion(reply, e.count)
	if err != nil {
		e.log.Error().Err(err).Str("keyword", keyword).Str("reply", reply).Msg("Unparseable expansion reply")
		return nil, fmt.Errorf("expand %q: %w", keyword, err)
	}
	return topics, nil
}

// parseExpansion decodes the topics list, dropping blank and repeated titles
func parseExpansion(reply string, limit int) ([]*ExpandedTopic, error) {
	raw, ok := jsonObject(reply)
	if !ok {
		return nil, ErrNoJSONObject
	}

	var payload struct {
		Topics []*ExpandedTopic `json:"topics"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decode expansion: %w", err)
	}

	seen := make(map[string]struct{}, len(payload.Topics))
	topics := make([]*ExpandedTopic, 0, len(payload.Topics))
	for _, t := range payload.Topics {
		if t == nil {
			continue
		}
		t.Title = strings.TrimSpace(t.Title)
		t.Description = strings.TrimSpace(t.Description)
		key := strings.ToLower(t.Title)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		topics = append(topics, t)
		if limit > 0 && len(topics) == limit {
			break
		}
	}
	return topics, nil
}

// jsonObject cuts the outermost {...} out of a reply that may be wrapped in
// prose or a markdown fence.
func jsonObject(reply string) (string, bool) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start == -1 || end < start {
		return "", false
	}
	return reply[start : end+1], true
}
