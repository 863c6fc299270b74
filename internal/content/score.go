package content

import (
	"strings"
	"unicode/utf8"

	"github.com/content-optimizer/internal/models"
)

// MaxScore caps both scoring rubrics
const MaxScore = 10

var (
	engagementKeywords = []string{"reply", "comment", "subscribe", "discuss"}
	buzzwords          = []string{"ai", "growth", "smart", "boost"}

	// platformKeywords is the CTA keyword each platform's rewrite should carry
	platformKeywords = map[models.Platform]string{
		models.PlatformTwitter:  "reply",
		models.PlatformYouTube:  "subscribe",
		models.PlatformReddit:   "discuss",
		models.PlatformLinkedIn: "comment",
	}
)

// Score rates a text for A/B comparison on a 0-10 scale:
// length band (+3), engagement keyword (+3), hashtag band (+2), buzzword (+2).
func Score(text string) int {
	lower := strings.ToLower(text)
	score := 0

	if words := WordCount(text); words >= 10 && words <= 60 {
		score += 3
	}
	if containsAny(lower, engagementKeywords) {
		score += 3
	}
	if tags := CountHashtags(text); tags >= 1 && tags <= 3 {
		score += 2
	}
	if containsAny(lower, buzzwords) {
		score += 2
	}

	return clamp(score)
}

// OptimizationScore rates an optimized rewrite against its original on a 0-10 scale:
// not longer than the original (+2), engagement keyword (+3), hashtag band (+3),
// platform CTA keyword (+2).
func OptimizationScore(original, optimized string, platform models.Platform) int {
	lower := strings.ToLower(optimized)
	score := 0

	if utf8.RuneCountInString(optimized) <= utf8.RuneCountInString(original) {
		score += 2
	}
	if containsAny(lower, engagementKeywords) {
		score += 3
	}
	if tags := CountHashtags(optimized); tags >= 1 && tags <= 3 {
		score += 3
	}
	if kw, ok := platformKeywords[platform]; ok && strings.Contains(lower, kw) {
		score += 2
	}

	return clamp(score)
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func clamp(score int) int {
	if score > MaxScore {
		return MaxScore
	}
	if score < 0 {
		return 0
	}
	return score
}
