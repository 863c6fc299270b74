// Package viral predicts the best-fit platform for a text and a naive viral score.
package viral

import (
	"math"
	"strings"

	"github.com/content-optimizer/internal/models"
)

// DefaultPostingTime is returned for platforms without a posting window
const DefaultPostingTime = "Anytime"

// PlatformScore is the viral score of a text on one platform
type PlatformScore struct {
	Platform   string  `json:"platform"`
	Modifier   float64 `json:"modifier"`
	ViralScore float64 `json:"viral_score"`
}

// Predictor applies a Policy
type Predictor struct {
	policy Policy
}

// NewPredictor creates a predictor for the given policy
func NewPredictor(policy Policy) *Predictor {
	return &Predictor{policy: policy}
}

// Default returns a predictor using DefaultPolicy
func Default() *Predictor {
	return NewPredictor(DefaultPolicy())
}

// Modifier sums the bonuses of every rule that applies to text on platform
func (p *Predictor) Modifier(text, platform string) float64 {
	lower := strings.ToLower(text)
	words := len(strings.Fields(lower))

	var score float64
	for _, rule := range p.policy.Rules[platform] {
		if rule.applies(lower, words) {
			score += rule.Bonus
		}
	}
	return round(score, 3)
}

// Scores returns the viral score for every platform in universe order.
// base is expected in [0, 1]; results are clamped to [0, 1].
func (p *Predictor) Scores(base float64, text string) []PlatformScore {
	scores := make([]PlatformScore, 0, len(p.policy.Platforms))
	for _, platform := range p.policy.Platforms {
		mod := p.Modifier(text, platform)
		viral := p.policy.BaseWeight*base + p.policy.ModWeight*mod
		scores = append(scores, PlatformScore{
			Platform:   platform,
			Modifier:   mod,
			ViralScore: round(math.Min(math.Max(viral, 0), 1), 3),
		})
	}
	return scores
}

// Predict picks the platform with the highest viral score.
// The first platform in universe order wins ties.
func (p *Predictor) Predict(base float64, text string) models.PredictionResult {
	var best *PlatformScore
	scores := p.Scores(base, text)
	for i := range scores {
		if best == nil || scores[i].ViralScore > best.ViralScore {
			best = &scores[i]
		}
	}
	if best == nil {
		return models.PredictionResult{RecommendedTime: DefaultPostingTime}
	}

	return models.PredictionResult{
		Platform:        best.Platform,
		ViralScore:      best.ViralScore,
		RecommendedTime: p.BestPostingTime(best.Platform),
	}
}

// BestPostingTime returns the posting window for a platform
func (p *Predictor) BestPostingTime(platform string) string {
	if t, ok := p.policy.PostingTimes[platform]; ok {
		return t
	}
	return DefaultPostingTime
}

// Candidate is one side of an A/B prediction
type Candidate struct {
	Text  string
	Score float64
}

// Comparison is the outcome of predicting two variants
type Comparison struct {
	Winner     models.VariantLabel     `json:"winner"`
	WinnerText string                  `json:"winner_text"`
	Prediction models.PredictionResult `json:"prediction"`
	A          models.PredictionResult `json:"a"`
	B          models.PredictionResult `json:"b"`
}

// Compare predicts both candidates independently. Variant A wins ties.
func (p *Predictor) Compare(a, b Candidate) Comparison {
	predA := p.Predict(a.Score, a.Text)
	predB := p.Predict(b.Score, b.Text)

	cmp := Comparison{A: predA, B: predB}
	if predA.ViralScore >= predB.ViralScore {
		cmp.Winner = models.VariantA
		cmp.WinnerText = a.Text
		cmp.Prediction = predA
	} else {
		cmp.Winner = models.VariantB
		cmp.WinnerText = b.Text
		cmp.Prediction = predB
	}
	return cmp
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
