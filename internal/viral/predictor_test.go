package viral

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/content-optimizer/internal/models"
)

func TestModifier(t *testing.T) {
	p := Default()

	assert.Equal(t, 0.15, p.Modifier("Short and loud! #go", Twitter))
	assert.Equal(t, 0.08, p.Modifier("", Twitter))
	assert.Equal(t, 0.04, p.Modifier("so much fun", Instagram))
	assert.Equal(t, 0.06, p.Modifier("data driven", LinkedIn))
	assert.Equal(t, 0.05, p.Modifier("How To bake bread", YouTube))
	assert.Equal(t, 0.0, p.Modifier("anything", "MySpace"))
}

func TestPredictFavoursLinkedInForLongStrategyText(t *testing.T) {
	p := Default()
	text := "guide to growth " + strings.Repeat("and steady strategy work ", 8)

	var twitter, linkedin float64
	for _, s := range p.Scores(0.8, text) {
		switch s.Platform {
		case Twitter:
			twitter = s.ViralScore
		case LinkedIn:
			linkedin = s.ViralScore
		}
	}
	assert.Greater(t, linkedin, twitter)

	got := p.Predict(0.8, text)
	assert.Equal(t, LinkedIn, got.Platform)
	assert.Equal(t, "8–10 AM (Mornings)", got.RecommendedTime)
}

func TestPredictShortTextFavoursTwitter(t *testing.T) {
	p := Default()
	text := "guide to growth"

	// three words earn Twitter's short-post bonus, which outweighs the
	// LinkedIn keyword bonus
	want := map[string]PlatformScore{
		Twitter:   {Platform: Twitter, Modifier: 0.08, ViralScore: 0.584},
		Instagram: {Platform: Instagram, Modifier: 0, ViralScore: 0.56},
		LinkedIn:  {Platform: LinkedIn, Modifier: 0.06, ViralScore: 0.578},
		YouTube:   {Platform: YouTube, Modifier: 0.05, ViralScore: 0.575},
	}
	scores := p.Scores(0.8, text)
	require.Len(t, scores, len(want))
	for _, s := range scores {
		assert.Equal(t, want[s.Platform], s, s.Platform)
	}

	got := p.Predict(0.8, text)
	assert.Equal(t, Twitter, got.Platform)
	assert.Equal(t, 0.584, got.ViralScore)
}

func TestPredictClampsAndBreaksTiesInOrder(t *testing.T) {
	p := Default()

	// A saturated base score puts every platform at 1.0; Twitter is listed first.
	got := p.Predict(5, "anything")
	assert.Equal(t, Twitter, got.Platform)
	assert.Equal(t, 1.0, got.ViralScore)

	low := p.Predict(-2, "")
	assert.Equal(t, 0.0, low.ViralScore)
}

func TestScoresRounded(t *testing.T) {
	for _, s := range Default().Scores(0.333, "hello #world") {
		assert.Equal(t, round(s.ViralScore, 3), s.ViralScore)
		assert.GreaterOrEqual(t, s.ViralScore, 0.0)
		assert.LessOrEqual(t, s.ViralScore, 1.0)
	}
}

func TestBestPostingTime(t *testing.T) {
	p := Default()
	assert.Equal(t, "5–8 PM (Weekdays)", p.BestPostingTime(Twitter))
	assert.Equal(t, DefaultPostingTime, p.BestPostingTime("Reddit"))
}

func TestCompareTieFavoursA(t *testing.T) {
	cmp := Default().Compare(
		Candidate{Text: "same text", Score: 0.5},
		Candidate{Text: "same text", Score: 0.5},
	)
	assert.Equal(t, models.VariantA, cmp.Winner)
	assert.Equal(t, cmp.A, cmp.Prediction)
}

func TestCompareHigherWins(t *testing.T) {
	cmp := Default().Compare(
		Candidate{Text: "plain", Score: 0.2},
		Candidate{Text: "plain", Score: 0.6},
	)
	require.Equal(t, models.VariantB, cmp.Winner)
	assert.Greater(t, cmp.B.ViralScore, cmp.A.ViralScore)
	assert.Equal(t, "plain", cmp.WinnerText)
}

func TestCustomPolicy(t *testing.T) {
	policy := Policy{
		Platforms:  []string{"Mastodon"},
		Rules:      map[string][]ModifierRule{"Mastodon": {{AnyOf: []string{"fediverse"}, Bonus: 0.5}}},
		BaseWeight: 0.5,
		ModWeight:  0.5,
	}
	got := NewPredictor(policy).Predict(0.2, "hello fediverse")
	assert.Equal(t, "Mastodon", got.Platform)
	assert.Equal(t, 0.35, got.ViralScore)
	assert.Equal(t, DefaultPostingTime, got.RecommendedTime)
}
