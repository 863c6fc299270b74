package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/content-optimizer/internal/models"
	"github.com/content-optimizer/pkg/logger"
)

type fakeCompleter struct {
	reply  string
	err    error
	calls  int
	system string
	user   string
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (string, error) {
	f.calls++
	f.system = system
	f.user = user
	return f.reply, f.err
}

func TestGeneratePerPlatformPrompt(t *testing.T) {
	tests := []struct {
		platform models.Platform
		contains string
	}{
		{models.PlatformReddit, "genuine Reddit user"},
		{models.PlatformTwitter, "Write 2 tweets"},
		{models.PlatformYouTube, "YouTube-ready content"},
	}

	for _, tt := range tests {
		t.Run(tt.platform.String(), func(t *testing.T) {
			fake := &fakeCompleter{reply: "  generated copy \n"}
			g := NewGenerator(fake, logger.Nop())

			out, err := g.Generate(context.Background(), "remote work", tt.platform)
			require.NoError(t, err)
			assert.Equal(t, "generated copy", out)
			assert.Contains(t, fake.user, tt.contains)
			assert.Contains(t, fake.user, `"remote work"`)
			assert.Equal(t, ContentGenerationSystemPrompt, fake.system)
		})
	}
}

func TestGenerateUnsupportedPlatform(t *testing.T) {
	fake := &fakeCompleter{reply: "x"}
	g := NewGenerator(fake, logger.Nop())

	for _, p := range []models.Platform{models.PlatformLinkedIn, models.PlatformInstagram, models.PlatformOther} {
		_, err := g.Generate(context.Background(), "topic", p)
		assert.True(t, errors.Is(err, models.ErrUnsupportedPlatform), p)
	}
	assert.Zero(t, fake.calls)
}

func TestGenerateErrors(t *testing.T) {
	g := NewGenerator(&fakeCompleter{err: errors.New("boom")}, logger.Nop())
	_, err := g.Generate(context.Background(), "topic", models.PlatformTwitter)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	g = NewGenerator(&fakeCompleter{reply: "   "}, logger.Nop())
	_, err = g.Generate(context.Background(), "topic", models.PlatformTwitter)
	assert.Error(t, err)

	_, err = g.Generate(context.Background(), "  ", models.PlatformTwitter)
	assert.Error(t, err)
}

func TestGenerateStripsCodeFence(t *testing.T) {
	g := NewGenerator(&fakeCompleter{reply: "```text\nTweet one #a #b\n```"}, logger.Nop())
	out, err := g.Generate(context.Background(), "topic", models.PlatformTwitter)
	require.NoError(t, err)
	assert.Equal(t, "Tweet one #a #b", out)
}

func TestBriefEmpty(t *testing.T) {
	assert.True(t, Brief{}.Empty())
	assert.True(t, Brief{Product: "  ", Tones: []string{"fun"}, ContentTypes: []string{"Tweet"}}.Empty())
	assert.False(t, Brief{Product: "Acme"}.Empty())
	assert.False(t, Brief{Description: "CRM"}.Empty())
	assert.False(t, Brief{Keywords: "crm"}.Empty())
}

func TestBuildBrief(t *testing.T) {
	brief := BuildBrief(Brief{
		Product:      " Acme CRM ",
		Description:  "Lightweight CRM for freelancers",
		ContentTypes: []string{"Tweet", "LinkedIn Post"},
		Tones:        []string{"Friendly"},
		Keywords:     "crm, freelance",
	})

	assert.Equal(t, "Product: Acme CRM\n"+
		"Description: Lightweight CRM for freelancers\n"+
		"Content Types: Tweet, LinkedIn Post\n"+
		"Tone: Friendly\n"+
		"Keywords: crm, freelance", brief)
}

func TestSupports(t *testing.T) {
	for _, p := range SupportedPlatforms() {
		assert.True(t, Supports(p))
	}
	assert.False(t, Supports(models.PlatformLinkedIn))
}
