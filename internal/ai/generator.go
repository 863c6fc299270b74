package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/content-optimizer/internal/models"
	"github.com/content-optimizer/pkg/logger"
)

// platformPrompts holds the user prompt template for each platform that can
// be generated for. Each template takes the topic once.
var platformPrompts = map[models.Platform]string{
	models.PlatformReddit:  RedditUserPrompt,
	models.PlatformTwitter: TwitterUserPrompt,
	models.PlatformYouTube: YouTubeUserPrompt,
}

// SupportedPlatforms lists the platforms Generate accepts
func SupportedPlatforms() []models.Platform {
	return []models.Platform{models.PlatformReddit, models.PlatformTwitter, models.PlatformYouTube}
}

// Generator turns topics into platform-specific copy
type Generator struct {
	completer Completer
	log       *logger.Logger
}

// NewGenerator creates a generator on top of any Completer
func NewGenerator(completer Completer, log *logger.Logger) *Generator {
	return &Generator{
		completer: completer,
		log:       log.WithComponent("generator"),
	}
}

// Supports reports whether platform has a generation prompt
func Supports(platform models.Platform) bool {
	_, ok := platformPrompts[platform]
	return ok
}

// Generate writes copy about topic for platform. Unsupported platforms are
// rejected with models.ErrUnsupportedPlatform before the provider is called.
func (g *Generator) Generate(ctx context.Context, topic string, platform models.Platform) (string, error) {
	tmpl, ok := platformPrompts[platform]
	if !ok {
		return "", fmt.Errorf("%w: %q (want reddit, twitter or youtube)", models.ErrUnsupportedPlatform, platform)
	}

	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", fmt.Errorf("topic is required")
	}

	g.log.Debug().Str("platform", platform.String()).Str("topic", topic).Msg("Generating content")

	content, err := g.completer.Complete(ctx, ContentGenerationSystemPrompt, fmt.Sprintf(tmpl, topic))
	if err != nil {
		return "", fmt.Errorf("failed to generate %s content: %w", platform, err)
	}

	content = stripCodeFence(content)
	if content == "" {
		return "", fmt.Errorf("empty %s content for topic %q", platform, topic)
	}
	return content, nil
}

// Brief is a structured request from the dashboard form
type Brief struct {
	Product      string   `json:"product"`
	Description  string   `json:"description"`
	ContentTypes []string `json:"content_types"`
	Tones        []string `json:"tones"`
	Keywords     string   `json:"keywords"`
}

// Empty reports whether the brief names nothing to write about. Content types
// and tones alone only shape copy, they do not give it a subject.
func (b Brief) Empty() bool {
	return strings.TrimSpace(b.Product) == "" &&
		strings.TrimSpace(b.Description) == "" &&
		strings.TrimSpace(b.Keywords) == ""
}

// BuildBrief flattens a brief into the topic text passed to Generate
func BuildBrief(b Brief) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Product: %s\n", strings.TrimSpace(b.Product))
	fmt.Fprintf(&sb, "Description: %s\n", strings.TrimSpace(b.Description))
	fmt.Fprintf(&sb, "Content Types: %s\n", strings.Join(b.ContentTypes, ", "))
	fmt.Fprintf(&sb, "Tone: %s\n", strings.Join(b.Tones, ", "))
	fmt.Fprintf(&sb, "Keywords: %s", strings.TrimSpace(b.Keywords))
	return sb.String()
}

// stripCodeFence removes a surrounding markdown fence some completions add
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx != -1 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
