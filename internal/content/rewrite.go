package content

import (
	"strings"

	"github.com/content-optimizer/internal/models"
)

// CTATable maps platforms to the call-to-action appended by a rewrite
type CTATable struct {
	ByPlatform map[models.Platform]string
	Default    string
}

// For returns the CTA for a platform, falling back to the default
func (t CTATable) For(platform models.Platform) string {
	if cta, ok := t.ByPlatform[platform]; ok {
		return cta
	}
	return t.Default
}

// VariantCTAs is used when building Variant B for A/B tests
var VariantCTAs = CTATable{
	ByPlatform: map[models.Platform]string{
		models.PlatformTwitter: "👉 What’s your take? Reply below!",
		models.PlatformReddit:  "🧠 Let’s discuss.",
		models.PlatformYouTube: "🔔 Like, subscribe & comment!",
	},
	Default: "📢 Share your thoughts!",
}

// OptimizationCTAs is used by the optimization stage
var OptimizationCTAs = CTATable{
	ByPlatform: map[models.Platform]string{
		models.PlatformTwitter:  "👉 What’s your take? Reply below!",
		models.PlatformYouTube:  "🔔 Like, subscribe & comment!",
		models.PlatformReddit:   "🧠 Let’s discuss.",
		models.PlatformLinkedIn: "💬 Share your thoughts in the comments.",
	},
	Default: "📢 Let us know your thoughts!",
}

// Rewrite normalizes text, moves up to three distinct hashtags to the end
// and inserts the platform CTA between body and hashtags.
func Rewrite(text string, platform models.Platform, ctas CTATable) string {
	body, tags := ExtractHashtags(Normalize(text), DefaultMaxHashtags)

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n\n")
	b.WriteString(ctas.For(platform))
	if len(tags) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(tags, " "))
	}
	return b.String()
}

// MakeVariant builds the Variant B rewrite of an original text
func MakeVariant(text string, platform models.Platform) string {
	return strings.TrimSpace(Rewrite(text, platform, VariantCTAs))
}

// Optimize builds the optimization-stage rewrite of a generated text
func Optimize(text string, platform models.Platform) string {
	return Rewrite(text, platform, OptimizationCTAs)
}
