package models

import (
	"errors"
	"strings"
)

// ErrUnsupportedPlatform is returned where a platform has no specific behaviour
// and no fallback is defined (content generation).
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// Platform identifies the social network a piece of content targets
type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformReddit    Platform = "reddit"
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformOther     Platform = "other"
)

var knownPlatforms = map[string]Platform{
	"twitter":   PlatformTwitter,
	"reddit":    PlatformReddit,
	"youtube":   PlatformYouTube,
	"instagram": PlatformInstagram,
	"linkedin":  PlatformLinkedIn,
}

// ParsePlatform matches a platform name case-insensitively.
// Unknown or empty names map to PlatformOther.
func ParsePlatform(name string) Platform {
	if p, ok := knownPlatforms[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p
	}
	return PlatformOther
}

// String returns the lowercase platform name
func (p Platform) String() string {
	return string(p)
}
