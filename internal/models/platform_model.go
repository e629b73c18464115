package models

import (
	"errors"
	"fmt"
	"strings"
)

type Platform string

const (
	PlatformTiktok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformYoutube   Platform = "youtube"
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedin  Platform = "linkedin"
	PlatformFacebook  Platform = "facebook"
)

var ErrUnknownPlatform = errors.New("unknown platform")

// Platforms lists every supported platform in a stable order.
func Platforms() []Platform {
	return []Platform{
		PlatformTiktok,
		PlatformInstagram,
		PlatformYoutube,
		PlatformTwitter,
		PlatformLinkedin,
		PlatformFacebook,
	}
}

func ParsePlatform(value string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(value)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, value)
	}
	return p, nil
}

func (p Platform) Valid() bool {
	for _, known := range Platforms() {
		if p == known {
			return true
		}
	}
	return false
}
