package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	hashtagPattern = regexp.MustCompile(`#[\p{L}\p{N}_]+`)
	mentionPattern = regexp.MustCompile(`@[\p{L}\p{N}_]+`)
)

type ContentFeatures struct {
	Chars       int
	Words       int
	Hashtags    int
	Mentions    int
	Emojis      int
	HasQuestion bool
}

func ExtractFeatures(content string) ContentFeatures {
	f := ContentFeatures{
		Chars:       utf8.RuneCountInString(content),
		Words:       len(strings.Fields(content)),
		Hashtags:    len(hashtagPattern.FindAllStringIndex(content, -1)),
		Mentions:    len(mentionPattern.FindAllStringIndex(content, -1)),
		HasQuestion: strings.ContainsRune(content, '?'),
	}
	for _, r := range content {
		if isEmoji(r) {
			f.Emojis++
		}
	}
	return f
}

// ContentScore turns textual features of a draft into an engagement multiplier in [0.5, 1.5].
func ContentScore(content string) float64 {
	return contentScoreFromFeatures(ExtractFeatures(content))
}

func contentScoreFromFeatures(f ContentFeatures) float64 {
	score := 1.0

	switch {
	case f.Chars >= 500:
		score *= 0.9
	case f.Chars > 50:
		score *= 1.1
	}

	switch {
	case f.Words > 60:
		score *= 0.9
	case f.Words >= 15:
		score *= 1.1
	}

	if f.Emojis > 0 {
		score *= 1.05
	}
	if f.Hashtags > 0 {
		score *= 1.05
	}
	if f.Mentions > 0 {
		score *= 1.03
	}

	return clamp(score, 0.5, 1.5)
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	case r >= 0x2300 && r <= 0x23FF:
		return true
	case r >= 0x2B00 && r <= 0x2BFF:
		return true
	}
	return false
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
