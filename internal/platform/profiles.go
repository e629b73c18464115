// Package platform holds the static per-platform tables the engine scores against:
// engagement baselines, posting-time heuristics and content length bands.
package platform

import (
	"fmt"
	"slices"
	"time"

	"github.com/maheshrc27/postflow/internal/models"
)

type ContentProfile struct {
	MinChars     int  `yaml:"min_chars"`
	MaxChars     int  `yaml:"max_chars"`
	MinWords     int  `yaml:"min_words"`
	MaxWords     int  `yaml:"max_words"`
	MinHashtags  int  `yaml:"min_hashtags"`
	MaxHashtags  int  `yaml:"max_hashtags"`
	MentionsHelp bool `yaml:"mentions_help"`
}

type Profile struct {
	Baseline       models.EngagementBaseline `yaml:"baseline"`
	PeakHours      []int                     `yaml:"peak_hours"`
	PeakDays       []int                     `yaml:"peak_days"`
	QuietHours     []int                     `yaml:"quiet_hours"`
	LateNightBoost float64                   `yaml:"late_night_boost"`
	WorkdayBoost   float64                   `yaml:"workday_boost"`
	Content        ContentProfile            `yaml:"content"`
}

// Tables is built once at startup and shared read-only by the predictor and optimizer.
type Tables struct {
	profiles map[models.Platform]Profile
}

func NewTables(profiles map[models.Platform]Profile) Tables {
	owned := make(map[models.Platform]Profile, len(profiles))
	for p, profile := range profiles {
		owned[p] = profile.clone()
	}
	return Tables{profiles: owned}
}

func (t Tables) Profile(p models.Platform) (Profile, error) {
	profile, ok := t.profiles[p]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", models.ErrUnknownPlatform, p)
	}
	return profile.clone(), nil
}

func (t Tables) Baseline(p models.Platform) (models.EngagementBaseline, error) {
	profile, ok := t.profiles[p]
	if !ok {
		return models.EngagementBaseline{}, fmt.Errorf("%w: %q", models.ErrUnknownPlatform, p)
	}
	return profile.Baseline, nil
}

func (p Profile) IsPeakHour(hour int) bool {
	return slices.Contains(p.PeakHours, hour)
}

func (p Profile) IsPeakDay(day time.Weekday) bool {
	return slices.Contains(p.PeakDays, int(day))
}

func (p Profile) IsQuietHour(hour int) bool {
	return slices.Contains(p.QuietHours, hour)
}

// TimeScore returns the heuristic score and confidence for posting at the given
// weekday and hour when there is not enough history to say otherwise.
func (p Profile) TimeScore(day time.Weekday, hour int) (float64, float64) {
	score := 0.3
	confidence := 0.4

	if p.IsPeakHour(hour) {
		score += 0.35
		confidence += 0.2
	}
	if p.IsPeakDay(day) {
		score += 0.15
		confidence += 0.1
	}
	if p.IsQuietHour(hour) {
		score -= 0.2
	}
	if p.LateNightBoost > 0 && (hour >= 21 || hour <= 1) {
		score += p.LateNightBoost
	}
	if p.WorkdayBoost > 0 {
		if day == time.Saturday || day == time.Sunday {
			score -= p.WorkdayBoost
		} else {
			score += p.WorkdayBoost
		}
	}

	return clamp(score, 0.05, 1), clamp(confidence, 0.3, 0.8)
}

func (p Profile) clone() Profile {
	p.PeakHours = slices.Clone(p.PeakHours)
	p.PeakDays = slices.Clone(p.PeakDays)
	p.QuietHours = slices.Clone(p.QuietHours)
	return p
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
