package service

import (
	"math"

	"github.com/maheshrc27/postflow/internal/models"
)

type bucket struct {
	Sum   float64
	Count int
}

func (b bucket) Mean() float64 {
	if b.Count == 0 {
		return 0
	}
	return b.Sum / float64(b.Count)
}

// HistoricalScore condenses past engagement into a multiplier in [0.8, 1.2].
// An empty history is neutral.
func HistoricalScore(posts []models.HistoricalPost) float64 {
	if len(posts) == 0 {
		return 1.0
	}

	var total float64
	for _, p := range posts {
		total += p.EngagementRate
	}
	avg := total / float64(len(posts))
	if math.IsNaN(avg) {
		return 1.0
	}
	return clamp(avg*10, 0.8, 1.2)
}

func hourBuckets(posts []models.HistoricalPost) [24]bucket {
	var out [24]bucket
	for _, p := range posts {
		h := p.PostedAt.UTC().Hour()
		out[h].Sum += p.EngagementRate
		out[h].Count++
	}
	return out
}

func dayHourBuckets(posts []models.HistoricalPost) [7][24]bucket {
	var out [7][24]bucket
	for _, p := range posts {
		t := p.PostedAt.UTC()
		out[t.Weekday()][t.Hour()].Sum += p.EngagementRate
		out[t.Weekday()][t.Hour()].Count++
	}
	return out
}

// bucketConfidence grows with the sample count and tops out at 0.95.
func bucketConfidence(samples int) float64 {
	return math.Min(0.5+float64(samples)/10*0.5, 0.95)
}

func derefPosts(posts []*models.HistoricalPost) []models.HistoricalPost {
	out := make([]models.HistoricalPost, 0, len(posts))
	for _, p := range posts {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}
