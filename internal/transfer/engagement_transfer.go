package transfer

import (
	"time"

	"github.com/maheshrc27/postflow/internal/models"
)

type PredictionInput struct {
	Platform  string                  `json:"platform"`
	Content   string                  `json:"content"`
	PostTime  *time.Time              `json:"post_time,omitempty"`
	MediaURLs []string                `json:"media_urls,omitempty"`
	History   []models.HistoricalPost `json:"history,omitempty"`
	// UseStoredHistory loads the caller's own published posts when History is empty.
	UseStoredHistory bool `json:"use_stored_history,omitempty"`
}

type OptimalTimesInput struct {
	Platform         string                  `json:"platform"`
	ContentType      string                  `json:"content_type,omitempty"`
	Count            int                     `json:"count,omitempty"`
	History          []models.HistoricalPost `json:"history,omitempty"`
	UseStoredHistory bool                    `json:"use_stored_history,omitempty"`
}

type SimulationInput struct {
	Platform         string                  `json:"platform"`
	Drafts           []string                `json:"drafts"`
	MediaURLs        []string                `json:"media_urls,omitempty"`
	History          []models.HistoricalPost `json:"history,omitempty"`
	UseStoredHistory bool                    `json:"use_stored_history,omitempty"`
}
