package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/internal/platform"
	"golang.org/x/sync/errgroup"
)

type SimulationService interface {
	SimulateContentPerformance(ctx context.Context, p models.Platform, drafts []string, history []models.HistoricalPost, mediaURLs []string) ([]models.ContentSimulation, error)
}

type simulationService struct {
	tables    platform.Tables
	predictor PredictionService
}

func NewSimulationService(tables platform.Tables, predictor PredictionService) SimulationService {
	return &simulationService{
		tables:    tables,
		predictor: predictor,
	}
}

func (s *simulationService) SimulateContentPerformance(ctx context.Context, p models.Platform, drafts []string, history []models.HistoricalPost, mediaURLs []string) ([]models.ContentSimulation, error) {
	profile, err := s.tables.Profile(p)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	results := make([]models.ContentSimulation, len(drafts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(10)

	for i, draft := range drafts {
		g.Go(func() error {
			predicted, err := s.predictor.PredictEngagement(gctx, PredictionRequest{
				Platform:  p,
				Content:   draft,
				History:   history,
				MediaURLs: mediaURLs,
			})
			if err != nil {
				return fmt.Errorf("simulating draft %d: %w", i+1, err)
			}

			features := ExtractFeatures(draft)
			results[i] = models.ContentSimulation{
				ContentID:           fmt.Sprintf("draft_%d", i+1),
				Content:             draft,
				PredictedEngagement: *predicted,
				ConfidenceScore:     simulationConfidence(contentScoreFromFeatures(features)),
				RecommendedChanges:  recommendChanges(profile.Content, features),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].PredictedEngagement.EngagementRate > results[j].PredictedEngagement.EngagementRate
	})
	return results, nil
}

// simulationConfidence moves away from 0.7 in step with the draft's content score.
func simulationConfidence(contentScore float64) float64 {
	return clamp(0.7*contentScore, 0.1, 0.95)
}

func recommendChanges(band platform.ContentProfile, f ContentFeatures) []string {
	changes := []string{}

	switch {
	case f.Chars < band.MinChars:
		changes = append(changes, fmt.Sprintf("Expand the text to at least %d characters", band.MinChars))
	case band.MaxChars > 0 && f.Chars > band.MaxChars:
		changes = append(changes, fmt.Sprintf("Trim the text to at most %d characters", band.MaxChars))
	}

	switch {
	case f.Words < band.MinWords:
		changes = append(changes, fmt.Sprintf("Use at least %d words", band.MinWords))
	case band.MaxWords > 0 && f.Words > band.MaxWords:
		changes = append(changes, fmt.Sprintf("Keep it under %d words", band.MaxWords))
	}

	switch {
	case f.Hashtags < band.MinHashtags:
		changes = append(changes, fmt.Sprintf("Add hashtags (%d-%d recommended)", band.MinHashtags, band.MaxHashtags))
	case f.Hashtags > band.MaxHashtags:
		changes = append(changes, fmt.Sprintf("Reduce hashtags to %d or fewer", band.MaxHashtags))
	}

	if f.Emojis == 0 {
		changes = append(changes, "Add an emoji to make the post stand out")
	}
	if band.MentionsHelp && f.Mentions == 0 {
		changes = append(changes, "Mention a relevant account to widen reach")
	}
	if !f.HasQuestion {
		changes = append(changes, "Ask a question to invite comments")
	}

	return changes
}
