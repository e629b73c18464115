package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/fallback"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/maheshrc27/postflow/internal/cache"
	"github.com/maheshrc27/postflow/internal/metrics"
	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/internal/platform"
)

const (
	peakHourMultiplier  = 1.15
	quietHourMultiplier = 0.8
	peakDayMultiplier   = 1.10
	multiMediaBoost     = 1.1
	videoMediaBoost     = 1.2
)

type PredictionRequest struct {
	Platform  models.Platform
	Content   string
	History   []models.HistoricalPost
	PostTime  *time.Time
	MediaURLs []string
}

type PredictionService interface {
	PredictEngagement(ctx context.Context, req PredictionRequest) (*models.EngagementMetrics, error)
}

type predictionService struct {
	tables  platform.Tables
	metrics *metrics.Collector
	memo    *cache.Memo[PredictionRequest, models.EngagementMetrics]
}

func NewPredictionService(tables platform.Tables, store cache.Store, ttl time.Duration, mc *metrics.Collector) PredictionService {
	s := &predictionService{
		tables:  tables,
		metrics: mc,
	}
	s.memo = cache.NewMemo(store, cache.MemoConfig[PredictionRequest, models.EngagementMetrics]{
		Name:  "predict_engagement",
		TTL:   ttl,
		Key:   predictionKey,
		Skip:  models.EngagementMetrics.IsZero,
		Hooks: mc.CacheHooks(),
	}, s.predict)
	return s
}

func (s *predictionService) PredictEngagement(ctx context.Context, req PredictionRequest) (*models.EngagementMetrics, error) {
	if _, err := s.tables.Baseline(req.Platform); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	m, err := s.memo.Call(ctx, req)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// predictionKey identifies a prediction by platform, content digest and post time.
// History and media do not take part in the key.
func predictionKey(req PredictionRequest) string {
	sum := sha256.Sum256([]byte(req.Content))
	postTime := "anytime"
	if req.PostTime != nil && !req.PostTime.IsZero() {
		postTime = req.PostTime.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("predict:%s:%s:%s", req.Platform, hex.EncodeToString(sum[:16]), postTime)
}

type scoreFactors struct {
	content    float64
	historical float64
}

func (s *predictionService) predict(_ context.Context, req PredictionRequest) (models.EngagementMetrics, error) {
	profile, err := s.tables.Profile(req.Platform)
	if err != nil {
		return models.EngagementMetrics{}, err
	}

	base := scoreFactors{
		content:    ContentScore(req.Content),
		historical: HistoricalScore(req.History),
	}

	factors, _ := failsafe.With[scoreFactors](fallback.NewWithResult(base)).Get(func() (scoreFactors, error) {
		enhanced, err := enhanceFactors(profile, req, base)
		if err != nil {
			slog.Warn("enhanced scoring failed, using base factors", "platform", req.Platform, "error", err)
			s.metrics.PredictionFellBack(string(req.Platform))
		}
		return enhanced, err
	})

	s.metrics.PredictionComputed(string(req.Platform))
	return scaleBaseline(profile.Baseline, factors.content*factors.historical), nil
}

func enhanceFactors(profile platform.Profile, req PredictionRequest, base scoreFactors) (out scoreFactors, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("enhanced scoring panicked: %v", r)
		}
	}()

	media, err := mediaMultiplier(req.MediaURLs)
	if err != nil {
		return scoreFactors{}, err
	}

	return scoreFactors{
		content:    base.content * timeOfDayMultiplier(profile, req.PostTime),
		historical: base.historical * media,
	}, nil
}

func timeOfDayMultiplier(profile platform.Profile, postTime *time.Time) float64 {
	if postTime == nil || postTime.IsZero() {
		return 1.0
	}

	at := postTime.UTC()
	m := 1.0
	hour := at.Hour()
	switch {
	case profile.IsPeakHour(hour):
		m *= peakHourMultiplier
	case profile.IsQuietHour(hour):
		m *= quietHourMultiplier
	}
	if profile.IsPeakDay(at.Weekday()) {
		m *= peakDayMultiplier
	}
	return m
}

func mediaMultiplier(mediaURLs []string) (float64, error) {
	m := 1.0
	if len(mediaURLs) > 1 {
		m *= multiMediaBoost
	}

	for _, raw := range mediaURLs {
		kind, err := mediaKind(raw)
		if err != nil {
			return 0, err
		}
		if kind == "video" {
			m *= videoMediaBoost
			break
		}
	}
	return m, nil
}

// mediaKind maps an attachment URL to the MIME top-level type of its extension.
// Unknown extensions yield an empty kind.
func mediaKind(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid media url %q: %w", raw, err)
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
	if ext == "" {
		return "", nil
	}
	t := filetype.GetType(ext)
	if t == types.Unknown {
		return "", nil
	}
	return t.MIME.Type, nil
}

func scaleBaseline(b models.EngagementBaseline, factor float64) models.EngagementMetrics {
	m := models.EngagementMetrics{
		Likes:       scaleCount(b.Likes, factor),
		Comments:    scaleCount(b.Comments, factor*0.8),
		Shares:      scaleCount(b.Shares, factor*0.9),
		Saves:       scaleCount(b.Saves, factor*0.7),
		Reach:       scaleCount(b.Reach, factor*1.1),
		Impressions: scaleCount(b.Impressions, factor*1.1),
	}
	if m.Impressions > 0 {
		m.EngagementRate = float64(m.Likes+m.Comments+m.Shares) / float64(m.Impressions)
	}
	return m
}

func scaleCount(value int64, factor float64) int64 {
	v := math.Round(float64(value) * factor)
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return int64(v)
}
