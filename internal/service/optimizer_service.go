package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/maheshrc27/postflow/internal/cache"
	"github.com/maheshrc27/postflow/internal/metrics"
	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/internal/platform"
)

const defaultWindowCount = 3

type OptimizerService interface {
	// OptimalPostingTimes ranks the hours of the current UTC day.
	OptimalPostingTimes(ctx context.Context, p models.Platform, contentType string, history []models.HistoricalPost, count int) ([]models.OptimalTimeWindow, error)
	// OptimalWindows ranks weekday and hour pairs and places each at its next occurrence after from.
	OptimalWindows(ctx context.Context, p models.Platform, history []models.HistoricalPost, count int, from time.Time) ([]models.OptimalTimeWindow, error)
}

type hourlyQuery struct {
	Platform    models.Platform         `json:"platform"`
	ContentType string                  `json:"content_type"`
	History     []models.HistoricalPost `json:"history"`
	Count       int                     `json:"count"`
	Day         time.Time               `json:"day"`
}

type weeklyQuery struct {
	Platform models.Platform         `json:"platform"`
	History  []models.HistoricalPost `json:"history"`
	Count    int                     `json:"count"`
	From     time.Time               `json:"from"`
}

type optimizerService struct {
	tables platform.Tables
	nowFn  func() time.Time
	hourly *cache.Memo[hourlyQuery, []models.OptimalTimeWindow]
	weekly *cache.Memo[weeklyQuery, []models.OptimalTimeWindow]
}

func NewOptimizerService(tables platform.Tables, store cache.Store, ttl time.Duration, mc *metrics.Collector) OptimizerService {
	return newOptimizerService(tables, store, ttl, mc, time.Now)
}

func newOptimizerService(tables platform.Tables, store cache.Store, ttl time.Duration, mc *metrics.Collector, nowFn func() time.Time) *optimizerService {
	s := &optimizerService{tables: tables, nowFn: nowFn}
	s.hourly = cache.NewMemo(store, cache.MemoConfig[hourlyQuery, []models.OptimalTimeWindow]{
		Name:  "optimal_posting_times",
		TTL:   ttl,
		Hooks: mc.CacheHooks(),
	}, s.rankHours)
	s.weekly = cache.NewMemo(store, cache.MemoConfig[weeklyQuery, []models.OptimalTimeWindow]{
		Name:  "optimal_windows",
		TTL:   ttl,
		Hooks: mc.CacheHooks(),
	}, s.rankWeek)
	return s
}

func (s *optimizerService) OptimalPostingTimes(ctx context.Context, p models.Platform, contentType string, history []models.HistoricalPost, count int) ([]models.OptimalTimeWindow, error) {
	if _, err := s.tables.Profile(p); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if count <= 0 {
		count = defaultWindowCount
	}

	now := s.nowFn().UTC()
	return s.hourly.Call(ctx, hourlyQuery{
		Platform:    p,
		ContentType: contentType,
		History:     filterByContentType(history, contentType),
		Count:       count,
		Day:         time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	})
}

func (s *optimizerService) OptimalWindows(ctx context.Context, p models.Platform, history []models.HistoricalPost, count int, from time.Time) ([]models.OptimalTimeWindow, error) {
	if _, err := s.tables.Profile(p); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if count <= 0 {
		count = defaultWindowCount
	}

	return s.weekly.Call(ctx, weeklyQuery{
		Platform: p,
		History:  history,
		Count:    count,
		From:     from.UTC().Truncate(time.Hour),
	})
}

type rankedSlot struct {
	day        time.Weekday
	hour       int
	score      float64
	confidence float64
}

func (s *optimizerService) rankHours(_ context.Context, q hourlyQuery) ([]models.OptimalTimeWindow, error) {
	profile, err := s.tables.Profile(q.Platform)
	if err != nil {
		return nil, err
	}

	buckets := hourBuckets(q.History)
	var total float64
	for _, b := range buckets {
		total += b.Sum
	}

	ranked := make([]rankedSlot, 0, 24)
	for hour, b := range buckets {
		slot := rankedSlot{day: q.Day.Weekday(), hour: hour}
		if total > 0 {
			if b.Count == 0 {
				continue
			}
			slot.score = clamp(b.Sum/total, 0, 1)
			slot.confidence = bucketConfidence(b.Count)
		} else {
			slot.score, slot.confidence = profile.TimeScore(slot.day, hour)
		}
		ranked = append(ranked, slot)
	}
	sortRanked(ranked)

	windows := make([]models.OptimalTimeWindow, 0, q.Count)
	for _, r := range ranked {
		if len(windows) == q.Count {
			break
		}
		start := q.Day.Add(time.Duration(r.hour) * time.Hour)
		windows = append(windows, models.OptimalTimeWindow{
			StartTime:  start,
			EndTime:    start.Add(time.Hour),
			Score:      r.score,
			Confidence: r.confidence,
		})
	}
	return windows, nil
}

func (s *optimizerService) rankWeek(_ context.Context, q weeklyQuery) ([]models.OptimalTimeWindow, error) {
	profile, err := s.tables.Profile(q.Platform)
	if err != nil {
		return nil, err
	}

	buckets := dayHourBuckets(q.History)
	ranked := make([]rankedSlot, 0, 7*24)
	for day := time.Sunday; day <= time.Saturday; day++ {
		for hour := 0; hour < 24; hour++ {
			slot := rankedSlot{day: day, hour: hour}
			if b := buckets[day][hour]; b.Count >= 2 {
				slot.score = clamp(b.Mean()*10, 0, 1)
				slot.confidence = bucketConfidence(b.Count)
			} else {
				slot.score, slot.confidence = profile.TimeScore(day, hour)
			}
			ranked = append(ranked, slot)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		if ranked[i].confidence != ranked[j].confidence {
			return ranked[i].confidence > ranked[j].confidence
		}
		return nextOccurrence(q.From, ranked[i].day, ranked[i].hour).Before(nextOccurrence(q.From, ranked[j].day, ranked[j].hour))
	})

	windows := make([]models.OptimalTimeWindow, 0, q.Count)
	for _, r := range ranked[:min(q.Count, len(ranked))] {
		start := nextOccurrence(q.From, r.day, r.hour)
		windows = append(windows, models.OptimalTimeWindow{
			StartTime:  start,
			EndTime:    start.Add(time.Hour),
			Score:      r.score,
			Confidence: r.confidence,
		})
	}
	return windows, nil
}

func sortRanked(ranked []rankedSlot) {
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].hour < ranked[j].hour
	})
}

// nextOccurrence returns the first UTC instant strictly after from that falls on day at hour:00.
func nextOccurrence(from time.Time, day time.Weekday, hour int) time.Time {
	from = from.UTC()
	offset := (int(day) - int(from.Weekday()) + 7) % 7
	candidate := time.Date(from.Year(), from.Month(), from.Day()+offset, hour, 0, 0, 0, time.UTC)
	if !candidate.After(from) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}

func filterByContentType(history []models.HistoricalPost, contentType string) []models.HistoricalPost {
	if contentType == "" {
		return history
	}
	filtered := make([]models.HistoricalPost, 0, len(history))
	for _, p := range history {
		if p.ContentType == contentType {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == 0 {
		return history
	}
	return filtered
}
