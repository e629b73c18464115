package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/maheshrc27/postflow/internal/cache"
	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var optimizerNow = time.Date(2024, 3, 6, 7, 30, 0, 0, time.UTC) // Wednesday

func newTestOptimizer() *optimizerService {
	return newOptimizerService(platform.Default(), cache.NewMemoryStore(), time.Hour, nil, func() time.Time { return optimizerNow })
}

func post(at time.Time, rate float64) models.HistoricalPost {
	return models.HistoricalPost{Platform: models.PlatformTiktok, PostedAt: at, EngagementRate: rate}
}

func TestOptimalPostingTimes_Baseline(t *testing.T) {
	windows, err := newTestOptimizer().OptimalPostingTimes(context.Background(), models.PlatformTiktok, "", nil, 0)
	require.NoError(t, err)
	require.Len(t, windows, 3)

	today := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	for i, w := range windows {
		assert.Equal(t, time.Hour, w.EndTime.Sub(w.StartTime))
		assert.Equal(t, today, w.StartTime.Truncate(24*time.Hour))
		assert.GreaterOrEqual(t, w.Score, 0.0)
		assert.LessOrEqual(t, w.Score, 1.0)
		assert.GreaterOrEqual(t, w.Confidence, 0.0)
		assert.LessOrEqual(t, w.Confidence, 1.0)
		if i > 0 {
			assert.GreaterOrEqual(t, windows[i-1].Score, w.Score)
		}
	}
}

func TestOptimalPostingTimes_FromHistory(t *testing.T) {
	day := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	history := []models.HistoricalPost{
		post(day.Add(19*time.Hour), 0.1),
		post(day.Add(24*time.Hour+19*time.Hour), 0.1),
		post(day.Add(48*time.Hour+19*time.Hour), 0.1),
		post(day.Add(12*time.Hour), 0.05),
	}

	windows, err := newTestOptimizer().OptimalPostingTimes(context.Background(), models.PlatformTiktok, "", history, 3)
	require.NoError(t, err)
	require.Len(t, windows, 2)

	assert.Equal(t, 19, windows[0].StartTime.Hour())
	assert.InDelta(t, 0.3/0.35, windows[0].Score, 1e-9)
	assert.InDelta(t, 0.65, windows[0].Confidence, 1e-9)
	assert.Equal(t, 12, windows[1].StartTime.Hour())
}

func TestOptimalPostingTimes_ContentTypeFilter(t *testing.T) {
	day := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	video := post(day.Add(20*time.Hour), 0.2)
	video.ContentType = "video"
	image := post(day.Add(8*time.Hour), 0.9)
	image.ContentType = "image"

	windows, err := newTestOptimizer().OptimalPostingTimes(context.Background(), models.PlatformTiktok, "video", []models.HistoricalPost{video, image}, 3)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, 20, windows[0].StartTime.Hour())
}

func TestOptimalPostingTimes_UnknownPlatform(t *testing.T) {
	_, err := newTestOptimizer().OptimalPostingTimes(context.Background(), "myspace", "", nil, 3)
	require.ErrorIs(t, err, models.ErrUnknownPlatform)
}

func TestOptimalWindows_Baseline(t *testing.T) {
	windows, err := newTestOptimizer().OptimalWindows(context.Background(), models.PlatformLinkedin, nil, 5, optimizerNow)
	require.NoError(t, err)
	require.Len(t, windows, 5)

	assert.True(t, sort.SliceIsSorted(windows, func(i, j int) bool { return windows[i].Score > windows[j].Score }))
	for _, w := range windows {
		assert.True(t, w.StartTime.After(optimizerNow))
		assert.True(t, w.StartTime.Before(optimizerNow.Add(8*24*time.Hour)))
		assert.Equal(t, time.Hour, w.EndTime.Sub(w.StartTime))
		assert.NotEqual(t, time.Saturday, w.StartTime.Weekday())
		assert.NotEqual(t, time.Sunday, w.StartTime.Weekday())
	}
}

func TestOptimalWindows_HistoryNeedsTwoSamples(t *testing.T) {
	wednesday10 := time.Date(2024, 2, 7, 10, 0, 0, 0, time.UTC)
	sunday4 := time.Date(2024, 2, 4, 4, 0, 0, 0, time.UTC)
	history := []models.HistoricalPost{
		post(wednesday10, 0.2),
		post(wednesday10.AddDate(0, 0, 7), 0.2),
		post(sunday4, 0.9), // single sample, ignored
	}

	windows, err := newTestOptimizer().OptimalWindows(context.Background(), models.PlatformTiktok, history, 1, optimizerNow)
	require.NoError(t, err)
	require.Len(t, windows, 1)

	assert.Equal(t, time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC), windows[0].StartTime)
	assert.Equal(t, 1.0, windows[0].Score)
	assert.InDelta(t, 0.6, windows[0].Confidence, 1e-9)
}

func TestNextOccurrence(t *testing.T) {
	from := time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC) // Wednesday

	assert.Equal(t, time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC), nextOccurrence(from, time.Wednesday, 10))
	assert.Equal(t, time.Date(2024, 3, 6, 11, 0, 0, 0, time.UTC), nextOccurrence(from, time.Wednesday, 11))
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), nextOccurrence(from, time.Sunday, 0))
}
