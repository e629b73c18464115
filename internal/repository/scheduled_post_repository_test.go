package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/maheshrc27/postflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduledPostRepository_CreateInTx(t *testing.T) {
	db, mock := newMock(t)
	repo := NewScheduledPostRepository(db)

	slot := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM scheduled_posts WHERE id = ANY($1)")).
		WithArgs("{3,5}").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO scheduled_posts")).
		WithArgs(int64(7), "rule-1", "tiktok", slot, models.SlotStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	removed, err := repo.DeleteByIDs(ctx, tx, []int64{3, 5})
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	id, err := repo.Create(ctx, tx, &models.ScheduledPost{
		UserID:   7,
		RuleID:   "rule-1",
		Platform: models.PlatformTiktok,
		SlotTime: slot,
		Status:   models.SlotStatusPending,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduledPostRepository_CreateError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewScheduledPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO scheduled_posts")).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.Create(context.Background(), nil, &models.ScheduledPost{UserID: 1, Platform: models.PlatformTwitter})
	require.Error(t, err)
}

func TestScheduledPostRepository_GetAndUpdate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewScheduledPostRepository(db)

	slot := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM scheduled_posts WHERE id = $1")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "rule_id", "platform", "slot_time", "status", "created_at", "updated_at"}).
			AddRow(int64(42), int64(7), "rule-1", "instagram", slot, "enqueued", slot, slot))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE scheduled_posts")).
		WithArgs(models.SlotStatusDue, sqlmock.AnyArg(), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	post, err := repo.GetByID(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, models.PlatformInstagram, post.Platform)
	assert.Equal(t, models.SlotStatusEnqueued, post.Status)

	require.NoError(t, repo.UpdateStatus(context.Background(), models.SlotStatusDue, 42))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoricalPostRepository_ListByPlatform(t *testing.T) {
	db, mock := newMock(t)
	repo := NewHistoricalPostRepository(db)

	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	posted := time.Date(2024, 2, 1, 19, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM historical_posts")).
		WithArgs(int64(7), "tiktok", since).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "platform", "content_type", "posted_at", "engagement_rate", "likes", "comments", "shares", "views"}).
			AddRow(int64(1), int64(7), "tiktok", "video", posted, 0.09, int64(900), int64(40), int64(80), int64(12000)).
			AddRow(int64(2), int64(7), "tiktok", nil, posted.Add(time.Hour), 0.04, int64(300), int64(10), int64(5), int64(6000)))

	posts, err := repo.ListByPlatform(context.Background(), 7, models.PlatformTiktok, since)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "video", posts[0].ContentType)
	assert.Empty(t, posts[1].ContentType)
	assert.InDelta(t, 0.04, posts[1].EngagementRate, 1e-9)
}

func TestScheduledPostRepository_ListByUserIDRowError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewScheduledPostRepository(db)

	from := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	slot := from.Add(9 * time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("FROM scheduled_posts WHERE user_id = $1 AND slot_time >= $2")).
		WithArgs(int64(7), from).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "rule_id", "platform", "slot_time", "status", "created_at", "updated_at"}).
			AddRow(int64(1), int64(7), "rule-1", "tiktok", slot, "pending", slot, slot).
			AddRow(int64(2), int64(7), "rule-1", "tiktok", slot.Add(time.Hour), "pending", slot, slot).
			RowError(1, errors.New("connection reset")))

	_, err := repo.ListByUserID(context.Background(), 7, from)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
