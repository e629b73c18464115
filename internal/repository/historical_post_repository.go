package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/maheshrc27/postflow/internal/models"
)

type HistoricalPostRepository interface {
	ListByPlatform(ctx context.Context, userID int64, platform models.Platform, since time.Time) ([]*models.HistoricalPost, error)
	ListByUserID(ctx context.Context, userID int64, since time.Time) ([]*models.HistoricalPost, error)
}

type historicalPostRepository struct {
	db *sql.DB
}

func NewHistoricalPostRepository(db *sql.DB) HistoricalPostRepository {
	return &historicalPostRepository{db: db}
}

const historicalPostColumns = `id, user_id, platform, content_type, posted_at, engagement_rate, likes, comments, shares, views`

func (r *historicalPostRepository) ListByPlatform(ctx context.Context, userID int64, platform models.Platform, since time.Time) ([]*models.HistoricalPost, error) {
	query := `SELECT ` + historicalPostColumns + ` FROM historical_posts
		WHERE user_id = $1 AND platform = $2 AND posted_at >= $3
		ORDER BY posted_at`

	rows, err := r.db.QueryContext(ctx, query, userID, string(platform), since)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return scanHistoricalPosts(rows)
}

func (r *historicalPostRepository) ListByUserID(ctx context.Context, userID int64, since time.Time) ([]*models.HistoricalPost, error) {
	query := `SELECT ` + historicalPostColumns + ` FROM historical_posts
		WHERE user_id = $1 AND posted_at >= $2
		ORDER BY posted_at`

	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return scanHistoricalPosts(rows)
}

func scanHistoricalPosts(rows *sql.Rows) ([]*models.HistoricalPost, error) {
	var posts []*models.HistoricalPost
	for rows.Next() {
		var post models.HistoricalPost
		var contentType sql.NullString
		err := rows.Scan(&post.ID, &post.UserID, &post.Platform, &contentType, &post.PostedAt, &post.EngagementRate,
			&post.Likes, &post.Comments, &post.Shares, &post.Views)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		post.ContentType = contentType.String
		posts = append(posts, &post)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return posts, nil
}
