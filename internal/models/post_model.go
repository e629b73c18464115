package models

import "time"

// HistoricalPost is a published post together with the engagement it earned.
type HistoricalPost struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	Platform       Platform  `db:"platform" json:"platform"`
	ContentType    string    `db:"content_type" json:"content_type,omitempty"` // video, image, text
	PostedAt       time.Time `db:"posted_at" json:"posted_at"`
	EngagementRate float64   `db:"engagement_rate" json:"engagement_rate"`
	Likes          int64     `db:"likes" json:"likes,omitempty"`
	Comments       int64     `db:"comments" json:"comments,omitempty"`
	Shares         int64     `db:"shares" json:"shares,omitempty"`
	Views          int64     `db:"views" json:"views,omitempty"`
}
