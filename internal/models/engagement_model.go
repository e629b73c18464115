package models

import "time"

type EngagementBaseline struct {
	Likes          int64   `yaml:"likes" json:"likes"`
	Comments       int64   `yaml:"comments" json:"comments"`
	Shares         int64   `yaml:"shares" json:"shares"`
	Saves          int64   `yaml:"saves" json:"saves"`
	Reach          int64   `yaml:"reach" json:"reach"`
	Impressions    int64   `yaml:"impressions" json:"impressions"`
	EngagementRate float64 `yaml:"engagement_rate" json:"engagement_rate"`
}

type EngagementMetrics struct {
	Likes          int64   `json:"likes"`
	Comments       int64   `json:"comments"`
	Shares         int64   `json:"shares"`
	Saves          int64   `json:"saves"`
	Reach          int64   `json:"reach"`
	Impressions    int64   `json:"impressions"`
	EngagementRate float64 `json:"engagement_rate"`
}

// IsZero reports whether no field carries a value, which marks an empty prediction.
func (m EngagementMetrics) IsZero() bool {
	return m == EngagementMetrics{}
}

type OptimalTimeWindow struct {
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Score      float64   `json:"score"`
	Confidence float64   `json:"confidence"`
}

type ContentSimulation struct {
	ContentID           string            `json:"content_id"`
	Content             string            `json:"content"`
	PredictedEngagement EngagementMetrics `json:"predicted_engagement"`
	ConfidenceScore     float64           `json:"confidence_score"`
	RecommendedChanges  []string          `json:"recommended_changes"`
}
