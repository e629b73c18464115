package models

import "time"

type RuleType string

const (
	RuleTypeOptimal   RuleType = "optimal"
	RuleTypeSpecific  RuleType = "specific"
	RuleTypeInterval  RuleType = "interval"
	RuleTypeRecurring RuleType = "recurring"
)

type RecurrenceFrequency string

const (
	RecurrenceWeekly  RecurrenceFrequency = "weekly"
	RecurrenceMonthly RecurrenceFrequency = "monthly"
)

type Recurrence struct {
	Frequency RecurrenceFrequency `json:"frequency"`
	Every     int                 `json:"every"`
	Anchor    time.Time           `json:"anchor"`
}

type RuleSchedule struct {
	Times         []string    `json:"times,omitempty"` // HH:MM
	Days          []int       `json:"days,omitempty"`  // 0 = Sunday
	IntervalHours int         `json:"interval_hours,omitempty"`
	PostsPerWeek  int         `json:"posts_per_week,omitempty"`
	Recurrence    *Recurrence `json:"recurrence,omitempty"`
}

type ScheduleRule struct {
	ID        string       `db:"id" json:"id"`
	UserID    int64        `db:"user_id" json:"user_id"`
	Name      string       `db:"name" json:"name"`
	Type      RuleType     `db:"rule_type" json:"type"`
	Platforms []Platform   `db:"platforms" json:"platforms"`
	IsActive  bool         `db:"is_active" json:"is_active"`
	Schedule  RuleSchedule `db:"schedule" json:"schedule"`
	Timezone  string       `db:"timezone" json:"timezone,omitempty"` // IANA zone the rule expands in
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

type ScheduledSlot struct {
	Date     time.Time `json:"date"`
	Platform Platform  `json:"platform"`
	RuleID   string    `json:"rule_id"`
}

type ScheduledPost struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	RuleID    string    `db:"rule_id" json:"rule_id"`
	Platform  Platform  `db:"platform" json:"platform"`
	SlotTime  time.Time `db:"slot_time" json:"slot_time"`
	Status    string    `db:"status" json:"status"` // pending, enqueued, due
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

const (
	SlotStatusPending  = "pending"
	SlotStatusEnqueued = "enqueued"
	SlotStatusDue      = "due"
)
