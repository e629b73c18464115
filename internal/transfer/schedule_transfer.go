package transfer

import (
	"time"

	"github.com/maheshrc27/postflow/internal/models"
)

type ScheduleInput struct {
	Timezone string `json:"timezone,omitempty"`
	// Rules are expanded as given; when empty the caller's stored rules are used.
	Rules []models.ScheduleRule `json:"rules,omitempty"`
}

type RuleCreation struct {
	Name      string              `json:"name"`
	Type      string              `json:"type"`
	Platforms []string            `json:"platforms"`
	Schedule  models.RuleSchedule `json:"schedule"`
	Timezone  string              `json:"timezone,omitempty"`
	IsActive  *bool               `json:"is_active,omitempty"`
}

type RuleToggle struct {
	ID     string `json:"id"`
	Active bool   `json:"active"`
}

type ScheduleExport struct {
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	GeneratedAt time.Time `json:"generated_at"`
	SlotCount   int       `json:"slot_count"`
}

type ScheduleSnapshot struct {
	UserID      int64                  `json:"user_id"`
	Timezone    string                 `json:"timezone"`
	GeneratedAt time.Time              `json:"generated_at"`
	Slots       []models.ScheduledSlot `json:"slots"`
}
