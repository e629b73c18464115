package queue

import (
	"github.com/maheshrc27/postflow/internal/repository"
)

type Queue struct {
	sp repository.ScheduledPostRepository
}

func NewQueue(sp repository.ScheduledPostRepository) *Queue {
	return &Queue{
		sp: sp,
	}
}

const (
	TaskTypeSlotDue = "schedule:slot"
	SlotQueue       = "default"
)

type SlotDuePayload struct {
	SlotID   int64  `json:"slot_id"`
	UserID   int64  `json:"user_id"`
	Platform string `json:"platform"`
}
