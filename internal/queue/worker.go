package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/postflow/internal/models"
)

func (j *Queue) HandleSlotDueTask(ctx context.Context, task *asynq.Task) error {
	var payload SlotDuePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decoding slot payload: %v: %w", err, asynq.SkipRetry)
	}

	return j.MarkDue(ctx, payload.SlotID)
}

// MarkDue flips an enqueued slot to due. Slots that were removed or replaced
// since they were enqueued are ignored.
func (j *Queue) MarkDue(ctx context.Context, slotID int64) error {
	slot, err := j.sp.GetByID(ctx, slotID)
	if err != nil {
		return err
	}
	if slot == nil {
		slog.Info("slot no longer exists", "slot_id", slotID)
		return nil
	}
	if slot.Status == models.SlotStatusDue {
		return nil
	}

	if err := j.sp.UpdateStatus(ctx, models.SlotStatusDue, slotID); err != nil {
		return err
	}

	slog.Info("slot is due", "slot_id", slotID, "platform", slot.Platform, "rule_id", slot.RuleID)
	return nil
}
