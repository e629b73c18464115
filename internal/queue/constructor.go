package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/postflow/internal/models"
)

// Enqueuer is the part of *asynq.Client the dispatcher needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskDeleter is the part of *asynq.Inspector used to drop superseded slot tasks.
type TaskDeleter interface {
	DeleteTask(queue, id string) error
}

func slotTaskID(slotID int64) string {
	return fmt.Sprintf("slot-%d", slotID)
}

func EnqueueSlot(ctx context.Context, client Enqueuer, payload SlotDuePayload, delay time.Duration) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeSlotDue, taskPayload)

	_, err = client.EnqueueContext(ctx, task,
		asynq.Queue(SlotQueue),
		asynq.ProcessIn(delay),
		asynq.TaskID(slotTaskID(payload.SlotID)),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	log.Printf("Task scheduled: %+v", payload)
	return nil
}

type Dispatcher struct {
	client    Enqueuer
	inspector TaskDeleter
	nowFn     func() time.Time
}

// NewDispatcher enqueues slots through client. inspector may be nil, in which
// case superseded tasks are left to expire as no-ops in the worker.
func NewDispatcher(client Enqueuer, inspector TaskDeleter) *Dispatcher {
	return &Dispatcher{client: client, inspector: inspector, nowFn: time.Now}
}

func (d *Dispatcher) Dispatch(ctx context.Context, post *models.ScheduledPost) error {
	delay := post.SlotTime.Sub(d.nowFn())
	if delay < 0 {
		delay = 0
	}

	return EnqueueSlot(ctx, d.client, SlotDuePayload{
		SlotID:   post.ID,
		UserID:   post.UserID,
		Platform: string(post.Platform),
	}, delay)
}

// Cancel removes the queued task of a slot that was replaced. A task that already
// ran or was never enqueued is not an error.
func (d *Dispatcher) Cancel(_ context.Context, post *models.ScheduledPost) error {
	if d.inspector == nil {
		return nil
	}
	err := d.inspector.DeleteTask(SlotQueue, slotTaskID(post.ID))
	if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return nil
	}
	return err
}
