package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/maheshrc27/postflow/internal/repository"
	"github.com/maheshrc27/postflow/internal/service"
)

type ScheduleRefreshJob struct {
	rr       repository.ScheduleRuleRepository
	calendar service.CalendarService
	timeout  time.Duration
}

func NewScheduleRefreshJob(rr repository.ScheduleRuleRepository, calendar service.CalendarService) *ScheduleRefreshJob {
	return &ScheduleRefreshJob{
		rr:       rr,
		calendar: calendar,
		timeout:  5 * time.Minute,
	}
}

// RefreshSchedules recommits the calendar of every user that has an active rule.
// Rules keep the timezone they were last committed in.
func (c *ScheduleRefreshJob) RefreshSchedules() {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	userIDs, err := c.rr.ListActiveUserIDs(ctx)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, userID := range userIDs {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(userID int64) {
			defer wg.Done()
			defer func() { <-semaphore }()

			posts, err := c.calendar.Commit(ctx, userID, "")
			if err != nil {
				slog.Info("Unable to refresh schedule", "user_id", userID, "error", err)
				return
			}
			slog.Info("schedule refreshed", "user_id", userID, "slots", len(posts))
		}(userID)
	}

	wg.Wait()
}
