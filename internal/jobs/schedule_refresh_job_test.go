package job

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/internal/transfer"
	"github.com/stretchr/testify/assert"
)

type stubRules struct {
	ids []int64
	err error
}

func (s stubRules) Create(context.Context, *models.ScheduleRule) error { return nil }

func (s stubRules) GetByID(context.Context, string) (*models.ScheduleRule, error) {
	return nil, nil
}

func (s stubRules) ListByUserID(context.Context, int64) ([]*models.ScheduleRule, error) {
	return nil, nil
}

func (s stubRules) ListActiveUserIDs(context.Context) ([]int64, error) { return s.ids, s.err }

func (s stubRules) SetActive(context.Context, string, bool) error { return nil }

func (s stubRules) CheckByUserID(context.Context, string, int64) (bool, error) { return true, nil }

func (s stubRules) Remove(context.Context, string) error { return nil }

func (s stubRules) SetTimezone(context.Context, *sql.Tx, int64, string) error { return nil }

type recordingCalendar struct {
	mu        sync.Mutex
	committed []int64
	zones     []string
	failFor   int64
}

func (r *recordingCalendar) Generate(context.Context, int64, *transfer.ScheduleInput) ([]models.ScheduledSlot, error) {
	return nil, nil
}

func (r *recordingCalendar) Commit(_ context.Context, userID int64, timezone string) ([]*models.ScheduledPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, userID)
	r.zones = append(r.zones, timezone)
	if userID == r.failFor {
		return nil, errors.New("db unavailable")
	}
	return []*models.ScheduledPost{{ID: userID}}, nil
}

func (r *recordingCalendar) Export(context.Context, int64, *transfer.ScheduleInput) (*transfer.ScheduleExport, error) {
	return nil, nil
}

func TestRefreshSchedules_CommitsEveryActiveUser(t *testing.T) {
	cal := &recordingCalendar{failFor: 2}
	job := NewScheduleRefreshJob(stubRules{ids: []int64{1, 2, 3}}, cal)

	job.RefreshSchedules()

	sort.Slice(cal.committed, func(i, j int) bool { return cal.committed[i] < cal.committed[j] })
	assert.Equal(t, []int64{1, 2, 3}, cal.committed)
	// an empty zone keeps each rule's committed timezone
	assert.Equal(t, []string{"", "", ""}, cal.zones)
}

func TestRefreshSchedules_StopsWhenListingFails(t *testing.T) {
	cal := &recordingCalendar{}
	job := NewScheduleRefreshJob(stubRules{err: errors.New("boom")}, cal)

	job.RefreshSchedules()

	assert.Empty(t, cal.committed)
}
