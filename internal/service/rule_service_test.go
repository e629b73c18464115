package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRuleRepo struct {
	rules map[string]*models.ScheduleRule
}

func newMemoryRuleRepo(rules ...*models.ScheduleRule) *memoryRuleRepo {
	r := &memoryRuleRepo{rules: map[string]*models.ScheduleRule{}}
	for _, rule := range rules {
		r.rules[rule.ID] = rule
	}
	return r
}

func (r *memoryRuleRepo) Create(_ context.Context, rule *models.ScheduleRule) error {
	r.rules[rule.ID] = rule
	return nil
}

func (r *memoryRuleRepo) GetByID(_ context.Context, id string) (*models.ScheduleRule, error) {
	return r.rules[id], nil
}

func (r *memoryRuleRepo) ListByUserID(_ context.Context, userID int64) ([]*models.ScheduleRule, error) {
	var out []*models.ScheduleRule
	for _, rule := range r.rules {
		if rule.UserID == userID {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (r *memoryRuleRepo) ListActiveUserIDs(context.Context) ([]int64, error) { return nil, nil }

func (r *memoryRuleRepo) SetActive(_ context.Context, id string, active bool) error {
	r.rules[id].IsActive = active
	return nil
}

func (r *memoryRuleRepo) CheckByUserID(_ context.Context, id string, userID int64) (bool, error) {
	rule, ok := r.rules[id]
	return ok && rule.UserID == userID, nil
}

func (r *memoryRuleRepo) SetTimezone(_ context.Context, _ *sql.Tx, userID int64, timezone string) error {
	for _, rule := range r.rules {
		if rule.UserID == userID && rule.IsActive {
			rule.Timezone = timezone
		}
	}
	return nil
}

func (r *memoryRuleRepo) Remove(_ context.Context, id string) error {
	delete(r.rules, id)
	return nil
}

func TestRuleService_Create(t *testing.T) {
	repo := newMemoryRuleRepo()
	s := NewRuleService(repo)

	rule, err := s.Create(context.Background(), 4, &transfer.RuleCreation{
		Name:      "  lunch posts ",
		Type:      "Specific",
		Platforms: []string{"Twitter", "linkedin"},
		Schedule:  models.RuleSchedule{Times: []string{"12:15"}, Days: []int{1, 3}},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, rule.ID)
	assert.Equal(t, int64(4), rule.UserID)
	assert.Equal(t, "lunch posts", rule.Name)
	assert.Equal(t, models.RuleTypeSpecific, rule.Type)
	assert.Equal(t, []models.Platform{models.PlatformTwitter, models.PlatformLinkedin}, rule.Platforms)
	assert.True(t, rule.IsActive)
	assert.Contains(t, repo.rules, rule.ID)
}

func TestBuildRule_Validation(t *testing.T) {
	inactive := false
	daily := models.RuleSchedule{Recurrence: &models.Recurrence{Frequency: "daily"}}
	cases := map[string]*transfer.RuleCreation{
		"missing name":      {Type: "interval", Platforms: []string{"tiktok"}, Schedule: models.RuleSchedule{IntervalHours: 2}},
		"no platforms":      {Name: "x", Type: "interval", Schedule: models.RuleSchedule{IntervalHours: 2}},
		"unknown type":      {Name: "x", Type: "hourly", Platforms: []string{"tiktok"}},
		"zero interval":     {Name: "x", Type: "interval", Platforms: []string{"tiktok"}},
		"specific no times": {Name: "x", Type: "specific", Platforms: []string{"tiktok"}},
		"bad time":          {Name: "x", Type: "specific", Platforms: []string{"tiktok"}, Schedule: models.RuleSchedule{Times: []string{"25:00"}}},
		"bad day":           {Name: "x", Type: "specific", Platforms: []string{"tiktok"}, Schedule: models.RuleSchedule{Times: []string{"10:00"}, Days: []int{7}}},
		"bad frequency":     {Name: "x", Type: "recurring", Platforms: []string{"tiktok"}, Schedule: daily},
		"bad timezone":      {Name: "x", Type: "interval", Platforms: []string{"tiktok"}, Schedule: models.RuleSchedule{IntervalHours: 2}, Timezone: "Mars/Olympus"},
	}
	for name, rc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := BuildRule(rc)
			require.ErrorIs(t, err, ErrInvalidRule)
		})
	}

	_, err := BuildRule(&transfer.RuleCreation{Name: "x", Type: "optimal", Platforms: []string{"orkut"}})
	require.ErrorIs(t, err, models.ErrUnknownPlatform)

	rule, err := BuildRule(&transfer.RuleCreation{Name: "x", Type: "optimal", Platforms: []string{"youtube"}, IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, rule.IsActive)
}

func TestRuleService_OwnershipChecks(t *testing.T) {
	repo := newMemoryRuleRepo(
		&models.ScheduleRule{ID: "mine", UserID: 1, IsActive: true},
		&models.ScheduleRule{ID: "theirs", UserID: 2, IsActive: true},
	)
	s := NewRuleService(repo)
	ctx := context.Background()

	require.NoError(t, s.Toggle(ctx, 1, "mine", false))
	assert.False(t, repo.rules["mine"].IsActive)

	require.ErrorIs(t, s.Toggle(ctx, 1, "theirs", false), ErrRuleNotFound)
	require.ErrorIs(t, s.Remove(ctx, 1, "theirs"), ErrRuleNotFound)
	require.Error(t, s.Remove(ctx, 1, ""))

	require.NoError(t, s.Remove(ctx, 1, "mine"))
	assert.NotContains(t, repo.rules, "mine")
}

func TestRuleService_ListActive(t *testing.T) {
	repo := newMemoryRuleRepo(
		&models.ScheduleRule{ID: "on", UserID: 1, IsActive: true},
		&models.ScheduleRule{ID: "off", UserID: 1},
		&models.ScheduleRule{ID: "other", UserID: 2, IsActive: true},
	)

	active, err := NewRuleService(repo).ListActive(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "on", active[0].ID)
}
