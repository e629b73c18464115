package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/internal/repository"
	"github.com/maheshrc27/postflow/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const maxRulesPerUser = 20

var (
	ErrInvalidRule  = errors.New("invalid schedule rule")
	ErrRuleNotFound = errors.New("rule doesn't exist")
)

type RuleService interface {
	Create(ctx context.Context, userID int64, rc *transfer.RuleCreation) (*models.ScheduleRule, error)
	List(ctx context.Context, userID int64) ([]*models.ScheduleRule, error)
	ListActive(ctx context.Context, userID int64) ([]models.ScheduleRule, error)
	Toggle(ctx context.Context, userID int64, ruleID string, active bool) error
	Remove(ctx context.Context, userID int64, ruleID string) error
	SetTimezone(ctx context.Context, tx *sql.Tx, userID int64, timezone string) error
}

type ruleService struct {
	rr repository.ScheduleRuleRepository
}

func NewRuleService(rr repository.ScheduleRuleRepository) RuleService {
	return &ruleService{rr: rr}
}

func (s *ruleService) Create(ctx context.Context, userID int64, rc *transfer.RuleCreation) (*models.ScheduleRule, error) {
	if userID == 0 {
		err := errors.New("User is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	rules, err := s.rr.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(rules) >= maxRulesPerUser {
		err = fmt.Errorf("only %d schedule rules can be created", maxRulesPerUser)
		slog.Info(err.Error())
		return nil, err
	}

	rule, err := BuildRule(rc)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("generating rule id: %w", err)
	}
	rule.ID = id
	rule.UserID = userID

	if err := s.rr.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("saving schedule rule: %w", err)
	}
	return rule, nil
}

func (s *ruleService) List(ctx context.Context, userID int64) ([]*models.ScheduleRule, error) {
	rules, err := s.rr.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing schedule rules: %w", err)
	}
	return rules, nil
}

func (s *ruleService) ListActive(ctx context.Context, userID int64) ([]models.ScheduleRule, error) {
	rules, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	active := make([]models.ScheduleRule, 0, len(rules))
	for _, r := range rules {
		if r != nil && r.IsActive {
			active = append(active, *r)
		}
	}
	return active, nil
}

func (s *ruleService) Toggle(ctx context.Context, userID int64, ruleID string, active bool) error {
	if err := s.checkOwner(ctx, userID, ruleID); err != nil {
		return err
	}
	return s.rr.SetActive(ctx, ruleID, active)
}

func (s *ruleService) Remove(ctx context.Context, userID int64, ruleID string) error {
	if err := s.checkOwner(ctx, userID, ruleID); err != nil {
		return err
	}
	return s.rr.Remove(ctx, ruleID)
}

func (s *ruleService) SetTimezone(ctx context.Context, tx *sql.Tx, userID int64, timezone string) error {
	if err := validateZone(timezone); err != nil {
		return err
	}
	if err := s.rr.SetTimezone(ctx, tx, userID, timezone); err != nil {
		return fmt.Errorf("saving schedule timezone: %w", err)
	}
	return nil
}

func (s *ruleService) checkOwner(ctx context.Context, userID int64, ruleID string) error {
	if userID == 0 {
		err := errors.New("User is not valid")
		slog.Info(err.Error())
		return err
	}
	if ruleID == "" {
		err := errors.New("rule id is not valid")
		slog.Info(err.Error())
		return err
	}

	owned, err := s.rr.CheckByUserID(ctx, ruleID, userID)
	if err != nil {
		return err
	}
	if !owned {
		slog.Info(ErrRuleNotFound.Error())
		return ErrRuleNotFound
	}
	return nil
}

// BuildRule validates a creation request and turns it into an unsaved rule.
func BuildRule(rc *transfer.RuleCreation) (*models.ScheduleRule, error) {
	if rc == nil {
		return nil, fmt.Errorf("%w: empty request", ErrInvalidRule)
	}

	name := strings.TrimSpace(rc.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRule)
	}

	platforms := make([]models.Platform, 0, len(rc.Platforms))
	for _, raw := range rc.Platforms {
		p, err := models.ParsePlatform(raw)
		if err != nil {
			return nil, err
		}
		platforms = append(platforms, p)
	}
	if len(platforms) == 0 {
		return nil, fmt.Errorf("%w: at least one platform is required", ErrInvalidRule)
	}

	rule := &models.ScheduleRule{
		Name:      name,
		Type:      models.RuleType(strings.ToLower(strings.TrimSpace(rc.Type))),
		Platforms: platforms,
		IsActive:  rc.IsActive == nil || *rc.IsActive,
		Schedule:  rc.Schedule,
		Timezone:  strings.TrimSpace(rc.Timezone),
	}
	if err := ValidateRule(*rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func ValidateRule(rule models.ScheduleRule) error {
	if err := validateZone(rule.Timezone); err != nil {
		return err
	}
	for _, t := range rule.Schedule.Times {
		if _, err := parseClock(t); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRule, err)
		}
	}
	for _, d := range rule.Schedule.Days {
		if d < 0 || d > 6 {
			return fmt.Errorf("%w: day %d is out of range 0-6", ErrInvalidRule, d)
		}
	}

	switch rule.Type {
	case models.RuleTypeOptimal:
		if rule.Schedule.PostsPerWeek < 0 {
			return fmt.Errorf("%w: posts_per_week must not be negative", ErrInvalidRule)
		}
	case models.RuleTypeSpecific:
		if len(rule.Schedule.Times) == 0 {
			return fmt.Errorf("%w: specific rules need at least one time", ErrInvalidRule)
		}
	case models.RuleTypeInterval:
		if rule.Schedule.IntervalHours <= 0 {
			return fmt.Errorf("%w: interval_hours must be positive", ErrInvalidRule)
		}
	case models.RuleTypeRecurring:
		rec := rule.Schedule.Recurrence
		if rec == nil {
			return nil
		}
		if rec.Frequency != models.RecurrenceWeekly && rec.Frequency != models.RecurrenceMonthly {
			return fmt.Errorf("%w: unknown recurrence frequency %q", ErrInvalidRule, rec.Frequency)
		}
		if rec.Every < 0 {
			return fmt.Errorf("%w: recurrence every must not be negative", ErrInvalidRule)
		}
	default:
		return fmt.Errorf("%w: unknown rule type %q", ErrInvalidRule, rule.Type)
	}
	return nil
}

func validateZone(timezone string) error {
	if timezone == "" {
		return nil
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalidRule, timezone)
	}
	return nil
}
