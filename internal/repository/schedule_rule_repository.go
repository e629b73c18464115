package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/maheshrc27/postflow/internal/models"
)

type ScheduleRuleRepository interface {
	Create(ctx context.Context, rule *models.ScheduleRule) error
	GetByID(ctx context.Context, id string) (*models.ScheduleRule, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.ScheduleRule, error)
	ListActiveUserIDs(ctx context.Context) ([]int64, error)
	SetActive(ctx context.Context, id string, active bool) error
	CheckByUserID(ctx context.Context, id string, userID int64) (bool, error)
	Remove(ctx context.Context, id string) error
	SetTimezone(ctx context.Context, tx *sql.Tx, userID int64, timezone string) error
}

type scheduleRuleRepository struct {
	db *sql.DB
}

func NewScheduleRuleRepository(db *sql.DB) ScheduleRuleRepository {
	return &scheduleRuleRepository{db: db}
}

const scheduleRuleColumns = `id, user_id, name, rule_type, platforms, is_active, schedule, timezone, created_at, updated_at`

func (r *scheduleRuleRepository) Create(ctx context.Context, rule *models.ScheduleRule) error {
	query := `
		INSERT INTO schedule_rules (id, user_id, name, rule_type, platforms, is_active, schedule, timezone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	schedule, err := json.Marshal(rule.Schedule)
	if err != nil {
		return fmt.Errorf("encoding rule schedule: %w", err)
	}

	err = r.db.QueryRowContext(ctx, query, rule.ID, rule.UserID, rule.Name, string(rule.Type),
		pq.Array(platformStrings(rule.Platforms)), rule.IsActive, schedule, rule.Timezone).Scan(&rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduleRuleRepository) GetByID(ctx context.Context, id string) (*models.ScheduleRule, error) {
	query := `SELECT ` + scheduleRuleColumns + ` FROM schedule_rules WHERE id = $1`
	rule, err := scanScheduleRule(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return rule, nil
}

func (r *scheduleRuleRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.ScheduleRule, error) {
	query := `SELECT ` + scheduleRuleColumns + ` FROM schedule_rules WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var rules []*models.ScheduleRule
	for rows.Next() {
		rule, err := scanScheduleRule(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return rules, nil
}

func (r *scheduleRuleRepository) ListActiveUserIDs(ctx context.Context) ([]int64, error) {
	query := `SELECT DISTINCT user_id FROM schedule_rules WHERE is_active = TRUE ORDER BY user_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *scheduleRuleRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := `
		UPDATE schedule_rules
		SET is_active = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, active, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduleRuleRepository) CheckByUserID(ctx context.Context, id string, userID int64) (bool, error) {
	query := "SELECT 1 FROM schedule_rules WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *scheduleRuleRepository) Remove(ctx context.Context, id string) error {
	query := `DELETE FROM schedule_rules WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// SetTimezone pins the zone every active rule of the user expands in.
func (r *scheduleRuleRepository) SetTimezone(ctx context.Context, tx *sql.Tx, userID int64, timezone string) error {
	query := `
		UPDATE schedule_rules
		SET timezone = $1,
			updated_at = $2
		WHERE user_id = $3 AND is_active = TRUE
	`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, timezone, time.Now(), userID)
	} else {
		_, err = r.db.ExecContext(ctx, query, timezone, time.Now(), userID)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScheduleRule(row rowScanner) (*models.ScheduleRule, error) {
	var rule models.ScheduleRule
	var platforms []string
	var schedule []byte

	err := row.Scan(&rule.ID, &rule.UserID, &rule.Name, &rule.Type, pq.Array(&platforms), &rule.IsActive,
		&schedule, &rule.Timezone, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return nil, err
	}

	for _, p := range platforms {
		rule.Platforms = append(rule.Platforms, models.Platform(p))
	}
	if len(schedule) > 0 {
		if err := json.Unmarshal(schedule, &rule.Schedule); err != nil {
			return nil, fmt.Errorf("decoding schedule of rule %s: %w", rule.ID, err)
		}
	}
	return &rule, nil
}

func platformStrings(platforms []models.Platform) []string {
	out := make([]string, len(platforms))
	for i, p := range platforms {
		out[i] = string(p)
	}
	return out
}
