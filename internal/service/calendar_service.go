package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/internal/repository"
	"github.com/maheshrc27/postflow/internal/transfer"
)

// SlotDispatcher hands persisted slots to the background queue and withdraws
// the ones a newer calendar replaced.
type SlotDispatcher interface {
	Dispatch(ctx context.Context, post *models.ScheduledPost) error
	Cancel(ctx context.Context, post *models.ScheduledPost) error
}

type CalendarService interface {
	Generate(ctx context.Context, userID int64, in *transfer.ScheduleInput) ([]models.ScheduledSlot, error)
	Commit(ctx context.Context, userID int64, timezone string) ([]*models.ScheduledPost, error)
	Export(ctx context.Context, userID int64, in *transfer.ScheduleInput) (*transfer.ScheduleExport, error)
}

type calendarService struct {
	db          *sql.DB
	rules       RuleService
	schedule    ScheduleService
	slots       repository.ScheduledPostRepository
	dispatcher  SlotDispatcher
	exporter    ScheduleExporter
	defaultZone string
	nowFn       func() time.Time
}

func NewCalendarService(
	db *sql.DB,
	rules RuleService,
	schedule ScheduleService,
	slots repository.ScheduledPostRepository,
	dispatcher SlotDispatcher,
	exporter ScheduleExporter,
	defaultZone string) CalendarService {
	return &calendarService{
		db:          db,
		rules:       rules,
		schedule:    schedule,
		slots:       slots,
		dispatcher:  dispatcher,
		exporter:    exporter,
		defaultZone: defaultZone,
		nowFn:       time.Now,
	}
}

func (s *calendarService) Generate(ctx context.Context, userID int64, in *transfer.ScheduleInput) ([]models.ScheduledSlot, error) {
	if in == nil {
		in = &transfer.ScheduleInput{}
	}

	rules := in.Rules
	if len(rules) == 0 {
		stored, err := s.rules.ListActive(ctx, userID)
		if err != nil {
			return nil, err
		}
		if in.Timezone != "" {
			for i := range stored {
				stored[i].Timezone = in.Timezone
			}
		}
		rules = stored
	} else {
		rules = make([]models.ScheduleRule, len(in.Rules))
		for i, r := range in.Rules {
			if err := ValidateRule(r); err != nil {
				slog.Info(err.Error())
				return nil, err
			}
			if r.ID == "" {
				r.ID = fmt.Sprintf("inline_%d", i)
			}
			r.UserID = userID
			rules[i] = r
		}
	}

	return s.schedule.GenerateSchedule(ctx, rules, s.zone(in.Timezone)), nil
}

// Commit regenerates the user's calendar from stored rules and reconciles it with
// the slots already planned. Unchanged slots keep their id and queued task, slots
// no longer produced by any rule are removed, and new slots are dispatched.
// A non-empty timezone is pinned on the user's active rules first.
func (s *calendarService) Commit(ctx context.Context, userID int64, timezone string) (posts []*models.ScheduledPost, err error) {
	if userID == 0 {
		err = errors.New("User is not valid")
		slog.Info(err.Error())
		return nil, err
	}
	if err = validateZone(timezone); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	rules, err := s.rules.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if timezone != "" {
		for i := range rules {
			rules[i].Timezone = timezone
		}
	}

	now := s.nowFn()
	slots := s.schedule.GenerateSchedule(ctx, rules, s.zone(""))

	existing, err := s.slots.ListByUserID(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("loading planned slots: %w", err)
	}
	planned := make(map[slotKey]*models.ScheduledPost, len(existing))
	for _, post := range existing {
		planned[keyOf(post.RuleID, post.Platform, post.SlotTime)] = post
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	if timezone != "" {
		if err = s.rules.SetTimezone(ctx, tx, userID, timezone); err != nil {
			return nil, err
		}
	}

	for _, slot := range slots {
		if slot.Date.Before(now) {
			continue
		}
		key := keyOf(slot.RuleID, slot.Platform, slot.Date)
		if post, ok := planned[key]; ok {
			delete(planned, key)
			posts = append(posts, post)
			continue
		}

		post := &models.ScheduledPost{
			UserID:   userID,
			RuleID:   slot.RuleID,
			Platform: slot.Platform,
			SlotTime: slot.Date.UTC(),
			Status:   models.SlotStatusPending,
		}
		post.ID, err = s.slots.Create(ctx, tx, post)
		if err != nil {
			return nil, fmt.Errorf("saving slot: %w", err)
		}
		posts = append(posts, post)
	}

	var stale []*models.ScheduledPost
	for _, post := range planned {
		if post.Status != models.SlotStatusDue {
			stale = append(stale, post)
		}
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].ID < stale[j].ID })

	if len(stale) > 0 {
		ids := make([]int64, len(stale))
		for i, post := range stale {
			ids[i] = post.ID
		}
		if _, err = s.slots.DeleteByIDs(ctx, tx, ids); err != nil {
			return nil, fmt.Errorf("removing replaced slots: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.cancel(ctx, stale)
	s.dispatch(ctx, posts)
	return posts, nil
}

type slotKey struct {
	ruleID   string
	platform models.Platform
	at       int64
}

func keyOf(ruleID string, p models.Platform, at time.Time) slotKey {
	return slotKey{ruleID: ruleID, platform: p, at: at.Unix()}
}

// dispatch enqueues every slot still pending. Slots queued by an earlier commit
// are left alone.
func (s *calendarService) dispatch(ctx context.Context, posts []*models.ScheduledPost) {
	if s.dispatcher == nil {
		return
	}
	for _, post := range posts {
		if post.Status != models.SlotStatusPending {
			continue
		}
		if err := s.dispatcher.Dispatch(ctx, post); err != nil {
			slog.Warn("slot stays pending, dispatch failed", "slot_id", post.ID, "error", err)
			continue
		}
		if err := s.slots.UpdateStatus(ctx, models.SlotStatusEnqueued, post.ID); err != nil {
			continue
		}
		post.Status = models.SlotStatusEnqueued
	}
}

func (s *calendarService) cancel(ctx context.Context, stale []*models.ScheduledPost) {
	if s.dispatcher == nil {
		return
	}
	for _, post := range stale {
		if post.Status != models.SlotStatusEnqueued {
			continue
		}
		if err := s.dispatcher.Cancel(ctx, post); err != nil {
			slog.Warn("replaced slot task was not removed", "slot_id", post.ID, "error", err)
		}
	}
}

func (s *calendarService) Export(ctx context.Context, userID int64, in *transfer.ScheduleInput) (*transfer.ScheduleExport, error) {
	if s.exporter == nil {
		return nil, errors.New("schedule export is not configured")
	}
	if in == nil {
		in = &transfer.ScheduleInput{}
	}

	slots, err := s.Generate(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	return s.exporter.Upload(ctx, transfer.ScheduleSnapshot{
		UserID:      userID,
		Timezone:    s.zone(in.Timezone),
		GeneratedAt: s.nowFn().UTC(),
		Slots:       slots,
	})
}

func (s *calendarService) zone(timezone string) string {
	if timezone != "" {
		return timezone
	}
	if s.defaultZone != "" {
		return s.defaultZone
	}
	return "UTC"
}
