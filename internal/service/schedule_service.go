package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/maheshrc27/postflow/internal/metrics"
	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/internal/repository"
)

const (
	scheduleHorizonDays = 30
	intervalStartHour   = 9
	intervalEndHour     = 21
	historyLookback     = 90 * 24 * time.Hour
)

type ScheduleService interface {
	GenerateSchedule(ctx context.Context, rules []models.ScheduleRule, timezone string) []models.ScheduledSlot
}

type scheduleService struct {
	optimizer OptimizerService
	history   repository.HistoricalPostRepository
	metrics   *metrics.Collector
	nowFn     func() time.Time
}

// NewScheduleService builds the rule expander. history may be nil, in which case
// optimal rules rank purely from the platform tables.
func NewScheduleService(optimizer OptimizerService, history repository.HistoricalPostRepository, mc *metrics.Collector) ScheduleService {
	return newScheduleService(optimizer, history, mc, time.Now)
}

func newScheduleService(optimizer OptimizerService, history repository.HistoricalPostRepository, mc *metrics.Collector, nowFn func() time.Time) *scheduleService {
	return &scheduleService{
		optimizer: optimizer,
		history:   history,
		metrics:   mc,
		nowFn:     nowFn,
	}
}

// GenerateSchedule expands every active rule in its own timezone, falling back
// to timezone for rules that carry none.
func (s *scheduleService) GenerateSchedule(ctx context.Context, rules []models.ScheduleRule, timezone string) []models.ScheduledSlot {
	defaultLoc := resolveLocation(timezone)
	clock := s.nowFn()

	slots := []models.ScheduledSlot{}
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		loc := defaultLoc
		if rule.Timezone != "" {
			loc = resolveLocation(rule.Timezone)
		}
		now := clock.In(loc)
		platforms := rulePlatforms(rule)

		var expanded []models.ScheduledSlot
		switch rule.Type {
		case models.RuleTypeOptimal:
			expanded = s.expandOptimal(ctx, rule, platforms, now)
		case models.RuleTypeSpecific:
			expanded = expandSpecific(rule, platforms, now)
		case models.RuleTypeInterval:
			expanded = expandInterval(rule, platforms, now)
		case models.RuleTypeRecurring:
			expanded = expandRecurring(rule, platforms, now)
		default:
			slog.Warn("skipping rule with unknown type", "rule_id", rule.ID, "type", rule.Type)
		}

		s.metrics.SlotsGenerated(string(rule.Type), len(expanded))
		slots = append(slots, expanded...)
	}

	sort.SliceStable(slots, func(i, j int) bool {
		if !slots[i].Date.Equal(slots[j].Date) {
			return slots[i].Date.Before(slots[j].Date)
		}
		if slots[i].Platform != slots[j].Platform {
			return slots[i].Platform < slots[j].Platform
		}
		return slots[i].RuleID < slots[j].RuleID
	})
	return slots
}

func (s *scheduleService) expandOptimal(ctx context.Context, rule models.ScheduleRule, platforms []models.Platform, now time.Time) []models.ScheduledSlot {
	count := rule.Schedule.PostsPerWeek
	if count <= 0 {
		count = defaultWindowCount
	}

	var out []models.ScheduledSlot
	for _, p := range platforms {
		windows, err := s.optimizer.OptimalWindows(ctx, p, s.loadHistory(ctx, rule.UserID, p, now), count, now)
		if err != nil {
			slog.Warn("optimal rule expansion failed", "rule_id", rule.ID, "platform", p, "error", err)
			continue
		}
		for _, w := range windows {
			out = append(out, models.ScheduledSlot{Date: w.StartTime.In(now.Location()), Platform: p, RuleID: rule.ID})
		}
	}
	return out
}

func (s *scheduleService) loadHistory(ctx context.Context, userID int64, p models.Platform, now time.Time) []models.HistoricalPost {
	if s.history == nil || userID == 0 {
		return nil
	}
	posts, err := s.history.ListByPlatform(ctx, userID, p, now.Add(-historyLookback))
	if err != nil {
		slog.Warn("loading history failed, ranking from platform tables", "user_id", userID, "platform", p, "error", err)
		return nil
	}
	return derefPosts(posts)
}

func expandSpecific(rule models.ScheduleRule, platforms []models.Platform, now time.Time) []models.ScheduledSlot {
	clocks := parseClockTimes(rule.ID, rule.Schedule.Times)

	var out []models.ScheduledSlot
	for d := 0; d < scheduleHorizonDays; d++ {
		day := time.Date(now.Year(), now.Month(), now.Day()+d, 0, 0, 0, 0, now.Location())
		if len(rule.Schedule.Days) > 0 && !slices.Contains(rule.Schedule.Days, int(day.Weekday())) {
			continue
		}
		for _, c := range clocks {
			at := c.on(day)
			for _, p := range platforms {
				out = append(out, models.ScheduledSlot{Date: at, Platform: p, RuleID: rule.ID})
			}
		}
	}
	return out
}

func expandInterval(rule models.ScheduleRule, platforms []models.Platform, now time.Time) []models.ScheduledSlot {
	step := rule.Schedule.IntervalHours
	if step <= 0 {
		slog.Warn("skipping interval rule without a positive interval", "rule_id", rule.ID, "interval_hours", step)
		return nil
	}

	var out []models.ScheduledSlot
	for hour := intervalStartHour; hour <= intervalEndHour; hour += step {
		at := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
		for _, p := range platforms {
			out = append(out, models.ScheduledSlot{Date: at, Platform: p, RuleID: rule.ID})
		}
	}
	return out
}

// expandRecurring emits weekly or monthly occurrences of the rule's anchor within the horizon.
// The anchor defaults to the rule's creation time, then to now.
func expandRecurring(rule models.ScheduleRule, platforms []models.Platform, now time.Time) []models.ScheduledSlot {
	rec := models.Recurrence{Frequency: models.RecurrenceWeekly, Every: 1}
	if rule.Schedule.Recurrence != nil {
		rec = *rule.Schedule.Recurrence
	}
	if rec.Every <= 0 {
		rec.Every = 1
	}

	anchor := rec.Anchor
	if anchor.IsZero() {
		anchor = rule.CreatedAt
	}
	if anchor.IsZero() {
		anchor = now
	}
	anchor = anchor.In(now.Location())
	anchorDay := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, now.Location())

	clocks := parseClockTimes(rule.ID, rule.Schedule.Times)
	if len(rule.Schedule.Times) == 0 {
		clocks = []clockTime{{hour: anchor.Hour(), minute: anchor.Minute()}}
	}

	var occurrence func(k int) time.Time
	var first int
	switch rec.Frequency {
	case models.RecurrenceMonthly:
		occurrence = func(k int) time.Time { return addMonthsClamped(anchorDay, k*rec.Every) }
		first = monthsBetween(anchorDay, now)/rec.Every - 1
	case models.RecurrenceWeekly, "":
		occurrence = func(k int) time.Time { return anchorDay.AddDate(0, 0, 7*k*rec.Every) }
		first = int(now.Sub(anchorDay).Hours()/24)/(7*rec.Every) - 1
	default:
		slog.Warn("skipping recurring rule with unknown frequency", "rule_id", rule.ID, "frequency", rec.Frequency)
		return nil
	}
	if first < 0 {
		first = 0
	}

	end := now.AddDate(0, 0, scheduleHorizonDays)
	var out []models.ScheduledSlot
	for k := first; ; k++ {
		day := occurrence(k)
		if !day.Before(end) {
			break
		}
		for _, c := range clocks {
			at := c.on(day)
			if at.Before(now) || !at.Before(end) {
				continue
			}
			for _, p := range platforms {
				out = append(out, models.ScheduledSlot{Date: at, Platform: p, RuleID: rule.ID})
			}
		}
	}
	return out
}

type clockTime struct {
	hour   int
	minute int
}

func (c clockTime) on(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.hour, c.minute, 0, 0, day.Location())
}

func parseClock(value string) (clockTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return clockTime{}, fmt.Errorf("invalid time %q: %w", value, err)
	}
	return clockTime{hour: t.Hour(), minute: t.Minute()}, nil
}

func parseClockTimes(ruleID string, values []string) []clockTime {
	out := make([]clockTime, 0, len(values))
	for _, v := range values {
		c, err := parseClock(v)
		if err != nil {
			slog.Warn("skipping malformed rule time", "rule_id", ruleID, "error", err)
			continue
		}
		out = append(out, c)
	}
	return out
}

func rulePlatforms(rule models.ScheduleRule) []models.Platform {
	out := make([]models.Platform, 0, len(rule.Platforms))
	for _, p := range rule.Platforms {
		if !p.Valid() {
			slog.Warn("skipping unknown platform in rule", "rule_id", rule.ID, "platform", p)
			continue
		}
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

func resolveLocation(timezone string) *time.Location {
	if timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		slog.Warn("unknown timezone, using UTC", "timezone", timezone, "error", err)
		return time.UTC
	}
	return loc
}

// addMonthsClamped keeps the day of month, clamped to the target month's last day.
func addMonthsClamped(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1, t.Hour(), t.Minute(), 0, 0, t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	return time.Date(first.Year(), first.Month(), min(t.Day(), lastDay), t.Hour(), t.Minute(), 0, 0, t.Location())
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}
