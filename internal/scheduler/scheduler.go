// internal/scheduler/scheduler.go
//
// The deadline-notification scheduler. Two cadences drive it: a fine sweep on
// a short fixed interval (minute-before and time-of-day thresholds) and a
// coarse sweep once a day at a fixed local time (due-today). A startup
// catch-up runs one coarse sweep shortly after boot when the process starts
// at or past the coarse time, so a midday restart does not lose the day's
// notifications.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"taskboard/internal/models"
)

// TaskSource is the slice of the task store the scheduler reads.
type TaskSource interface {
	FindActiveWithDeadlineBetween(ctx context.Context, from, to time.Time) ([]models.Task, error)
}

// NotificationStore is the slice of the notification store the scheduler
// writes to and queries for deduplication.
type NotificationStore interface {
	Store(ctx context.Context, n *models.Notification) error
	ExistsWithin(ctx context.Context, userID, taskID int64, kind models.NotificationKind, since time.Time) (bool, error)
}

// Pusher delivers a just-created notification to an external channel
// (Telegram). Best effort: failures are logged by the implementation and
// never surface here.
type Pusher interface {
	NotifyUser(ctx context.Context, userID int64, text string)
}

type Config struct {
	// FineInterval is the fine-sweep cadence. Default 60s.
	FineInterval time.Duration
	// CoarseHour/CoarseMinute is the local time of the daily due-today sweep,
	// honored only when CoarseSet is true. Otherwise 08:00. The flag lets a
	// midnight sweep (0/0) be requested explicitly.
	CoarseHour   int
	CoarseMinute int
	CoarseSet    bool
	// Tolerance is the half-width of the minute-before window. Default 30s.
	Tolerance time.Duration
	// SuppressionWindow suppresses repeats of minute-before and time-of-day
	// notifications. Default 2m. Due-today is suppressed since local midnight.
	SuppressionWindow time.Duration
	// CatchupDelay postpones the startup catch-up sweep so dependent services
	// finish initializing first. Default 5s.
	CatchupDelay time.Duration
	// Location is the timezone all calendar arithmetic happens in.
	// Default time.Local.
	Location *time.Location
}

func (c *Config) applyDefaults() {
	if c.FineInterval <= 0 {
		c.FineInterval = time.Minute
	}
	if !c.CoarseSet {
		c.CoarseHour, c.CoarseMinute = 8, 0
	}
	if c.Tolerance <= 0 {
		c.Tolerance = 30 * time.Second
	}
	if c.SuppressionWindow <= 0 {
		c.SuppressionWindow = 2 * time.Minute
	}
	if c.CatchupDelay <= 0 {
		c.CatchupDelay = 5 * time.Second
	}
	if c.Location == nil {
		c.Location = time.Local
	}
}

type Scheduler struct {
	cfg   Config
	tasks TaskSource
	store NotificationStore
	guard *dedupGuard
	push  Pusher
	clock Clock

	cron    *cron.Cron
	catchup *time.Timer

	// одна и та же разновидность sweep не должна перекрываться сама с собой;
	// fine и coarse при этом могут идти одновременно
	fineMu   sync.Mutex
	coarseMu sync.Mutex
}

func New(cfg Config, tasks TaskSource, store NotificationStore, push Pusher, clock Clock) *Scheduler {
	cfg.applyDefaults()
	if clock == nil {
		clock = SystemClock()
	}
	return &Scheduler{
		cfg:   cfg,
		tasks: tasks,
		store: store,
		guard: &dedupGuard{notifications: store, window: cfg.SuppressionWindow, loc: cfg.Location},
		push:  push,
		clock: clock,
	}
}

// Start registers both cadences and kicks off the catch-up sweep if needed.
// The scheduler runs until Stop; sweeps themselves are not cancellable
// mid-flight.
func (s *Scheduler) Start() error {
	s.cron = cron.New(cron.WithLocation(s.cfg.Location))

	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.cfg.FineInterval), func() {
		s.runExclusive(&s.fineMu, "fine", s.RunFineSweep)
	}); err != nil {
		return fmt.Errorf("register fine sweep: %w", err)
	}
	if _, err := s.cron.AddFunc(fmt.Sprintf("%d %d * * *", s.cfg.CoarseMinute, s.cfg.CoarseHour), func() {
		s.runExclusive(&s.coarseMu, "coarse", s.RunCoarseSweep)
	}); err != nil {
		return fmt.Errorf("register coarse sweep: %w", err)
	}

	s.cron.Start()
	log.Printf("[sched][start] fine=@every %s coarse=%02d:%02d tz=%s",
		s.cfg.FineInterval, s.cfg.CoarseHour, s.cfg.CoarseMinute, s.cfg.Location)

	if s.needsCatchup(s.clock.Now()) {
		log.Printf("[sched][start] past %02d:%02d, scheduling due-today catch-up in %s",
			s.cfg.CoarseHour, s.cfg.CoarseMinute, s.cfg.CatchupDelay)
		s.catchup = time.AfterFunc(s.cfg.CatchupDelay, func() {
			s.runExclusive(&s.coarseMu, "catchup", s.RunCoarseSweep)
		})
	}
	return nil
}

// needsCatchup reports whether now is at or past today's coarse sweep time.
func (s *Scheduler) needsCatchup(now time.Time) bool {
	local := now.In(s.cfg.Location)
	y, m, d := local.Date()
	coarseAt := time.Date(y, m, d, s.cfg.CoarseHour, s.cfg.CoarseMinute, 0, 0, s.cfg.Location)
	return !local.Before(coarseAt)
}

// Stop stops scheduling new ticks. An in-flight sweep finishes on its own.
func (s *Scheduler) Stop() {
	if s.catchup != nil {
		s.catchup.Stop()
	}
	if s.cron != nil {
		s.cron.Stop()
	}
	log.Printf("[sched][stop] no further sweeps scheduled")
}

func (s *Scheduler) runExclusive(mu *sync.Mutex, name string, sweep func(ctx context.Context) error) {
	if !mu.TryLock() {
		log.Printf("[sched][%s][skip] previous sweep still running", name)
		return
	}
	defer mu.Unlock()
	if err := sweep(context.Background()); err != nil {
		// сбой стора: бросаем эту итерацию, следующий тик повторит сам
		log.Printf("[sched][%s][err] sweep aborted: %v", name, err)
	}
}

// RunFineSweep evaluates the minute-before trigger and the exact-minute
// time-of-day thresholds across every incomplete task with a deadline.
// A fetch or store error aborts the sweep; a single task's bad deadline
// time is logged and skipped.
func (s *Scheduler) RunFineSweep(ctx context.Context) error {
	now := s.clock.Now().In(s.cfg.Location)

	// minute-before: candidates whose deadline is ~60s ahead
	lower := now.Add(time.Minute - s.cfg.Tolerance)
	upper := now.Add(time.Minute + s.cfg.Tolerance)
	tasks, err := s.tasks.FindActiveWithDeadlineBetween(ctx, lower, upper)
	if err != nil {
		return fmt.Errorf("fine sweep fetch (minute-before): %w", err)
	}
	for _, t := range tasks {
		if t.Completed || t.DeadlineDate == nil {
			continue
		}
		if !minuteBeforeDue(now, *t.DeadlineDate, s.cfg.Tolerance) {
			continue
		}
		msg := fmt.Sprintf("⚠️ URGENT: %q is due in 1 minute!", t.Title)
		if err := s.emit(ctx, t, models.KindApproachingDeadline, msg, now); err != nil {
			return fmt.Errorf("fine sweep: %w", err)
		}
	}

	// time-of-day thresholds: today's tasks carrying an HH:MM deadline time
	dayStart := startOfDay(now)
	todays, err := s.tasks.FindActiveWithDeadlineBetween(ctx, dayStart, dayStart.Add(24*time.Hour-time.Nanosecond))
	if err != nil {
		return fmt.Errorf("fine sweep fetch (time-of-day): %w", err)
	}
	for _, t := range todays {
		if t.Completed || t.DeadlineDate == nil || t.DeadlineTime == nil {
			continue
		}
		if !sameCalendarDay(now, *t.DeadlineDate, s.cfg.Location) {
			continue
		}
		minutes, err := timeOfDayMinutesBefore(now, *t.DeadlineTime, s.cfg.Location)
		if err != nil {
			log.Printf("[sched][fine][skip] task=%d: %v", t.ID, err)
			continue
		}
		if !isTimeThreshold(minutes) {
			continue
		}
		msg := fmt.Sprintf("⏰ %q - due in %s (%s)", t.Title, thresholdLabel(minutes), *t.DeadlineTime)
		if err := s.emit(ctx, t, models.KindTimeThreshold(minutes), msg, now); err != nil {
			return fmt.Errorf("fine sweep: %w", err)
		}
	}
	return nil
}

// RunCoarseSweep notifies owners of every incomplete task whose deadline
// falls on the current calendar day. At most once per task per day.
func (s *Scheduler) RunCoarseSweep(ctx context.Context) error {
	now := s.clock.Now().In(s.cfg.Location)
	dayStart := startOfDay(now)
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)

	tasks, err := s.tasks.FindActiveWithDeadlineBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return fmt.Errorf("coarse sweep fetch: %w", err)
	}
	for _, t := range tasks {
		if t.Completed || t.DeadlineDate == nil {
			continue
		}
		if !sameCalendarDay(now, *t.DeadlineDate, s.cfg.Location) {
			continue
		}
		due := t.DeadlineDate.In(s.cfg.Location).Format("15:04")
		if t.DeadlineTime != nil {
			due = *t.DeadlineTime
		}
		msg := fmt.Sprintf("📅 Today: %q - due at %s", t.Title, due)
		if err := s.emit(ctx, t, models.KindDueToday, msg, now); err != nil {
			return fmt.Errorf("coarse sweep: %w", err)
		}
	}
	return nil
}

// emit runs the dedup guard for one candidate event and, if it survives,
// persists the notification for the task owner and pushes it out. A store
// failure, on the dedup read or the write, aborts the caller's sweep
// iteration; the next tick retries. Only the outbound push is best effort.
func (s *Scheduler) emit(ctx context.Context, t models.Task, kind models.NotificationKind, msg string, now time.Time) error {
	ok, err := s.guard.shouldNotify(ctx, t.OwnerID, t.ID, kind, now)
	if err != nil {
		return fmt.Errorf("dedup check task=%d kind=%s: %w", t.ID, kind, err)
	}
	if !ok {
		return nil
	}

	taskID := t.ID
	n := &models.Notification{
		UserID:    t.OwnerID,
		TaskID:    &taskID,
		Kind:      kind,
		Message:   msg,
		CreatedAt: now,
	}
	if err := s.store.Store(ctx, n); err != nil {
		return fmt.Errorf("store notification task=%d kind=%s: %w", t.ID, kind, err)
	}
	log.Printf("[sched][notify] task=%d kind=%s user=%d", t.ID, kind, t.OwnerID)

	if s.push != nil {
		s.push.NotifyUser(ctx, t.OwnerID, msg)
	}
	return nil
}
