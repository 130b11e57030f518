// Package services hosts the scheduling façade used by every caller. All
// mutations go through ScheduleService so validation and conflict checks
// are re-run on each write.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	calendarApp "github.com/felixgeelhaar/dayblock/internal/calendar/application"
	"github.com/felixgeelhaar/dayblock/internal/notifications"
	progressApp "github.com/felixgeelhaar/dayblock/internal/progress/application"
	progressDomain "github.com/felixgeelhaar/dayblock/internal/progress/domain"
	"github.com/felixgeelhaar/dayblock/internal/scheduling/domain"
	sharedApplication "github.com/felixgeelhaar/dayblock/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/dayblock/internal/shared/domain"
	"github.com/felixgeelhaar/dayblock/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

var ErrBlockNotFound = errors.New("time block not found")

// ScheduleService orchestrates block mutations: validate, conflict-check,
// persist, then best-effort calendar sync, reminder rescheduling and
// progress recomputation. Validation and conflict errors block the
// operation entirely; external-calendar failures never do.
type ScheduleService struct {
	blockRepo    domain.BlockRepository
	progressRepo progressDomain.ProgressRepository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
	coordinator  *calendarApp.SyncCoordinator
	rescheduler  notifications.Rescheduler
	aggregator   *progressApp.Aggregator
	logger       *slog.Logger
	now          func() time.Time
}

// NewScheduleService creates the scheduling façade.
func NewScheduleService(
	blockRepo domain.BlockRepository,
	progressRepo progressDomain.ProgressRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	coordinator *calendarApp.SyncCoordinator,
	rescheduler notifications.Rescheduler,
	aggregator *progressApp.Aggregator,
	logger *slog.Logger,
) *ScheduleService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleService{
		blockRepo:    blockRepo,
		progressRepo: progressRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
		coordinator:  coordinator,
		rescheduler:  rescheduler,
		aggregator:   aggregator,
		logger:       logger,
		now:          time.Now,
	}
}

// WithClock overrides the service clock. Intended for tests.
func (s *ScheduleService) WithClock(now func() time.Time) *ScheduleService {
	s.now = now
	return s
}

// AddBlockInput describes a proposed block.
type AddBlockInput struct {
	Title     string
	StartTime time.Time
	EndTime   time.Time
	Notes     string
	Category  string
	Icon      string

	LinkToCalendar bool
	CalendarID     string
}

// AddBlock validates and conflict-checks the proposal, persists the block,
// then mirrors it into the external calendar when requested.
func (s *ScheduleService) AddBlock(ctx context.Context, input AddBlockInput) (*domain.TimeBlock, error) {
	block, err := domain.NewTimeBlock(input.Title, input.StartTime, input.EndTime, input.Notes, input.Category, input.Icon)
	if err != nil {
		return nil, err
	}

	existing, err := s.blockRepo.FindByDate(ctx, input.StartTime)
	if err != nil {
		return nil, fmt.Errorf("load day blocks: %w", err)
	}
	if conflicts := domain.FindConflicts(input.StartTime, input.EndTime, existing, uuid.Nil); len(conflicts) > 0 {
		return nil, &domain.ConflictError{Conflicts: conflicts}
	}

	if err := s.persist(ctx, block); err != nil {
		return nil, err
	}

	if input.LinkToCalendar {
		s.coordinator.LinkOnCreate(ctx, block, input.CalendarID)
		s.stageEvents(ctx, block.DomainEvents())
		block.ClearDomainEvents()
	}

	s.refreshDay(ctx, block.Day())
	return block, nil
}

// UpdateBlockInput describes an in-place block edit. The edit must stay on
// the block's original calendar day; moving days is delete-and-recreate.
type UpdateBlockInput struct {
	BlockID   uuid.UUID
	Title     string
	StartTime time.Time
	EndTime   time.Time
	Notes     string
	Category  string
	Icon      string

	LinkToCalendar bool
	CalendarID     string
}

// UpdateBlock re-validates, re-runs conflict detection against the rest of
// the day, persists, and reconciles calendar linkage.
func (s *ScheduleService) UpdateBlock(ctx context.Context, input UpdateBlockInput) error {
	block, err := s.findBlock(ctx, input.BlockID)
	if err != nil {
		return err
	}

	existing, err := s.blockRepo.FindByDate(ctx, block.Day())
	if err != nil {
		return fmt.Errorf("load day blocks: %w", err)
	}
	if conflicts := domain.FindConflicts(input.StartTime, input.EndTime, existing, block.ID()); len(conflicts) > 0 {
		return &domain.ConflictError{Conflicts: conflicts}
	}

	if !block.StartTime().Equal(input.StartTime) || !block.EndTime().Equal(input.EndTime) {
		if err := block.Reschedule(input.StartTime, input.EndTime); err != nil {
			return err
		}
	}
	if err := block.UpdateDetails(input.Title, input.Notes, input.Category, input.Icon); err != nil {
		return err
	}

	if err := s.persist(ctx, block); err != nil {
		return err
	}

	s.coordinator.SyncOnUpdate(ctx, block, input.LinkToCalendar, input.CalendarID)
	s.stageEvents(ctx, block.DomainEvents())
	block.ClearDomainEvents()

	s.refreshDay(ctx, block.Day())
	return nil
}

// DeleteBlock releases any calendar linkage, then removes the block.
func (s *ScheduleService) DeleteBlock(ctx context.Context, blockID uuid.UUID) error {
	block, err := s.findBlock(ctx, blockID)
	if err != nil {
		return err
	}

	s.coordinator.UnlinkOnDelete(ctx, block)

	err = sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		if err := s.blockRepo.Delete(txCtx, block.ID()); err != nil {
			return err
		}
		return s.stageEventsTx(txCtx, []sharedDomain.DomainEvent{domain.NewBlockDeleted(block)})
	})
	if err != nil {
		return fmt.Errorf("delete block: %w", err)
	}

	s.refreshDay(ctx, block.Day())
	return nil
}

// DeleteAllBlocks clears an entire day, releasing calendar linkage first.
func (s *ScheduleService) DeleteAllBlocks(ctx context.Context, date time.Time) error {
	blocks, err := s.blockRepo.FindByDate(ctx, date)
	if err != nil {
		return fmt.Errorf("load day blocks: %w", err)
	}

	for _, block := range blocks {
		s.coordinator.UnlinkOnDelete(ctx, block)
	}

	err = sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		if err := s.blockRepo.DeleteByDate(txCtx, date); err != nil {
			return err
		}
		events := make([]sharedDomain.DomainEvent, 0, len(blocks))
		for _, block := range blocks {
			events = append(events, domain.NewBlockDeleted(block))
		}
		return s.stageEventsTx(txCtx, events)
	})
	if err != nil {
		return fmt.Errorf("delete day blocks: %w", err)
	}

	s.refreshDay(ctx, domain.DayOf(date))
	return nil
}

// ResetStatuses performs the day-wide reset: every block returns to
// NotStarted. This is the only path out of Completed and Skipped.
func (s *ScheduleService) ResetStatuses(ctx context.Context, date time.Time) error {
	blocks, err := s.blockRepo.FindByDate(ctx, date)
	if err != nil {
		return fmt.Errorf("load day blocks: %w", err)
	}

	reset := 0
	err = sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		for _, block := range blocks {
			if block.Status() == domain.StatusNotStarted {
				continue
			}
			block.ResetForDay()
			reset++
			if err := s.blockRepo.Save(txCtx, block); err != nil {
				return err
			}
			if err := s.stageEventsTx(txCtx, block.DomainEvents()); err != nil {
				return err
			}
			block.ClearDomainEvents()
		}
		if reset == 0 {
			return nil
		}
		return s.stageEventsTx(txCtx, []sharedDomain.DomainEvent{domain.NewDayReset(domain.DayOf(date), reset)})
	})
	if err != nil {
		return fmt.Errorf("reset day: %w", err)
	}

	s.refreshDay(ctx, domain.DayOf(date))
	return nil
}

// TransitionStatus moves a block through its state machine using the
// current wall clock.
func (s *ScheduleService) TransitionStatus(ctx context.Context, blockID uuid.UUID, target domain.BlockStatus) error {
	block, err := s.findBlock(ctx, blockID)
	if err != nil {
		return err
	}

	if err := block.Transition(target, s.now()); err != nil {
		return err
	}

	if err := s.persist(ctx, block); err != nil {
		return err
	}

	s.refreshDay(ctx, block.Day())
	return nil
}

// StartBlockEarly is the operator override for starting a block before its
// interval begins.
func (s *ScheduleService) StartBlockEarly(ctx context.Context, blockID uuid.UUID) error {
	block, err := s.findBlock(ctx, blockID)
	if err != nil {
		return err
	}

	if err := block.StartEarly(); err != nil {
		return err
	}

	if err := s.persist(ctx, block); err != nil {
		return err
	}

	s.refreshDay(ctx, block.Day())
	return nil
}

// Conflicts returns every existing block overlapping the candidate interval.
func (s *ScheduleService) Conflicts(ctx context.Context, start, end time.Time, excludeID uuid.UUID) ([]*domain.TimeBlock, error) {
	blocks, err := s.blockRepo.FindByDate(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("load day blocks: %w", err)
	}
	return domain.FindConflicts(start, end, blocks, excludeID), nil
}

// BlocksForDate returns the date's blocks ordered by start time.
func (s *ScheduleService) BlocksForDate(ctx context.Context, date time.Time) ([]*domain.TimeBlock, error) {
	return s.blockRepo.FindByDate(ctx, date)
}

// Block returns a single block by ID or ErrBlockNotFound.
func (s *ScheduleService) Block(ctx context.Context, blockID uuid.UUID) (*domain.TimeBlock, error) {
	return s.findBlock(ctx, blockID)
}

// DailyProgress recomputes and returns the date's progress record.
func (s *ScheduleService) DailyProgress(ctx context.Context, date time.Time) (*progressDomain.DailyProgress, error) {
	blocks, err := s.blockRepo.FindByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load day blocks: %w", err)
	}
	return s.aggregator.Aggregate(ctx, date, blocks)
}

// WeeklyStats recomputes each day of the week containing date, then rolls
// the days into weekly statistics.
func (s *ScheduleService) WeeklyStats(ctx context.Context, date time.Time) (*progressDomain.WeeklyStats, error) {
	weekStart := progressDomain.StartOfWeek(date)
	weekEnd := weekStart.AddDate(0, 0, 6)

	blocks, err := s.blockRepo.FindByDateRange(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("load week blocks: %w", err)
	}

	byDay := make(map[string][]*domain.TimeBlock)
	for _, b := range blocks {
		key := b.Day().Format("2006-01-02")
		byDay[key] = append(byDay[key], b)
	}
	for i := 0; i < 7; i++ {
		day := weekStart.AddDate(0, 0, i)
		dayBlocks := byDay[day.Format("2006-01-02")]
		if len(dayBlocks) == 0 {
			continue
		}
		if _, err := s.aggregator.Aggregate(ctx, day, dayBlocks); err != nil {
			return nil, err
		}
	}

	return s.aggregator.AggregateWeek(ctx, date)
}

// RateDay records the user's 1-5 rating and notes on a day's progress.
// Rating and notes are the only progress fields a user sets directly.
func (s *ScheduleService) RateDay(ctx context.Context, date time.Time, rating int, notes string) error {
	progress, err := s.DailyProgress(ctx, date)
	if err != nil {
		return err
	}

	if rating > 0 {
		if err := progress.SetRating(rating); err != nil {
			return err
		}
	}
	if notes != "" {
		progress.SetNotes(notes)
	}

	if err := s.progressRepo.Save(ctx, progress); err != nil {
		return fmt.Errorf("save daily progress: %w", err)
	}
	return nil
}

// MarkDayViewed flags the day's summary as seen.
func (s *ScheduleService) MarkDayViewed(ctx context.Context, date time.Time) error {
	progress, err := s.DailyProgress(ctx, date)
	if err != nil {
		return err
	}
	progress.MarkViewed()
	if err := s.progressRepo.Save(ctx, progress); err != nil {
		return fmt.Errorf("save daily progress: %w", err)
	}
	return nil
}

// Reconcile runs the calendar drift-correction sweep. Linkage changes do
// not touch progress: a reconciled block keeps its status and counts.
func (s *ScheduleService) Reconcile(ctx context.Context) (*calendarApp.ReconcileReport, error) {
	return s.coordinator.Reconcile(ctx)
}

// findBlock loads a block or reports ErrBlockNotFound.
func (s *ScheduleService) findBlock(ctx context.Context, blockID uuid.UUID) (*domain.TimeBlock, error) {
	block, err := s.blockRepo.FindByID(ctx, blockID)
	if err != nil {
		return nil, fmt.Errorf("load block: %w", err)
	}
	if block == nil {
		return nil, ErrBlockNotFound
	}
	return block, nil
}

// persist saves the block and stages its domain events in one transaction.
func (s *ScheduleService) persist(ctx context.Context, block *domain.TimeBlock) error {
	err := sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		if err := s.blockRepo.Save(txCtx, block); err != nil {
			return err
		}
		if err := s.stageEventsTx(txCtx, block.DomainEvents()); err != nil {
			return err
		}
		block.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return fmt.Errorf("save block: %w", err)
	}
	return nil
}

// stageEventsTx writes domain events to the transactional outbox.
func (s *ScheduleService) stageEventsTx(ctx context.Context, events []sharedDomain.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(uuid.New()))

	msgs := make([]*outbox.Message, 0, len(events))
	for _, event := range events {
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	return s.outboxRepo.SaveBatch(ctx, msgs)
}

// stageEvents is the non-transactional variant used after best-effort
// calendar follow-ups; staging failures are logged, never surfaced.
func (s *ScheduleService) stageEvents(ctx context.Context, events []sharedDomain.DomainEvent) {
	if err := s.stageEventsTx(ctx, events); err != nil {
		s.logger.Warn("failed to stage events", "error", err)
	}
}

// refreshDay replaces the day's reminders and recomputes its statistics.
// Both are follow-ups to an already committed write, so failures are
// logged rather than surfaced.
func (s *ScheduleService) refreshDay(ctx context.Context, date time.Time) {
	blocks, err := s.blockRepo.FindByDate(ctx, date)
	if err != nil {
		s.logger.Warn("failed to reload day after mutation", "date", date.Format("2006-01-02"), "error", err)
		return
	}
	if err := s.rescheduler.RescheduleAll(ctx, date, blocks); err != nil {
		s.logger.Warn("failed to reschedule reminders", "date", date.Format("2006-01-02"), "error", err)
	}
	if _, err := s.aggregator.Aggregate(ctx, date, blocks); err != nil {
		s.logger.Warn("failed to recompute daily progress", "date", date.Format("2006-01-02"), "error", err)
	}
}
