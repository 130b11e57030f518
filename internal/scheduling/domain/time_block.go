package domain

import (
	"errors"
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/dayblock/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrEmptyTitle         = errors.New("title must not be empty")
	ErrInvalidTimeRange   = errors.New("end time must be after start time")
	ErrCrossesDayBoundary = errors.New("block must fall within a single calendar day")
	ErrBlockTooShort      = errors.New("block must be at least 1 minute")
	ErrBlockTooLong       = errors.New("block must not exceed 24 hours")
	ErrDayChanged         = errors.New("block cannot move to a different day")
	ErrInvalidStatus      = errors.New("unknown block status")
	ErrNotWithinInterval  = errors.New("block can only be started during its interval")
	ErrTerminalStatus     = errors.New("completed or skipped blocks are only reset by a day-wide reset")
)

const (
	// MinBlockDuration is the minimum allowed block duration.
	MinBlockDuration = time.Minute
	// MaxBlockDuration is the maximum allowed block duration.
	MaxBlockDuration = 24 * time.Hour
)

// CalendarLink associates a block with an event in an externally owned
// calendar store. A block holds either a complete link or none at all;
// the pointer on TimeBlock makes partial linkage unrepresentable.
type CalendarLink struct {
	EventID      string
	CalendarID   string
	LastModified time.Time
}

// TimeBlock is a titled, non-overlapping-per-day interval the user intends
// to follow. It is the aggregate root of the scheduling context.
type TimeBlock struct {
	sharedDomain.BaseAggregateRoot
	title     string
	startTime time.Time
	endTime   time.Time
	notes     string
	category  string
	icon      string
	status    BlockStatus
	link      *CalendarLink
}

// NewTimeBlock creates a validated time block in the NotStarted state.
func NewTimeBlock(title string, startTime, endTime time.Time, notes, category, icon string) (*TimeBlock, error) {
	title = strings.TrimSpace(title)
	if err := validateInterval(title, startTime, endTime); err != nil {
		return nil, err
	}

	b := &TimeBlock{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		title:             title,
		startTime:         startTime,
		endTime:           endTime,
		notes:             notes,
		category:          category,
		icon:              icon,
		status:            StatusNotStarted,
	}
	b.AddDomainEvent(NewBlockCreated(b))
	return b, nil
}

func validateInterval(title string, startTime, endTime time.Time) error {
	if title == "" {
		return ErrEmptyTitle
	}
	if !endTime.After(startTime) {
		return ErrInvalidTimeRange
	}
	d := endTime.Sub(startTime)
	if d < MinBlockDuration {
		return ErrBlockTooShort
	}
	if d > MaxBlockDuration {
		return ErrBlockTooLong
	}
	// The interval is half-open, so a block ending exactly at midnight
	// still belongs to the day it starts on.
	if !SameCalendarDay(startTime, endTime.Add(-time.Nanosecond)) {
		return ErrCrossesDayBoundary
	}
	return nil
}

// Getters
func (b *TimeBlock) Title() string        { return b.title }
func (b *TimeBlock) StartTime() time.Time { return b.startTime }
func (b *TimeBlock) EndTime() time.Time   { return b.endTime }
func (b *TimeBlock) Notes() string        { return b.notes }
func (b *TimeBlock) Category() string     { return b.category }
func (b *TimeBlock) Icon() string         { return b.icon }
func (b *TimeBlock) Status() BlockStatus  { return b.status }

// Link returns a copy of the calendar link, or nil when unlinked.
func (b *TimeBlock) Link() *CalendarLink {
	if b.link == nil {
		return nil
	}
	l := *b.link
	return &l
}

// IsLinked reports whether the block mirrors an external calendar event.
func (b *TimeBlock) IsLinked() bool { return b.link != nil }

// Day returns the start of the block's calendar day in its own location.
func (b *TimeBlock) Day() time.Time { return DayOf(b.startTime) }

// Duration returns the block duration.
func (b *TimeBlock) Duration() time.Duration {
	return b.endTime.Sub(b.startTime)
}

// DurationMinutes returns the block duration in whole minutes.
func (b *TimeBlock) DurationMinutes() int {
	return int(b.Duration() / time.Minute)
}

// IsActiveAt reports whether t falls inside [start, end).
func (b *TimeBlock) IsActiveAt(t time.Time) bool {
	return !t.Before(b.startTime) && t.Before(b.endTime)
}

// ProgressAt returns the fraction of the interval elapsed at t, in [0, 1].
func (b *TimeBlock) ProgressAt(t time.Time) float64 {
	if t.Before(b.startTime) {
		return 0
	}
	if !t.Before(b.endTime) {
		return 1
	}
	return float64(t.Sub(b.startTime)) / float64(b.Duration())
}

// StatusAt returns the status as observed at t. A NotStarted block whose
// interval contains t reads as InProgress; the stored status is unchanged
// until a caller explicitly transitions it.
func (b *TimeBlock) StatusAt(t time.Time) BlockStatus {
	if b.status == StatusNotStarted && b.IsActiveAt(t) {
		return StatusInProgress
	}
	return b.status
}

// UpdateDetails replaces the block's title, notes, category and icon.
func (b *TimeBlock) UpdateDetails(title, notes, category, icon string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	b.title = title
	b.notes = notes
	b.category = category
	b.icon = icon
	b.Touch()
	b.AddDomainEvent(NewBlockUpdated(b))
	return nil
}

// Reschedule moves the block within its own calendar day. Moving a block
// to another day is a delete-and-recreate performed by the caller.
func (b *TimeBlock) Reschedule(newStart, newEnd time.Time) error {
	if err := validateInterval(b.title, newStart, newEnd); err != nil {
		return err
	}
	if !SameCalendarDay(b.startTime, newStart) {
		return ErrDayChanged
	}

	oldStart, oldEnd := b.startTime, b.endTime
	b.startTime = newStart
	b.endTime = newEnd
	b.Touch()
	b.AddDomainEvent(NewBlockRescheduled(b.ID(), oldStart, oldEnd, newStart, newEnd))
	return nil
}

// Transition moves the block to target, enforcing the status state machine:
// any state may move to Completed or Skipped; NotStarted moves to InProgress
// only while now lies inside the block's interval; terminal states are left
// only through ResetForDay. Transitioning to the current status is a no-op.
func (b *TimeBlock) Transition(target BlockStatus, now time.Time) error {
	if !target.IsValid() {
		return ErrInvalidStatus
	}
	if target == b.status {
		return nil
	}

	switch target {
	case StatusCompleted, StatusSkipped:
		// Always permitted.
	case StatusInProgress:
		if b.status != StatusNotStarted {
			return ErrTerminalStatus
		}
		if !b.IsActiveAt(now) {
			return ErrNotWithinInterval
		}
	case StatusNotStarted:
		return ErrTerminalStatus
	}

	b.setStatus(target)
	return nil
}

// StartEarly forces NotStarted into InProgress regardless of the clock.
// Intended for operator tooling and tests; normal callers use Transition.
func (b *TimeBlock) StartEarly() error {
	if b.status != StatusNotStarted {
		return ErrTerminalStatus
	}
	b.setStatus(StatusInProgress)
	return nil
}

// ResetForDay returns the block to NotStarted. Only the day-wide reset
// operation calls this; single-block edits never leave a terminal state.
func (b *TimeBlock) ResetForDay() {
	if b.status == StatusNotStarted {
		return
	}
	b.setStatus(StatusNotStarted)
}

func (b *TimeBlock) setStatus(target BlockStatus) {
	from := b.status
	b.status = target
	b.Touch()
	b.AddDomainEvent(NewBlockStatusChanged(b.ID(), b.Day(), from, target))
}

// SetLink records the external calendar linkage after a successful
// provider create, or refreshes it after a successful update.
func (b *TimeBlock) SetLink(eventID, calendarID string, lastModified time.Time) {
	b.link = &CalendarLink{
		EventID:      eventID,
		CalendarID:   calendarID,
		LastModified: lastModified,
	}
	b.Touch()
	b.AddDomainEvent(NewBlockLinked(b.ID(), eventID, calendarID))
}

// RefreshLink updates the link's last-modified stamp after a remote update.
func (b *TimeBlock) RefreshLink(lastModified time.Time) {
	if b.link == nil {
		return
	}
	b.link.LastModified = lastModified
	b.Touch()
}

// ClearLink removes the calendar linkage. It is unconditional: local state
// never stays falsely linked even when the remote delete failed.
func (b *TimeBlock) ClearLink() {
	if b.link == nil {
		return
	}
	eventID := b.link.EventID
	b.link = nil
	b.Touch()
	b.AddDomainEvent(NewBlockUnlinked(b.ID(), eventID))
}

// DayOf returns the start of t's calendar day in t's location.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameCalendarDay reports whether a and b fall on the same calendar day,
// evaluated in a's location.
func SameCalendarDay(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// RehydrateTimeBlock recreates a time block from persisted state.
func RehydrateTimeBlock(
	id uuid.UUID,
	title string,
	startTime, endTime time.Time,
	notes, category, icon string,
	status BlockStatus,
	link *CalendarLink,
	createdAt, updatedAt time.Time,
) *TimeBlock {
	return &TimeBlock{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(
			sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		),
		title:     title,
		startTime: startTime,
		endTime:   endTime,
		notes:     notes,
		category:  category,
		icon:      icon,
		status:    status,
		link:      link,
	}
}
