package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/dayblock/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType = "TimeBlock"

	RoutingKeyBlockCreated       = "scheduling.block.created"
	RoutingKeyBlockUpdated       = "scheduling.block.updated"
	RoutingKeyBlockRescheduled   = "scheduling.block.rescheduled"
	RoutingKeyBlockStatusChanged = "scheduling.block.status_changed"
	RoutingKeyBlockDeleted       = "scheduling.block.deleted"
	RoutingKeyBlockLinked        = "scheduling.block.linked"
	RoutingKeyBlockUnlinked      = "scheduling.block.unlinked"
	RoutingKeyDayReset           = "scheduling.day.reset"
)

// BlockCreated is emitted when a new block passes validation.
type BlockCreated struct {
	sharedDomain.BaseEvent
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Category  string    `json:"category,omitempty"`
}

func NewBlockCreated(block *TimeBlock) *BlockCreated {
	return &BlockCreated{
		BaseEvent: sharedDomain.NewBaseEvent(block.ID(), AggregateType, RoutingKeyBlockCreated),
		Title:     block.Title(),
		StartTime: block.StartTime(),
		EndTime:   block.EndTime(),
		Category:  block.Category(),
	}
}

// BlockUpdated is emitted when a block's details change.
type BlockUpdated struct {
	sharedDomain.BaseEvent
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
}

func NewBlockUpdated(block *TimeBlock) *BlockUpdated {
	return &BlockUpdated{
		BaseEvent: sharedDomain.NewBaseEvent(block.ID(), AggregateType, RoutingKeyBlockUpdated),
		Title:     block.Title(),
		Category:  block.Category(),
	}
}

// BlockRescheduled is emitted when a block moves within its day.
type BlockRescheduled struct {
	sharedDomain.BaseEvent
	OldStartTime time.Time `json:"old_start_time"`
	OldEndTime   time.Time `json:"old_end_time"`
	NewStartTime time.Time `json:"new_start_time"`
	NewEndTime   time.Time `json:"new_end_time"`
}

func NewBlockRescheduled(blockID uuid.UUID, oldStart, oldEnd, newStart, newEnd time.Time) *BlockRescheduled {
	return &BlockRescheduled{
		BaseEvent:    sharedDomain.NewBaseEvent(blockID, AggregateType, RoutingKeyBlockRescheduled),
		OldStartTime: oldStart,
		OldEndTime:   oldEnd,
		NewStartTime: newStart,
		NewEndTime:   newEnd,
	}
}

// BlockStatusChanged is emitted on every status transition.
type BlockStatusChanged struct {
	sharedDomain.BaseEvent
	Day  time.Time   `json:"day"`
	From BlockStatus `json:"from"`
	To   BlockStatus `json:"to"`
}

func NewBlockStatusChanged(blockID uuid.UUID, day time.Time, from, to BlockStatus) *BlockStatusChanged {
	return &BlockStatusChanged{
		BaseEvent: sharedDomain.NewBaseEvent(blockID, AggregateType, RoutingKeyBlockStatusChanged),
		Day:       day,
		From:      from,
		To:        to,
	}
}

// BlockDeleted is emitted when a block is removed.
type BlockDeleted struct {
	sharedDomain.BaseEvent
	Title string    `json:"title"`
	Day   time.Time `json:"day"`
}

func NewBlockDeleted(block *TimeBlock) *BlockDeleted {
	return &BlockDeleted{
		BaseEvent: sharedDomain.NewBaseEvent(block.ID(), AggregateType, RoutingKeyBlockDeleted),
		Title:     block.Title(),
		Day:       block.Day(),
	}
}

// BlockLinked is emitted when a block gains external calendar linkage.
type BlockLinked struct {
	sharedDomain.BaseEvent
	ExternalEventID string `json:"external_event_id"`
	CalendarID      string `json:"calendar_id"`
}

func NewBlockLinked(blockID uuid.UUID, eventID, calendarID string) *BlockLinked {
	return &BlockLinked{
		BaseEvent:       sharedDomain.NewBaseEvent(blockID, AggregateType, RoutingKeyBlockLinked),
		ExternalEventID: eventID,
		CalendarID:      calendarID,
	}
}

// BlockUnlinked is emitted when linkage is cleared, whether by the user or
// by the reconciliation sweep.
type BlockUnlinked struct {
	sharedDomain.BaseEvent
	ExternalEventID string `json:"external_event_id"`
}

func NewBlockUnlinked(blockID uuid.UUID, eventID string) *BlockUnlinked {
	return &BlockUnlinked{
		BaseEvent:       sharedDomain.NewBaseEvent(blockID, AggregateType, RoutingKeyBlockUnlinked),
		ExternalEventID: eventID,
	}
}

// DayReset is emitted when a day-wide status reset runs.
type DayReset struct {
	sharedDomain.BaseEvent
	Day         time.Time `json:"day"`
	BlocksReset int       `json:"blocks_reset"`
}

func NewDayReset(day time.Time, blocksReset int) *DayReset {
	return &DayReset{
		BaseEvent:   sharedDomain.NewBaseEvent(uuid.New(), AggregateType, RoutingKeyDayReset),
		Day:         day,
		BlocksReset: blocksReset,
	}
}
