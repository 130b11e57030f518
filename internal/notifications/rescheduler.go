// Package notifications derives block reminders for a day. Rescheduling is
// replace-all: every call discards the day's prior reminders and derives a
// fresh set, so callers never track individual reminder identifiers.
package notifications

import (
	"context"
	"time"

	schedulingDomain "github.com/felixgeelhaar/dayblock/internal/scheduling/domain"
)

// DefaultLeadTime is how long before a block's start its reminder fires.
const DefaultLeadTime = 5 * time.Minute

// Rescheduler replaces all reminders for a day with ones derived from the
// day's current block set. Implementations must be idempotent.
type Rescheduler interface {
	RescheduleAll(ctx context.Context, date time.Time, blocks []*schedulingDomain.TimeBlock) error
}

// Reminder is a single derived reminder instant for a block.
type Reminder struct {
	BlockID  string    `json:"block_id"`
	Title    string    `json:"title"`
	FireAt   time.Time `json:"fire_at"`
	BlockEnd time.Time `json:"block_end"`
}

// DeriveReminders computes the reminder set for a day's blocks. Only blocks
// still awaiting execution get a reminder; completed and skipped blocks are
// silent for the rest of the day.
func DeriveReminders(blocks []*schedulingDomain.TimeBlock, leadTime time.Duration) []Reminder {
	if leadTime <= 0 {
		leadTime = DefaultLeadTime
	}
	reminders := make([]Reminder, 0, len(blocks))
	for _, b := range blocks {
		if b.Status().IsTerminal() {
			continue
		}
		reminders = append(reminders, Reminder{
			BlockID:  b.ID().String(),
			Title:    b.Title(),
			FireAt:   b.StartTime().Add(-leadTime),
			BlockEnd: b.EndTime(),
		})
	}
	return reminders
}
