package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FindConflicts returns every block whose interval overlaps the candidate
// interval on the same calendar day. The comparison is half-open: blocks
// that merely touch (one's end equals the other's start) do not conflict.
// The block identified by excludeID is skipped, which lets an edited block
// be re-validated against everything but its own prior self.
//
// The function is pure; it is run before every create and update.
func FindConflicts(candidateStart, candidateEnd time.Time, blocks []*TimeBlock, excludeID uuid.UUID) []*TimeBlock {
	conflicts := make([]*TimeBlock, 0)
	for _, b := range blocks {
		if b.ID() == excludeID {
			continue
		}
		if !SameCalendarDay(candidateStart, b.StartTime()) {
			continue
		}
		if candidateStart.Before(b.EndTime()) && b.StartTime().Before(candidateEnd) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts
}

// HasConflict reports whether the candidate interval overlaps any block.
func HasConflict(candidateStart, candidateEnd time.Time, blocks []*TimeBlock, excludeID uuid.UUID) bool {
	return len(FindConflicts(candidateStart, candidateEnd, blocks, excludeID)) > 0
}

// ConflictError carries the full list of conflicting blocks so callers can
// name every offending title and time range.
type ConflictError struct {
	Conflicts []*TimeBlock
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 0 {
		return "time block conflict"
	}
	parts := make([]string, 0, len(e.Conflicts))
	for _, b := range e.Conflicts {
		parts = append(parts, fmt.Sprintf("%q (%s-%s)",
			b.Title(),
			b.StartTime().Format("15:04"),
			b.EndTime().Format("15:04"),
		))
	}
	return "conflicts with " + strings.Join(parts, ", ")
}
