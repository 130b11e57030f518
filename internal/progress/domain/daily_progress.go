package domain

import (
	"errors"
	"time"

	sharedDomain "github.com/felixgeelhaar/dayblock/internal/shared/domain"
	"github.com/google/uuid"
)

var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// DayCounts holds the derived portion of a day's progress, recomputed from
// the day's blocks on every mutation.
type DayCounts struct {
	TotalBlocks         int
	CompletedBlocks     int
	SkippedBlocks       int
	InProgressBlocks    int
	TotalPlannedMinutes int
	CompletedMinutes    int
}

// DailyProgress records one calendar day's completion accounting. The
// counts are derived and recomputed; rating, notes and the viewed flag are
// the only user-owned fields and survive recomputation.
type DailyProgress struct {
	sharedDomain.BaseEntity
	date   time.Time
	counts DayCounts
	rating *int
	notes  string
	viewed bool
}

// NewDailyProgress creates an empty progress record for a date.
func NewDailyProgress(date time.Time) *DailyProgress {
	return &DailyProgress{
		BaseEntity: sharedDomain.NewBaseEntity(),
		date:       time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()),
	}
}

// Getters
func (p *DailyProgress) Date() time.Time          { return p.date }
func (p *DailyProgress) Counts() DayCounts        { return p.counts }
func (p *DailyProgress) TotalBlocks() int         { return p.counts.TotalBlocks }
func (p *DailyProgress) CompletedBlocks() int     { return p.counts.CompletedBlocks }
func (p *DailyProgress) SkippedBlocks() int       { return p.counts.SkippedBlocks }
func (p *DailyProgress) InProgressBlocks() int    { return p.counts.InProgressBlocks }
func (p *DailyProgress) TotalPlannedMinutes() int { return p.counts.TotalPlannedMinutes }
func (p *DailyProgress) CompletedMinutes() int    { return p.counts.CompletedMinutes }
func (p *DailyProgress) Notes() string            { return p.notes }
func (p *DailyProgress) Viewed() bool             { return p.viewed }

// Rating returns the user's 1-5 rating, or nil when unset.
func (p *DailyProgress) Rating() *int {
	if p.rating == nil {
		return nil
	}
	r := *p.rating
	return &r
}

// CompletionPercentage is block-count based: a 5-minute block and a
// 3-hour block count equally.
func (p *DailyProgress) CompletionPercentage() float64 {
	if p.counts.TotalBlocks == 0 {
		return 0
	}
	return float64(p.counts.CompletedBlocks) / float64(p.counts.TotalBlocks)
}

// Performance returns the threshold-based level for the day.
func (p *DailyProgress) Performance() PerformanceLevel {
	return PerformanceForCompletion(p.CompletionPercentage(), p.counts.TotalBlocks)
}

// IsDayComplete reports whether the day has blocks and all of them reached
// a terminal status.
func (p *DailyProgress) IsDayComplete() bool {
	if p.counts.TotalBlocks == 0 {
		return false
	}
	return p.counts.CompletedBlocks+p.counts.SkippedBlocks == p.counts.TotalBlocks
}

// SetCounts replaces the derived counts, leaving user-owned fields intact.
func (p *DailyProgress) SetCounts(counts DayCounts) {
	p.counts = counts
	p.Touch()
}

// SetRating records the user's 1-5 day rating.
func (p *DailyProgress) SetRating(rating int) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	p.rating = &rating
	p.Touch()
	return nil
}

// SetNotes records the user's free-text day notes.
func (p *DailyProgress) SetNotes(notes string) {
	p.notes = notes
	p.Touch()
}

// MarkViewed flags the day summary as seen.
func (p *DailyProgress) MarkViewed() {
	if p.viewed {
		return
	}
	p.viewed = true
	p.Touch()
}

// RehydrateDailyProgress recreates a progress record from persisted state.
func RehydrateDailyProgress(
	id uuid.UUID,
	date time.Time,
	counts DayCounts,
	rating *int,
	notes string,
	viewed bool,
	createdAt, updatedAt time.Time,
) *DailyProgress {
	return &DailyProgress{
		BaseEntity: sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		date:       date,
		counts:     counts,
		rating:     rating,
		notes:      notes,
		viewed:     viewed,
	}
}
