package domain

// BlockStatus tracks a block's execution state through the day.
type BlockStatus string

const (
	StatusNotStarted BlockStatus = "not_started"
	StatusInProgress BlockStatus = "in_progress"
	StatusCompleted  BlockStatus = "completed"
	StatusSkipped    BlockStatus = "skipped"
)

// AllStatuses lists every valid block status.
func AllStatuses() []BlockStatus {
	return []BlockStatus{StatusNotStarted, StatusInProgress, StatusCompleted, StatusSkipped}
}

// IsValid reports whether the status is a known state.
func (s BlockStatus) IsValid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusSkipped:
		return true
	}
	return false
}

// IsTerminal reports whether the status ends the block's lifecycle for the day.
// Terminal statuses are only left through an explicit day-wide reset.
func (s BlockStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusSkipped
}

// String implements fmt.Stringer.
func (s BlockStatus) String() string {
	return string(s)
}
