package domain

// PerformanceLevel is a coarse, threshold-based summary of a day's
// completion ratio. Levels are ordered from None to Excellent.
type PerformanceLevel string

const (
	PerformanceNone      PerformanceLevel = "none"
	PerformancePoor      PerformanceLevel = "poor"
	PerformanceFair      PerformanceLevel = "fair"
	PerformanceGood      PerformanceLevel = "good"
	PerformanceExcellent PerformanceLevel = "excellent"
)

// PerformanceForCompletion maps a completion percentage to a level.
// Days without any blocks have no performance level.
func PerformanceForCompletion(completion float64, totalBlocks int) PerformanceLevel {
	switch {
	case totalBlocks == 0:
		return PerformanceNone
	case completion < 0.3:
		return PerformancePoor
	case completion < 0.6:
		return PerformanceFair
	case completion < 0.8:
		return PerformanceGood
	default:
		return PerformanceExcellent
	}
}

// Label returns a short human-readable name for the level.
func (p PerformanceLevel) Label() string {
	switch p {
	case PerformancePoor:
		return "Poor"
	case PerformanceFair:
		return "Fair"
	case PerformanceGood:
		return "Good"
	case PerformanceExcellent:
		return "Excellent"
	default:
		return "No data"
	}
}

// Emoji returns a glyph used by the CLI day summary.
func (p PerformanceLevel) Emoji() string {
	switch p {
	case PerformancePoor:
		return "🔴"
	case PerformanceFair:
		return "🟡"
	case PerformanceGood:
		return "🟢"
	case PerformanceExcellent:
		return "🌟"
	default:
		return "⚪"
	}
}
