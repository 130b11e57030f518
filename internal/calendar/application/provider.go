package application

import (
	"context"
	"time"
)

// EventData is the mirrored portion of a block pushed to the external store.
type EventData struct {
	Title     string
	Notes     string
	StartTime time.Time
	EndTime   time.Time
}

// EventRef identifies a created event and its remote modification stamp.
type EventRef struct {
	EventID      string
	LastModified time.Time
}

// Calendar describes an external calendar the user can mirror blocks into.
type Calendar struct {
	ID      string
	Name    string
	Color   string
	Primary bool
}

// Provider is the narrow contract against the external calendar store. The
// store is independently mutable and every write through it is advisory;
// only existence reads are authoritative. Deleting an id that no longer
// exists is not an error.
type Provider interface {
	CreateEvent(ctx context.Context, calendarID string, data EventData) (*EventRef, error)
	UpdateEvent(ctx context.Context, calendarID, eventID string, data EventData) (time.Time, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
	EventExists(ctx context.Context, calendarID, eventID string) (bool, error)
	ListCalendars(ctx context.Context) ([]Calendar, error)
}
