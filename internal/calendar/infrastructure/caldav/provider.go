// Package caldav mirrors blocks into any CalDAV calendar (Apple Calendar,
// Fastmail, Nextcloud, etc.).
package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	calendarApp "github.com/felixgeelhaar/dayblock/internal/calendar/application"
	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"
)

// Common CalDAV server URLs
const (
	AppleCalDAVURL    = "https://caldav.icloud.com"
	FastmailCalDAVURL = "https://caldav.fastmail.com"
)

// PropXDayblock marks events this application owns.
const PropXDayblock = "X-DAYBLOCK"

// Provider implements calendar/application.Provider against a CalDAV
// server. Calendar IDs are CalDAV collection paths; event IDs are the UID
// of the mirrored event.
type Provider struct {
	baseURL  string
	username string
	password string // App-specific password for Apple
	logger   *slog.Logger
}

// NewProvider creates a CalDAV calendar provider.
func NewProvider(baseURL, username, password string, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		baseURL:  baseURL,
		username: username,
		password: password,
		logger:   logger,
	}
}

// CreateEvent puts a new VEVENT into the calendar collection.
func (p *Provider) CreateEvent(ctx context.Context, calendarID string, data calendarApp.EventData) (*calendarApp.EventRef, error) {
	client, err := p.getClient()
	if err != nil {
		return nil, err
	}

	calPath, err := p.resolveCalendarPath(ctx, client, calendarID)
	if err != nil {
		return nil, err
	}

	eventID := uuid.NewString()
	cal := toICalendar(eventID, data)
	if _, err := client.PutCalendarObject(ctx, eventPath(calPath, eventID), cal); err != nil {
		return nil, fmt.Errorf("put calendar object: %w", err)
	}

	// CalDAV PUT does not return a modification stamp; the DTSTAMP we
	// wrote is the best-known remote truth.
	return &calendarApp.EventRef{
		EventID:      eventID,
		LastModified: time.Now().UTC(),
	}, nil
}

// UpdateEvent overwrites the mirrored VEVENT in place.
func (p *Provider) UpdateEvent(ctx context.Context, calendarID, eventID string, data calendarApp.EventData) (time.Time, error) {
	client, err := p.getClient()
	if err != nil {
		return time.Time{}, err
	}

	calPath, err := p.resolveCalendarPath(ctx, client, calendarID)
	if err != nil {
		return time.Time{}, err
	}

	cal := toICalendar(eventID, data)
	if _, err := client.PutCalendarObject(ctx, eventPath(calPath, eventID), cal); err != nil {
		return time.Time{}, fmt.Errorf("put calendar object: %w", err)
	}
	return time.Now().UTC(), nil
}

// DeleteEvent removes the mirrored VEVENT. A missing event is not an error.
func (p *Provider) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	client, err := p.getClient()
	if err != nil {
		return err
	}

	calPath, err := p.resolveCalendarPath(ctx, client, calendarID)
	if err != nil {
		return err
	}

	if err := client.RemoveAll(ctx, eventPath(calPath, eventID)); err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("remove calendar object: %w", err)
	}
	return nil
}

// EventExists checks whether the mirrored VEVENT is still present.
func (p *Provider) EventExists(ctx context.Context, calendarID, eventID string) (bool, error) {
	client, err := p.getClient()
	if err != nil {
		return false, err
	}

	calPath, err := p.resolveCalendarPath(ctx, client, calendarID)
	if err != nil {
		return false, err
	}

	if _, err := client.GetCalendarObject(ctx, eventPath(calPath, eventID)); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("get calendar object: %w", err)
	}
	return true, nil
}

// ListCalendars returns the calendar collections available to the user.
func (p *Provider) ListCalendars(ctx context.Context) ([]calendarApp.Calendar, error) {
	client, err := p.getClient()
	if err != nil {
		return nil, err
	}

	cals, err := p.findCalendars(ctx, client)
	if err != nil {
		return nil, err
	}

	calendars := make([]calendarApp.Calendar, 0, len(cals))
	for i, cal := range cals {
		calendars = append(calendars, calendarApp.Calendar{
			ID:      cal.Path,
			Name:    cal.Name,
			Primary: i == 0, // First calendar is usually the default
		})
	}
	return calendars, nil
}

// Helper methods

func (p *Provider) getClient() (*caldav.Client, error) {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &basicAuthTransport{
			username: p.username,
			password: p.password,
			base:     http.DefaultTransport,
		},
	}

	client, err := caldav.NewClient(webdav.HTTPClientWithBasicAuth(httpClient, p.username, p.password), p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	return client, nil
}

// resolveCalendarPath maps a calendar ID to a collection path. An empty ID
// falls back to the user's first calendar.
func (p *Provider) resolveCalendarPath(ctx context.Context, client *caldav.Client, calendarID string) (string, error) {
	if calendarID != "" {
		if !strings.HasSuffix(calendarID, "/") {
			calendarID += "/"
		}
		return calendarID, nil
	}

	cals, err := p.findCalendars(ctx, client)
	if err != nil {
		return "", err
	}
	if len(cals) == 0 {
		return "", fmt.Errorf("no calendars found")
	}
	return cals[0].Path, nil
}

func (p *Provider) findCalendars(ctx context.Context, client *caldav.Client) ([]caldav.Calendar, error) {
	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find principal: %w", err)
	}

	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar home set: %w", err)
	}

	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendars: %w", err)
	}
	return cals, nil
}

func eventPath(calPath, eventID string) string {
	return fmt.Sprintf("%s%s.ics", calPath, eventID)
}

// isNotFound detects 404 responses from the WebDAV server.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "404")
}

// toICalendar builds the mirrored VEVENT for a block.
func toICalendar(eventID string, data calendarApp.EventData) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//Dayblock//Calendar Sync//EN")

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, eventID)
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, data.StartTime.UTC())
	event.Props.SetDateTime(ical.PropDateTimeEnd, data.EndTime.UTC())
	event.Props.SetText(ical.PropSummary, data.Title)

	description := data.Notes
	if description != "" {
		description += "\n\n"
	}
	description += "Managed by Dayblock"
	event.Props.SetText(ical.PropDescription, description)

	// Custom property to identify events this application owns
	marker := ical.NewProp(PropXDayblock)
	marker.Value = "1"
	event.Props[PropXDayblock] = []ical.Prop{*marker}

	cal.Children = append(cal.Children, event.Component)

	return cal
}

type basicAuthTransport struct {
	username string
	password string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.username, t.password)
	return t.base.RoundTrip(req)
}
