// Package google mirrors blocks into Google Calendar through its REST API.
package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	calendarApp "github.com/felixgeelhaar/dayblock/internal/calendar/application"
	"golang.org/x/oauth2"
)

const defaultBaseURL = "https://www.googleapis.com/calendar/v3"

// Provider implements calendar/application.Provider against Google
// Calendar. Calendar IDs are Google calendar IDs ("primary" by default);
// event IDs are Google event IDs.
type Provider struct {
	tokenSource oauth2.TokenSource
	logger      *slog.Logger
	baseURL     string
}

// NewProvider creates a Google Calendar provider.
func NewProvider(tokenSource oauth2.TokenSource, logger *slog.Logger) *Provider {
	return NewProviderWithBaseURL(tokenSource, logger, defaultBaseURL)
}

// NewProviderWithBaseURL creates a provider with a custom API base URL,
// used by tests against a stub server.
func NewProviderWithBaseURL(tokenSource oauth2.TokenSource, logger *slog.Logger, baseURL string) *Provider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		tokenSource: tokenSource,
		logger:      logger,
		baseURL:     baseURL,
	}
}

type googleEvent struct {
	ID                 string `json:"id,omitempty"`
	Summary            string `json:"summary"`
	Description        string `json:"description,omitempty"`
	Updated            string `json:"updated,omitempty"`
	ExtendedProperties struct {
		Private map[string]string `json:"private,omitempty"`
	} `json:"extendedProperties,omitempty"`
	Start struct {
		DateTime string `json:"dateTime"`
	} `json:"start"`
	End struct {
		DateTime string `json:"dateTime"`
	} `json:"end"`
}

func toGoogleEvent(data calendarApp.EventData) googleEvent {
	event := googleEvent{
		Summary:     data.Title,
		Description: data.Notes,
	}
	event.ExtendedProperties.Private = map[string]string{"dayblock": "1"}
	event.Start.DateTime = data.StartTime.Format(time.RFC3339)
	event.End.DateTime = data.EndTime.Format(time.RFC3339)
	return event
}

// CreateEvent inserts a new event.
func (p *Provider) CreateEvent(ctx context.Context, calendarID string, data calendarApp.EventData) (*calendarApp.EventRef, error) {
	if calendarID == "" {
		calendarID = "primary"
	}
	insertURL := fmt.Sprintf("%s/calendars/%s/events", p.baseURL, url.PathEscape(calendarID))

	resp, err := p.do(ctx, http.MethodPost, insertURL, toGoogleEvent(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, responseError(resp)
	}

	var created googleEvent
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("decode created event: %w", err)
	}
	return &calendarApp.EventRef{
		EventID:      created.ID,
		LastModified: parseUpdated(created.Updated),
	}, nil
}

// UpdateEvent replaces the mirrored event.
func (p *Provider) UpdateEvent(ctx context.Context, calendarID, eventID string, data calendarApp.EventData) (time.Time, error) {
	resp, err := p.do(ctx, http.MethodPut, p.eventURL(calendarID, eventID), toGoogleEvent(data))
	if err != nil {
		return time.Time{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return time.Time{}, responseError(resp)
	}

	var updated googleEvent
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return time.Time{}, fmt.Errorf("decode updated event: %w", err)
	}
	return parseUpdated(updated.Updated), nil
}

// DeleteEvent removes the mirrored event. Gone or missing events are not
// an error.
func (p *Provider) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	resp, err := p.do(ctx, http.MethodDelete, p.eventURL(calendarID, eventID), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return responseError(resp)
	}
	return nil
}

// EventExists checks whether the mirrored event is still present. Google
// keeps cancelled events around, so a status of "cancelled" counts as gone.
func (p *Provider) EventExists(ctx context.Context, calendarID, eventID string) (bool, error) {
	resp, err := p.do(ctx, http.MethodGet, p.eventURL(calendarID, eventID), nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, responseError(resp)
	}

	var event struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&event); err != nil {
		return false, fmt.Errorf("decode event: %w", err)
	}
	return event.Status != "cancelled", nil
}

// ListCalendars returns the user's calendar list.
func (p *Provider) ListCalendars(ctx context.Context) ([]calendarApp.Calendar, error) {
	listURL := fmt.Sprintf("%s/users/me/calendarList", p.baseURL)
	resp, err := p.do(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, responseError(resp)
	}

	var list struct {
		Items []struct {
			ID              string `json:"id"`
			Summary         string `json:"summary"`
			BackgroundColor string `json:"backgroundColor"`
			Primary         bool   `json:"primary"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode calendar list: %w", err)
	}

	calendars := make([]calendarApp.Calendar, 0, len(list.Items))
	for _, item := range list.Items {
		calendars = append(calendars, calendarApp.Calendar{
			ID:      item.ID,
			Name:    item.Summary,
			Color:   item.BackgroundColor,
			Primary: item.Primary,
		})
	}
	return calendars, nil
}

func (p *Provider) eventURL(calendarID, eventID string) string {
	if calendarID == "" {
		calendarID = "primary"
	}
	return fmt.Sprintf("%s/calendars/%s/events/%s", p.baseURL, url.PathEscape(calendarID), url.PathEscape(eventID))
}

func (p *Provider) do(ctx context.Context, method, rawURL string, payload any) (*http.Response, error) {
	if p.tokenSource == nil {
		return nil, fmt.Errorf("oauth token source not configured")
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := http.Client{
		Timeout: 15 * time.Second,
		Transport: &oauthTransport{
			base:   http.DefaultTransport,
			source: p.tokenSource,
		},
	}
	return client.Do(req)
}

func parseUpdated(updated string) time.Time {
	t, err := time.Parse(time.RFC3339, updated)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}

func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("calendar request failed: status=%d body=%s", resp.StatusCode, string(body))
}

type oauthTransport struct {
	base   http.RoundTripper
	source oauth2.TokenSource
}

func (t *oauthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.source.Token()
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	return t.base.RoundTrip(req)
}
