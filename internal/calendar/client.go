package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const defaultBaseURL = "https://www.googleapis.com/calendar/v3"

// TokenFunc supplies the bearer token for a request. It lets the client
// read the token lazily from the credential store.
type TokenFunc func() (string, error)

// Client submits events to the calendar REST API. Every call is
// attempt-once: no retries, no backoff.
type Client struct {
	baseURL string
	token   TokenFunc
	http    *http.Client
}

// NewClient creates a calendar client using token for authentication.
func NewClient(token TokenFunc) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		token:   token,
		http:    &http.Client{},
	}
}

// InsertedEvent is the API's acknowledgment of a created event.
type InsertedEvent struct {
	ID       string `json:"id"`
	HTMLLink string `json:"htmlLink"`
	Status   string `json:"status"`
}

// Insert creates the event on the given calendar and returns the API's
// acknowledgment.
func (c *Client) Insert(
	ctx context.Context,
	calendarID string,
	event Event,
) (*InsertedEvent, error) {
	token, err := c.token()
	if err != nil {
		return nil, fmt.Errorf("getting calendar token: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshaling event: %w", err)
	}

	endpoint := fmt.Sprintf(
		"%s/calendars/%s/events",
		c.baseURL, url.PathEscape(calendarID),
	)

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, endpoint, bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling calendar API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("calendar API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("calendar API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var inserted InsertedEvent
	if err := json.Unmarshal(respBody, &inserted); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &inserted, nil
}
