// Package vault provides a client for the remote context vault that stores
// notes and goal targets per user.
package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/echolon/internal/model"
)

const (
	requestTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
	userAgent      = "github.com/theirongolddev/echolon/1.0"
)

var (
	// ErrUnauthorized indicates the vault token is missing or rejected.
	ErrUnauthorized = errors.New("vault: unauthorized")
	// ErrUnavailable indicates the vault could not be reached or failed.
	ErrUnavailable = errors.New("vault: unavailable")
	// ErrEmptyNote is returned when posting a note without text.
	ErrEmptyNote = errors.New("vault: note text is empty")
)

// Client talks to the context vault on behalf of one user.
type Client struct {
	baseURL string
	userID  string
	token   string
	http    *http.Client
}

// NewClient creates a client for the vault at baseURL.
// Returns nil if baseURL is empty or not an http(s) URL.
func NewClient(baseURL, userID, token string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil
	}
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil
	}
	if userID == "" {
		userID = "demo-user"
	}
	return &Client{
		baseURL: baseURL,
		userID:  userID,
		token:   strings.TrimSpace(token),
		http:    &http.Client{},
	}
}

// UserID returns the user the client reads and writes for.
func (c *Client) UserID() string { return c.userID }

// PostNote stores a note and returns it as saved by the vault.
func (c *Client) PostNote(ctx context.Context, n model.Note) (model.Note, error) {
	n.Text = strings.TrimSpace(n.Text)
	if n.Text == "" {
		return model.Note{}, ErrEmptyNote
	}
	if n.Owner == "" {
		n.Owner = c.userID
	}
	body, err := c.do(ctx, http.MethodPost, c.userPath("notes"), noteRequest{
		Text:   n.Text,
		Owner:  n.Owner,
		Urgent: n.Urgent,
		Status: n.Status,
		Due:    n.Due,
	})
	if err != nil {
		return model.Note{}, err
	}

	saved := n
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &saved); err != nil {
			return model.Note{}, fmt.Errorf("vault: parsing note: %w", err)
		}
	}
	return saved, nil
}

// Notes returns the user's notes, newest first.
func (c *Client) Notes(ctx context.Context) ([]model.Note, error) {
	body, err := c.do(ctx, http.MethodGet, c.userPath("notes"), nil)
	if err != nil {
		return nil, err
	}
	notes, err := decodeNotes(body)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
	return notes, nil
}

// PutGoals replaces the user's goal targets.
func (c *Client) PutGoals(ctx context.Context, targets []model.GoalTarget) error {
	doc := goalsDoc{Goals: make(map[string]float64, len(targets))}
	for _, g := range targets {
		doc.Goals[string(g.Metric)] = g.Target
	}
	_, err := c.do(ctx, http.MethodPut, c.userPath("goals"), doc)
	return err
}

// Goals returns the user's goal targets ordered by metric name.
func (c *Client) Goals(ctx context.Context) ([]model.GoalTarget, error) {
	body, err := c.do(ctx, http.MethodGet, c.userPath("goals"), nil)
	if err != nil {
		return nil, err
	}
	var doc goalsDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("vault: parsing goals: %w", err)
	}
	out := make([]model.GoalTarget, 0, len(doc.Goals))
	for k, v := range doc.Goals {
		out = append(out, model.GoalTarget{Metric: model.Field(k), Target: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Metric < out[j].Metric })
	return out, nil
}

func (c *Client) userPath(resource string) string {
	return "/v1/users/" + url.PathEscape(c.userID) + "/" + resource
}

// do performs a request with an optional JSON body and returns the response body.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("vault: encoding request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("vault: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound && method == http.MethodGet:
		// Nothing stored yet for this user.
		return []byte("null"), nil
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("vault: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("vault: reading response: %w", err)
	}
	return data, nil
}

// decodeNotes accepts either {"notes": [...]} or a bare array.
func decodeNotes(body []byte) ([]model.Note, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var notes []model.Note
		if err := json.Unmarshal(trimmed, &notes); err != nil {
			return nil, fmt.Errorf("vault: parsing notes: %w", err)
		}
		return notes, nil
	}
	var resp notesResponse
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return nil, fmt.Errorf("vault: parsing notes: %w", err)
	}
	return resp.Notes, nil
}
