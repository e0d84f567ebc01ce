// Package api is the typed HTTP client for the jobtrack REST API. It speaks
// the same wire contract the server's rest package serves and decodes
// responses into domain types.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/appdex/jobtrack-backend/internal/client/querystate"
	"github.com/appdex/jobtrack-backend/internal/client/window"
	"github.com/appdex/jobtrack-backend/internal/domain"
)

const dateLayout = "2006-01-02"

// Client talks to one jobtrack server with one bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token, typically after Login.
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the current bearer token, for persisting between runs.
func (c *Client) Token() string { return c.token }

// ---------------------------------------------------------------------------
// Wire types
// ---------------------------------------------------------------------------

type applicationWire struct {
	ID          string `json:"id"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	Status      string `json:"status"`
	Mode        string `json:"mode"`
	DateApplied string `json:"dateApplied"`

	SalaryExact     *int `json:"salaryExact"`
	SalaryMin       *int `json:"salaryMin"`
	SalaryMax       *int `json:"salaryMax"`
	EffectiveSalary *int `json:"effectiveSalary"`

	Source *string `json:"source"`
	Notes  *string `json:"notes"`

	TailoredResume      bool `json:"tailoredResume"`
	TailoredCoverLetter bool `json:"tailoredCoverLetter"`

	InterviewRoundsDone  int  `json:"interviewRoundsDone"`
	InterviewRoundsTotal *int `json:"interviewRoundsTotal"`

	Tags []tagWire `json:"tags"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type tagWire struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type listWire struct {
	Items []applicationWire `json:"items"`
	Total int64             `json:"total"`
}

type statsWire struct {
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

type errorWire struct {
	Error  string `json:"error"`
	Fields []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"fields"`
}

func (w applicationWire) toDomain() (domain.Application, error) {
	id, err := uuid.Parse(w.ID)
	if err != nil {
		return domain.Application{}, fmt.Errorf("parse application id: %w", err)
	}
	dateApplied, err := time.Parse(dateLayout, w.DateApplied)
	if err != nil {
		return domain.Application{}, fmt.Errorf("parse dateApplied: %w", err)
	}

	tags := make([]domain.Tag, 0, len(w.Tags))
	for _, t := range w.Tags {
		tagID, err := uuid.Parse(t.ID)
		if err != nil {
			return domain.Application{}, fmt.Errorf("parse tag id: %w", err)
		}
		tags = append(tags, domain.Tag{ID: tagID, Name: t.Name, CreatedAt: t.CreatedAt})
	}

	return domain.Application{
		ID:                   id,
		Company:              w.Company,
		Position:             w.Position,
		Status:               domain.ApplicationStatus(w.Status),
		Mode:                 domain.WorkMode(w.Mode),
		DateApplied:          dateApplied,
		SalaryExact:          w.SalaryExact,
		SalaryMin:            w.SalaryMin,
		SalaryMax:            w.SalaryMax,
		EffectiveSalary:      w.EffectiveSalary,
		Source:               w.Source,
		Notes:                w.Notes,
		TailoredResume:       w.TailoredResume,
		TailoredCoverLetter:  w.TailoredCoverLetter,
		InterviewRoundsDone:  w.InterviewRoundsDone,
		InterviewRoundsTotal: w.InterviewRoundsTotal,
		Tags:                 tags,
	}, nil
}

// ApplicationForm is the full write payload for Create and Update.
type ApplicationForm struct {
	Company     string    `json:"company"`
	Position    string    `json:"position"`
	Status      string    `json:"status"`
	Mode        string    `json:"mode"`
	DateApplied time.Time `json:"-"`

	SalaryExact *int `json:"salaryExact,omitempty"`
	SalaryMin   *int `json:"salaryMin,omitempty"`
	SalaryMax   *int `json:"salaryMax,omitempty"`

	Source *string `json:"source,omitempty"`
	Notes  *string `json:"notes,omitempty"`

	TailoredResume      bool `json:"tailoredResume"`
	TailoredCoverLetter bool `json:"tailoredCoverLetter"`

	InterviewRoundsDone  int  `json:"interviewRoundsDone"`
	InterviewRoundsTotal *int `json:"interviewRoundsTotal,omitempty"`

	TagIDs []uuid.UUID `json:"tagIds,omitempty"`
}

// MarshalJSON writes DateApplied in the API's YYYY-MM-DD form.
func (f ApplicationForm) MarshalJSON() ([]byte, error) {
	type alias ApplicationForm
	return json.Marshal(struct {
		alias
		DateApplied string `json:"dateApplied"`
	}{
		alias:       alias(f),
		DateApplied: f.DateApplied.Format(dateLayout),
	})
}

// Patch is a partial-update payload. Only keys present in the map are
// applied server-side, so setters distinguish "set to null" from "leave
// unchanged".
type Patch map[string]any

func (p Patch) SetStatus(status domain.ApplicationStatus) Patch {
	p["status"] = status.String()
	return p
}

func (p Patch) SetNotes(notes *string) Patch {
	p["notes"] = notes
	return p
}

func (p Patch) SetRoundsDone(done int) Patch {
	p["interviewRoundsDone"] = done
	return p
}

// SetSalaryExact switches to an exact salary, clearing the range.
func (p Patch) SetSalaryExact(v int) Patch {
	p["salaryExact"] = v
	p["salaryMin"] = nil
	p["salaryMax"] = nil
	return p
}

// SetSalaryRange switches to a salary range, clearing the exact value.
func (p Patch) SetSalaryRange(min, max *int) Patch {
	p["salaryExact"] = nil
	p["salaryMin"] = min
	p["salaryMax"] = max
	return p
}

// ---------------------------------------------------------------------------
// Application endpoints
// ---------------------------------------------------------------------------

// WindowResult is one fetched window of rows plus the unpaginated total.
type WindowResult struct {
	Rows       []domain.Application
	TotalCount int64
}

// FetchWindow fetches the server page covering windowIndex: the server is
// asked for window-sized pages so one response carries every client page of
// the window.
func (c *Client) FetchWindow(ctx context.Context, state querystate.QueryState, windowIndex int) (*WindowResult, error) {
	pageSize := state.PageSize
	if pageSize < 1 {
		pageSize = querystate.DefaultPageSize
	}
	if pageSize > window.MaxPageSize {
		pageSize = window.MaxPageSize
	}

	q := state.Encode()
	q.Set("page", strconv.Itoa(windowIndex+1))
	q.Set("itemsPerPage", strconv.Itoa(pageSize*window.PagesPerWindow))

	var wire listWire
	if err := c.do(ctx, http.MethodGet, "/api/applications?"+q.Encode(), nil, &wire); err != nil {
		return nil, err
	}

	rows, err := decodeApplications(wire.Items)
	if err != nil {
		return nil, err
	}
	return &WindowResult{Rows: rows, TotalCount: wire.Total}, nil
}

// ListAll fetches the unpaginated listing for the given activity slice.
func (c *Client) ListAll(ctx context.Context, activity domain.Activity) ([]domain.Application, error) {
	q := url.Values{}
	if activity != "" {
		q.Set("activity", string(activity))
	}

	var wire listWire
	if err := c.do(ctx, http.MethodGet, "/api/applications/all?"+q.Encode(), nil, &wire); err != nil {
		return nil, err
	}
	return decodeApplications(wire.Items)
}

// Stats fetches the per-status counts.
func (c *Client) Stats(ctx context.Context) (map[string]int, error) {
	var wire statsWire
	if err := c.do(ctx, http.MethodGet, "/api/applications/stats", nil, &wire); err != nil {
		return nil, err
	}
	return wire.Counts, nil
}

func (c *Client) GetApplication(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	var wire applicationWire
	if err := c.do(ctx, http.MethodGet, "/api/applications/"+id.String(), nil, &wire); err != nil {
		return nil, err
	}
	app, err := wire.toDomain()
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (c *Client) CreateApplication(ctx context.Context, form ApplicationForm) (*domain.Application, error) {
	var wire applicationWire
	if err := c.do(ctx, http.MethodPost, "/api/applications", form, &wire); err != nil {
		return nil, err
	}
	app, err := wire.toDomain()
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (c *Client) UpdateApplication(ctx context.Context, id uuid.UUID, form ApplicationForm) (*domain.Application, error) {
	var wire applicationWire
	if err := c.do(ctx, http.MethodPut, "/api/applications/"+id.String(), form, &wire); err != nil {
		return nil, err
	}
	app, err := wire.toDomain()
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (c *Client) PatchApplication(ctx context.Context, id uuid.UUID, patch Patch) (*domain.Application, error) {
	var wire applicationWire
	if err := c.do(ctx, http.MethodPatch, "/api/applications/"+id.String(), patch, &wire); err != nil {
		return nil, err
	}
	app, err := wire.toDomain()
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// BulkUpdateStatus moves every given application to status and returns how
// many rows the server actually updated.
func (c *Client) BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, status domain.ApplicationStatus) (int64, error) {
	body := struct {
		ApplicationIDs []uuid.UUID `json:"applicationIds"`
		Update         struct {
			Status string `json:"status"`
		} `json:"update"`
	}{ApplicationIDs: ids}
	body.Update.Status = status.String()

	var wire struct {
		Updated int64 `json:"updated"`
	}
	if err := c.do(ctx, http.MethodPatch, "/api/applications/statusUpdate", body, &wire); err != nil {
		return 0, err
	}
	return wire.Updated, nil
}

func (c *Client) DeleteApplication(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/applications/"+id.String(), nil, nil)
}

// ---------------------------------------------------------------------------
// Tag endpoints
// ---------------------------------------------------------------------------

func (c *Client) ListTags(ctx context.Context) ([]domain.Tag, error) {
	var wire []tagWire
	if err := c.do(ctx, http.MethodGet, "/api/tags", nil, &wire); err != nil {
		return nil, err
	}

	tags := make([]domain.Tag, 0, len(wire))
	for _, t := range wire {
		id, err := uuid.Parse(t.ID)
		if err != nil {
			return nil, fmt.Errorf("parse tag id: %w", err)
		}
		tags = append(tags, domain.Tag{ID: id, Name: t.Name, CreatedAt: t.CreatedAt})
	}
	return tags, nil
}

func (c *Client) CreateTag(ctx context.Context, name string) (*domain.Tag, error) {
	body := struct {
		Name string `json:"name"`
	}{Name: name}

	var wire tagWire
	if err := c.do(ctx, http.MethodPost, "/api/tags", body, &wire); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(wire.ID)
	if err != nil {
		return nil, fmt.Errorf("parse tag id: %w", err)
	}
	return &domain.Tag{ID: id, Name: wire.Name, CreatedAt: wire.CreatedAt}, nil
}

func (c *Client) DeleteTag(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/tags/"+id.String(), nil, nil)
}

// ---------------------------------------------------------------------------
// Auth endpoints
// ---------------------------------------------------------------------------

type authWire struct {
	AccessToken string `json:"accessToken"`
	User        struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		Username string `json:"username"`
	} `json:"user"`
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var wire authWire
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &wire); err != nil {
		return err
	}
	c.token = wire.AccessToken
	return nil
}

// Register creates an account and stores the returned token on the client.
func (c *Client) Register(ctx context.Context, email, username, password string) error {
	body := struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}{Email: email, Username: username, Password: password}

	var wire authWire
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &wire); err != nil {
		return err
	}
	c.token = wire.AccessToken
	return nil
}

// ---------------------------------------------------------------------------
// Plumbing
// ---------------------------------------------------------------------------

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError maps HTTP error statuses back onto the domain sentinels so
// callers can branch with errors.Is just like server-side code.
func decodeError(resp *http.Response) error {
	var wire errorWire
	_ = json.NewDecoder(resp.Body).Decode(&wire)

	msg := wire.Error
	if msg == "" {
		msg = resp.Status
	}
	if len(wire.Fields) > 0 {
		parts := make([]string, 0, len(wire.Fields))
		for _, f := range wire.Fields {
			parts = append(parts, f.Field+": "+f.Message)
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("%s: %w", msg, domain.ErrValidation)
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", msg, domain.ErrUnauthorized)
	case http.StatusForbidden:
		return fmt.Errorf("%s: %w", msg, domain.ErrForbidden)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg, domain.ErrNotFound)
	case http.StatusConflict:
		return fmt.Errorf("%s: %w", msg, domain.ErrAlreadyExists)
	}
	return fmt.Errorf("server error: %s", msg)
}

func decodeApplications(items []applicationWire) ([]domain.Application, error) {
	rows := make([]domain.Application, 0, len(items))
	for _, item := range items {
		app, err := item.toDomain()
		if err != nil {
			return nil, err
		}
		rows = append(rows, app)
	}
	return rows, nil
}
