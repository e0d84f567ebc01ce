package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/appdex/jobtrack-backend/internal/domain"
	"github.com/appdex/jobtrack-backend/internal/service/application"
)

const dateLayout = "2006-01-02"

// applicationService defines the minimal interface needed by ApplicationHandler.
type applicationService interface {
	List(ctx context.Context, input application.ListInput) (*application.ListResult, error)
	ListAll(ctx context.Context, activity domain.Activity) ([]domain.Application, error)
	Stats(ctx context.Context) ([]domain.StatusCount, error)
	Get(ctx context.Context, appID uuid.UUID) (*domain.Application, error)
	Create(ctx context.Context, input application.CreateInput) (*domain.Application, error)
	Update(ctx context.Context, appID uuid.UUID, input application.CreateInput) (*domain.Application, error)
	Patch(ctx context.Context, appID uuid.UUID, input application.PatchInput) (*domain.Application, error)
	BulkStatus(ctx context.Context, input application.BulkStatusInput) (*application.BulkStatusResult, error)
	Delete(ctx context.Context, appID uuid.UUID) error
}

// ApplicationHandler serves the /applications endpoints.
type ApplicationHandler struct {
	svc applicationService
	log *slog.Logger
}

// NewApplicationHandler creates an ApplicationHandler.
func NewApplicationHandler(svc applicationService, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{svc: svc, log: logger.With("handler", "applications")}
}

// ---------------------------------------------------------------------------
// Wire types
// ---------------------------------------------------------------------------

type applicationRequest struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	Status      string `json:"status"`
	Mode        string `json:"mode"`
	DateApplied string `json:"dateApplied"`

	SalaryExact *int `json:"salaryExact"`
	SalaryMin   *int `json:"salaryMin"`
	SalaryMax   *int `json:"salaryMax"`

	Source *string `json:"source"`
	Notes  *string `json:"notes"`

	TailoredResume      bool `json:"tailoredResume"`
	TailoredCoverLetter bool `json:"tailoredCoverLetter"`

	InterviewRoundsDone  int  `json:"interviewRoundsDone"`
	InterviewRoundsTotal *int `json:"interviewRoundsTotal"`

	TagIDs []uuid.UUID `json:"tagIds"`
}

type bulkStatusRequest struct {
	ApplicationIDs []uuid.UUID `json:"applicationIds"`
	Update         struct {
		Status string `json:"status"`
	} `json:"update"`
}

type applicationResponse struct {
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

	Source *string `json:"source,omitempty"`
	Notes  *string `json:"notes,omitempty"`

	TailoredResume      bool `json:"tailoredResume"`
	TailoredCoverLetter bool `json:"tailoredCoverLetter"`

	InterviewRoundsDone  int  `json:"interviewRoundsDone"`
	InterviewRoundsTotal *int `json:"interviewRoundsTotal"`

	Tags []tagResponse `json:"tags"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type listResponse struct {
	Items []applicationResponse `json:"items"`
	Total int                   `json:"total"`
}

type bulkStatusResponse struct {
	Updated int64 `json:"updated"`
}

type statsResponse struct {
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

func toApplicationResponse(app *domain.Application) applicationResponse {
	tags := make([]tagResponse, 0, len(app.Tags))
	for _, t := range app.Tags {
		tags = append(tags, toTagResponse(t))
	}
	return applicationResponse{
		ID:                   app.ID.String(),
		Company:              app.Company,
		Position:             app.Position,
		Status:               app.Status.String(),
		Mode:                 app.Mode.String(),
		DateApplied:          app.DateApplied.Format(dateLayout),
		SalaryExact:          app.SalaryExact,
		SalaryMin:            app.SalaryMin,
		SalaryMax:            app.SalaryMax,
		EffectiveSalary:      app.EffectiveSalary,
		Source:               app.Source,
		Notes:                app.Notes,
		TailoredResume:       app.TailoredResume,
		TailoredCoverLetter:  app.TailoredCoverLetter,
		InterviewRoundsDone:  app.InterviewRoundsDone,
		InterviewRoundsTotal: app.InterviewRoundsTotal,
		Tags:                 tags,
		CreatedAt:            app.CreatedAt,
		UpdatedAt:            app.UpdatedAt,
	}
}

func toListResponse(items []domain.Application, total int) listResponse {
	out := make([]applicationResponse, 0, len(items))
	for i := range items {
		out = append(out, toApplicationResponse(&items[i]))
	}
	return listResponse{Items: out, Total: total}
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

// List handles GET /applications. Array-valued filters use repeated-key
// encoding; malformed pagination values fall back to defaults instead of
// erroring.
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	input := decodeListQuery(r.URL.Query())

	result, err := h.svc.List(r.Context(), input)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toListResponse(result.Items, result.Total))
}

// ListAll handles GET /applications/all?activity=.
func (h *ApplicationHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	activity := domain.Activity(r.URL.Query().Get("activity"))

	items, err := h.svc.ListAll(r.Context(), activity)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toListResponse(items, len(items)))
}

// Stats handles GET /applications/stats.
func (h *ApplicationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.Stats(r.Context())
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	resp := statsResponse{Counts: make(map[string]int, len(counts))}
	for _, c := range counts {
		resp.Counts[c.Status.String()] = c.Count
		resp.Total += c.Count
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /applications/{id}.
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid application id")
		return
	}

	app, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toApplicationResponse(app))
}

// Create handles POST /applications.
func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req applicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input, err := toCreateInput(req)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	app, err := h.svc.Create(r.Context(), input)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toApplicationResponse(app))
}

// Update handles PUT /applications/{id} (full replace).
func (h *ApplicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid application id")
		return
	}

	var req applicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input, err := toCreateInput(req)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	app, err := h.svc.Update(r.Context(), id, input)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toApplicationResponse(app))
}

// Patch handles PATCH /applications/{id} (partial update). Absent JSON keys
// leave the corresponding fields untouched.
func (h *ApplicationHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid application id")
		return
	}

	input, err := decodePatchBody(r)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	app, err := h.svc.Patch(r.Context(), id, input)
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toApplicationResponse(app))
}

// BulkStatus handles PATCH /applications/statusUpdate.
func (h *ApplicationHandler) BulkStatus(w http.ResponseWriter, r *http.Request) {
	var req bulkStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.BulkStatus(r.Context(), application.BulkStatusInput{
		ApplicationIDs: req.ApplicationIDs,
		Status:         domain.ApplicationStatus(req.Update.Status),
	})
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bulkStatusResponse{Updated: result.Updated})
}

// Delete handles DELETE /applications/{id}.
func (h *ApplicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid application id")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondError(h.log, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

func decodeListQuery(q url.Values) application.ListInput {
	input := application.ListInput{
		TagNames: q["tagNames"],
		Search:   q.Get("q"),
		SortBy:   q.Get("sortBy"),
		SortDir:  q.Get("sortDir"),
	}

	for _, s := range q["statuses"] {
		input.Statuses = append(input.Statuses, domain.ApplicationStatus(s))
	}
	for _, m := range q["modes"] {
		input.Modes = append(input.Modes, domain.WorkMode(m))
	}

	if t := parseDate(q.Get("dateFrom")); t != nil {
		input.DateFrom = t
	}
	if t := parseDate(q.Get("dateTo")); t != nil {
		input.DateTo = t
	}

	if v, err := strconv.Atoi(q.Get("salaryMin")); err == nil {
		input.SalaryMin = &v
	}
	if v, err := strconv.Atoi(q.Get("salaryMax")); err == nil {
		input.SalaryMax = &v
	}

	// Malformed numbers decode to zero, which Normalize treats as default.
	input.Page, _ = strconv.Atoi(q.Get("page"))
	input.PageSize, _ = strconv.Atoi(q.Get("itemsPerPage"))

	return input
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	return nil
}

func toCreateInput(req applicationRequest) (application.CreateInput, error) {
	dateApplied, err := time.Parse(dateLayout, req.DateApplied)
	if err != nil {
		return application.CreateInput{}, domain.NewValidationError("dateApplied", "must be a YYYY-MM-DD date")
	}

	return application.CreateInput{
		Company:              req.Company,
		Position:             req.Position,
		Status:               domain.ApplicationStatus(req.Status),
		Mode:                 domain.WorkMode(req.Mode),
		DateApplied:          dateApplied,
		SalaryExact:          req.SalaryExact,
		SalaryMin:            req.SalaryMin,
		SalaryMax:            req.SalaryMax,
		Source:               req.Source,
		Notes:                req.Notes,
		TailoredResume:       req.TailoredResume,
		TailoredCoverLetter:  req.TailoredCoverLetter,
		InterviewRoundsDone:  req.InterviewRoundsDone,
		InterviewRoundsTotal: req.InterviewRoundsTotal,
		TagIDs:               req.TagIDs,
	}, nil
}

// decodePatchBody distinguishes absent keys from explicit nulls, which a
// plain struct decode cannot do. The three salary keys form one group:
// sending any of them applies all three.
func decodePatchBody(r *http.Request) (application.PatchInput, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return application.PatchInput{}, domain.NewValidationError("body", "invalid request body")
	}

	var input application.PatchInput
	var fieldErr error

	field := func(key string, dst any) bool {
		msg, ok := raw[key]
		if !ok {
			return false
		}
		if err := json.Unmarshal(msg, dst); err != nil && fieldErr == nil {
			fieldErr = domain.NewValidationError(key, "malformed value")
		}
		return true
	}

	field("company", &input.Company)
	field("position", &input.Position)
	field("source", &input.Source)
	field("notes", &input.Notes)
	field("tailoredResume", &input.TailoredResume)
	field("tailoredCoverLetter", &input.TailoredCoverLetter)
	field("interviewRoundsDone", &input.InterviewRoundsDone)
	field("interviewRoundsTotal", &input.InterviewRoundsTotal)
	field("tagIds", &input.TagIDs)

	var status, mode, date *string
	field("status", &status)
	field("mode", &mode)
	field("dateApplied", &date)
	if status != nil {
		s := domain.ApplicationStatus(*status)
		input.Status = &s
	}
	if mode != nil {
		m := domain.WorkMode(*mode)
		input.Mode = &m
	}
	if date != nil {
		t, err := time.Parse(dateLayout, *date)
		if err != nil {
			return application.PatchInput{}, domain.NewValidationError("dateApplied", "must be a YYYY-MM-DD date")
		}
		input.DateApplied = &t
	}

	exactSet := field("salaryExact", &input.SalaryExact)
	minSet := field("salaryMin", &input.SalaryMin)
	maxSet := field("salaryMax", &input.SalaryMax)
	input.SalarySet = exactSet || minSet || maxSet

	if fieldErr != nil {
		return application.PatchInput{}, fieldErr
	}
	return input, nil
}
