// Package application implements the Application repository using
// PostgreSQL. The windowed listing is built with squirrel so filter
// predicates compose dynamically; single-row paths use raw SQL.
package application

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/appdex/jobtrack-backend/internal/adapter/postgres"
	"github.com/appdex/jobtrack-backend/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const applicationColumns = `a.id, a.user_id, a.company, a.position, a.status, a.mode,
	a.date_applied, a.salary_exact, a.salary_min, a.salary_max, a.effective_salary,
	a.source, a.notes, a.tailored_resume, a.tailored_cover_letter,
	a.interview_rounds_done, a.interview_rounds_total, a.created_at, a.updated_at`

// Repo provides application persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new application repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Listing (query resolver)
// ---------------------------------------------------------------------------

// Find returns one page of the owner's applications matching the filter,
// plus the total count over the same predicate. Rows are ordered by the
// requested column with id as a stable tiebreaker so identical requests
// never duplicate or skip rows across pages. Tags are attached in a second
// batched query.
func (r *Repo) Find(ctx context.Context, userID uuid.UUID, f domain.ApplicationFilter) ([]domain.Application, int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)
	where := predicate(userID, f)

	dir := "ASC"
	if f.SortDir == domain.SortDesc {
		dir = "DESC"
	}

	query, args, err := psql.
		Select(applicationColumns).
		From("applications a").
		Where(where).
		OrderBy(sortColumn(f.SortBy)+" "+dir, "a.id ASC").
		Limit(uint64(f.PageSize)).
		Offset(uint64(f.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build find query: %w", err)
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("find applications: %w", err)
	}
	defer rows.Close()

	apps, err := scanApplications(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("find applications: %w", err)
	}

	countQuery, countArgs, err := psql.
		Select("count(*)").
		From("applications a").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := querier.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	if err := r.attachTags(ctx, apps); err != nil {
		return nil, 0, err
	}

	return apps, total, nil
}

// ListAll returns the owner's full unpaginated list for board/export views,
// optionally restricted to active or archived statuses, ordered by
// date_applied descending.
func (r *Repo) ListAll(ctx context.Context, userID uuid.UUID, activity domain.Activity) ([]domain.Application, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	builder := psql.
		Select(applicationColumns).
		From("applications a").
		Where(sq.Eq{"a.user_id": userID}).
		OrderBy("a.date_applied DESC", "a.id ASC")

	archived := make([]string, len(domain.ArchivedStatuses))
	for i, s := range domain.ArchivedStatuses {
		archived[i] = string(s)
	}
	switch activity {
	case domain.ActivityActive:
		builder = builder.Where(sq.NotEq{"a.status": archived})
	case domain.ActivityArchived:
		builder = builder.Where(sq.Eq{"a.status": archived})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list-all query: %w", err)
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list all applications: %w", err)
	}
	defer rows.Close()

	apps, err := scanApplications(rows)
	if err != nil {
		return nil, fmt.Errorf("list all applications: %w", err)
	}

	if err := r.attachTags(ctx, apps); err != nil {
		return nil, err
	}

	return apps, nil
}

// CountByStatus returns application counts grouped by status for the owner.
// Only non-zero buckets are returned.
func (r *Repo) CountByStatus(ctx context.Context, userID uuid.UUID) ([]domain.StatusCount, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx,
		`SELECT status, count(*) FROM applications WHERE user_id = $1 GROUP BY status`, userID)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	counts := []domain.StatusCount{}
	for rows.Next() {
		var sc domain.StatusCount
		var status string
		if err := rows.Scan(&status, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		sc.Status = domain.ApplicationStatus(status)
		counts = append(counts, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}

	return counts, nil
}

// ---------------------------------------------------------------------------
// Single-row reads
// ---------------------------------------------------------------------------

const getByIDSQL = `
SELECT a.id, a.user_id, a.company, a.position, a.status, a.mode,
       a.date_applied, a.salary_exact, a.salary_min, a.salary_max, a.effective_salary,
       a.source, a.notes, a.tailored_resume, a.tailored_cover_letter,
       a.interview_rounds_done, a.interview_rounds_total, a.created_at, a.updated_at
FROM applications a
WHERE a.id = $1`

// GetByID returns an application by primary key. The row is loaded without
// an owner predicate so a foreign row yields domain.ErrForbidden rather than
// domain.ErrNotFound.
func (r *Repo) GetByID(ctx context.Context, userID, appID uuid.UUID) (*domain.Application, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, getByIDSQL, appID)
	if err != nil {
		return nil, postgres.MapError(err, "application", appID)
	}
	defer rows.Close()

	apps, err := scanApplications(rows)
	if err != nil {
		return nil, postgres.MapError(err, "application", appID)
	}
	if len(apps) == 0 {
		return nil, fmt.Errorf("application %s: %w", appID, domain.ErrNotFound)
	}

	app := apps[0]
	if app.UserID != userID {
		return nil, fmt.Errorf("application %s: %w", appID, domain.ErrForbidden)
	}

	if err := r.attachTags(ctx, apps); err != nil {
		return nil, err
	}
	app = apps[0]

	return &app, nil
}

// ---------------------------------------------------------------------------
// Writes
// ---------------------------------------------------------------------------

const insertSQL = `
INSERT INTO applications (
	id, user_id, company, position, status, mode, date_applied,
	salary_exact, salary_min, salary_max, effective_salary,
	source, notes, tailored_resume, tailored_cover_letter,
	interview_rounds_done, interview_rounds_total, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`

// Create inserts a new application and its tag links. Timestamps and the id
// are assigned here.
func (r *Repo) Create(ctx context.Context, app *domain.Application) (*domain.Application, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	app.ID = uuid.New()
	app.CreatedAt = now
	app.UpdatedAt = now

	_, err := querier.Exec(ctx, insertSQL,
		app.ID, app.UserID, app.Company, app.Position, string(app.Status), string(app.Mode),
		app.DateApplied, app.SalaryExact, app.SalaryMin, app.SalaryMax, app.EffectiveSalary,
		app.Source, app.Notes, app.TailoredResume, app.TailoredCoverLetter,
		app.InterviewRoundsDone, app.InterviewRoundsTotal, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "application", app.ID)
	}

	if err := r.replaceTagLinks(ctx, app.ID, app.Tags); err != nil {
		return nil, err
	}

	return app, nil
}

const updateSQL = `
UPDATE applications SET
	company = $2, position = $3, status = $4, mode = $5, date_applied = $6,
	salary_exact = $7, salary_min = $8, salary_max = $9, effective_salary = $10,
	source = $11, notes = $12, tailored_resume = $13, tailored_cover_letter = $14,
	interview_rounds_done = $15, interview_rounds_total = $16, updated_at = $17
WHERE id = $1 AND user_id = $18`

// Update persists all mutable fields of an application and replaces its tag
// links when app.Tags is non-nil. The WHERE clause re-checks ownership as a
// safety net; the service resolves Forbidden beforehand via GetByID.
func (r *Repo) Update(ctx context.Context, app *domain.Application) (*domain.Application, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	app.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	tag, err := querier.Exec(ctx, updateSQL,
		app.ID, app.Company, app.Position, string(app.Status), string(app.Mode), app.DateApplied,
		app.SalaryExact, app.SalaryMin, app.SalaryMax, app.EffectiveSalary,
		app.Source, app.Notes, app.TailoredResume, app.TailoredCoverLetter,
		app.InterviewRoundsDone, app.InterviewRoundsTotal, app.UpdatedAt, app.UserID,
	)
	if err != nil {
		return nil, postgres.MapError(err, "application", app.ID)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("application %s: %w", app.ID, domain.ErrNotFound)
	}

	if app.Tags != nil {
		if err := r.replaceTagLinks(ctx, app.ID, app.Tags); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// BulkUpdateStatus sets the status on every listed application owned by the
// user. Ids not owned by the user are silently excluded by the predicate;
// the returned count reflects only rows actually updated.
func (r *Repo) BulkUpdateStatus(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, status domain.ApplicationStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx,
		`UPDATE applications SET status = $1, updated_at = $2 WHERE id = ANY($3) AND user_id = $4`,
		string(status), time.Now().UTC().Truncate(time.Microsecond), ids, userID,
	)
	if err != nil {
		return 0, postgres.MapError(err, "application", uuid.Nil)
	}

	return tag.RowsAffected(), nil
}

// Delete removes an application after an ownership check, so a foreign row
// yields domain.ErrForbidden. Tag links go away via ON DELETE CASCADE.
func (r *Repo) Delete(ctx context.Context, userID, appID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var ownerID uuid.UUID
	err := querier.QueryRow(ctx, `SELECT user_id FROM applications WHERE id = $1`, appID).Scan(&ownerID)
	if err != nil {
		return postgres.MapError(err, "application", appID)
	}
	if ownerID != userID {
		return fmt.Errorf("application %s: %w", appID, domain.ErrForbidden)
	}

	if _, err := querier.Exec(ctx, `DELETE FROM applications WHERE id = $1`, appID); err != nil {
		return postgres.MapError(err, "application", appID)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Tag links
// ---------------------------------------------------------------------------

// replaceTagLinks rewrites the application_tags rows for one application.
func (r *Repo) replaceTagLinks(ctx context.Context, appID uuid.UUID, tags []domain.Tag) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx,
		`DELETE FROM application_tags WHERE application_id = $1`, appID); err != nil {
		return fmt.Errorf("clear tag links: %w", err)
	}

	if len(tags) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, t := range tags {
		batch.Queue(
			`INSERT INTO application_tags (application_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			appID, t.ID)
	}

	results := querier.SendBatch(ctx, batch)
	defer results.Close()

	for range tags {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("link tag: %w", err)
		}
	}

	return nil
}

const tagsByAppIDsSQL = `
SELECT at.application_id, t.id, t.user_id, t.name, t.created_at
FROM application_tags at
JOIN tags t ON t.id = at.tag_id
WHERE at.application_id = ANY($1::uuid[])
ORDER BY at.application_id, t.name`

// attachTags loads tags for a batch of applications in one query and
// attaches them in place. Applications without tags get an empty slice.
func (r *Repo) attachTags(ctx context.Context, apps []domain.Application) error {
	if len(apps) == 0 {
		return nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	ids := make([]uuid.UUID, len(apps))
	for i, a := range apps {
		ids[i] = a.ID
	}

	rows, err := querier.Query(ctx, tagsByAppIDsSQL, ids)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	defer rows.Close()

	byApp := make(map[uuid.UUID][]domain.Tag)
	for rows.Next() {
		var appID uuid.UUID
		var t domain.Tag
		if err := rows.Scan(&appID, &t.ID, &t.UserID, &t.Name, &t.CreatedAt); err != nil {
			return fmt.Errorf("scan tag: %w", err)
		}
		byApp[appID] = append(byApp[appID], t)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate tags: %w", err)
	}

	for i := range apps {
		tags := byApp[apps[i].ID]
		if tags == nil {
			tags = []domain.Tag{}
		}
		apps[i].Tags = tags
	}

	return nil
}

// ---------------------------------------------------------------------------
// Scanning
// ---------------------------------------------------------------------------

func scanApplications(rows pgx.Rows) ([]domain.Application, error) {
	var apps []domain.Application
	for rows.Next() {
		var (
			a      domain.Application
			status string
			mode   string
		)
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Company, &a.Position, &status, &mode,
			&a.DateApplied, &a.SalaryExact, &a.SalaryMin, &a.SalaryMax, &a.EffectiveSalary,
			&a.Source, &a.Notes, &a.TailoredResume, &a.TailoredCoverLetter,
			&a.InterviewRoundsDone, &a.InterviewRoundsTotal, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		a.Status = domain.ApplicationStatus(status)
		a.Mode = domain.WorkMode(mode)
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if apps == nil {
		apps = []domain.Application{}
	}

	return apps, nil
}
