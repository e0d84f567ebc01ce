package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/appdex/jobtrack-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedUser creates a user with generated credentials and returns it.
func SeedUser(t *testing.T, pool *pgxpool.Pool) domain.User {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	user := domain.User{
		ID:           uuid.New(),
		Email:        "testuser-" + suffix + "@example.com",
		Username:     "testuser-" + suffix,
		PasswordHash: "x",
		Role:         domain.UserRoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, email, username, password_hash, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Email, user.Username, user.PasswordHash, string(user.Role),
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUser: %v", err)
	}

	return user
}

// SeedApplication inserts an application for the user with sensible defaults
// overridable via mutate.
func SeedApplication(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, mutate func(*domain.Application)) domain.Application {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	app := domain.Application{
		ID:          uuid.New(),
		UserID:      userID,
		Company:     "Acme " + uniqueSuffix(),
		Position:    "Software Engineer",
		Status:      domain.StatusApplied,
		Mode:        domain.ModeRemote,
		DateApplied: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if mutate != nil {
		mutate(&app)
	}
	app.RecomputeEffectiveSalary()

	_, err := pool.Exec(ctx,
		`INSERT INTO applications (
			id, user_id, company, position, status, mode, date_applied,
			salary_exact, salary_min, salary_max, effective_salary,
			source, notes, tailored_resume, tailored_cover_letter,
			interview_rounds_done, interview_rounds_total, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		app.ID, app.UserID, app.Company, app.Position, string(app.Status), string(app.Mode),
		app.DateApplied, app.SalaryExact, app.SalaryMin, app.SalaryMax, app.EffectiveSalary,
		app.Source, app.Notes, app.TailoredResume, app.TailoredCoverLetter,
		app.InterviewRoundsDone, app.InterviewRoundsTotal, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedApplication: %v", err)
	}

	return app
}

// SeedTag inserts a tag for the user and optionally links it to applications.
func SeedTag(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, name string, appIDs ...uuid.UUID) domain.Tag {
	t.Helper()
	ctx := context.Background()

	tag := domain.Tag{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO tags (id, user_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		tag.ID, tag.UserID, tag.Name, tag.CreatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedTag: %v", err)
	}

	for _, appID := range appIDs {
		if _, err := pool.Exec(ctx,
			`INSERT INTO application_tags (application_id, tag_id) VALUES ($1, $2)`,
			appID, tag.ID); err != nil {
			t.Fatalf("testhelper: SeedTag link: %v", err)
		}
	}

	return tag
}
