// Package seed populates a database with a demo account and a realistic
// spread of job applications. It backs cmd/seeder and is meant for local
// development and demos, not production.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/appdex/jobtrack-backend/internal/domain"
)

type userRepo interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
}

type tagRepo interface {
	FindOrCreate(ctx context.Context, userID uuid.UUID, name string) (*domain.Tag, error)
}

type appRepo interface {
	Create(ctx context.Context, app *domain.Application) (*domain.Application, error)
}

// Config controls what the seeder generates.
type Config struct {
	Email        string
	Username     string
	Password     string
	Applications int
	// Rand seeds the generator; equal seeds produce equal datasets.
	Rand int64
	// DryRun generates without writing.
	DryRun bool
}

// Result summarizes one seeding run.
type Result struct {
	UserCreated  bool
	Tags         int
	Applications int
	Duration     time.Duration
}

// Seeder generates demo data through the regular repositories so every row
// passes the same constraints as user-created data.
type Seeder struct {
	log   *slog.Logger
	users userRepo
	tags  tagRepo
	apps  appRepo
}

func New(logger *slog.Logger, users userRepo, tags tagRepo, apps appRepo) *Seeder {
	return &Seeder{
		log:   logger.With("component", "seeder"),
		users: users,
		tags:  tags,
		apps:  apps,
	}
}

var companies = []string{
	"Initech", "Globex", "Hooli", "Umbrella Labs", "Stark Industries",
	"Wayne Enterprises", "Pied Piper", "Aperture Science", "Cyberdyne",
	"Tyrell Corp", "Wonka Industries", "Acme Corp", "Soylent Corp",
	"Massive Dynamic", "Vandelay Industries", "Oceanic Airlines",
}

var positions = []string{
	"Backend Engineer", "Senior Backend Engineer", "Platform Engineer",
	"Site Reliability Engineer", "Staff Engineer", "DevOps Engineer",
	"Software Engineer", "Infrastructure Engineer", "Data Engineer",
}

var sources = []string{"LinkedIn", "Referral", "Company site", "HeadHunter", "Recruiter email"}

var tagNames = []string{"golang", "remote-first", "startup", "big-tech", "referral", "dream-job", "relocation"}

// Run seeds the demo dataset. Existing accounts are reused, so repeated
// runs append applications instead of failing.
func (s *Seeder) Run(ctx context.Context, cfg Config) (*Result, error) {
	start := time.Now()
	rng := rand.New(rand.NewSource(cfg.Rand))
	result := &Result{}

	user, err := s.ensureUser(ctx, cfg, result)
	if err != nil {
		return nil, err
	}
	if cfg.DryRun {
		s.log.Info("dry run, nothing written")
		result.Duration = time.Since(start)
		return result, nil
	}

	tags := make([]domain.Tag, 0, len(tagNames))
	for _, name := range tagNames {
		tag, err := s.tags.FindOrCreate(ctx, user.ID, name)
		if err != nil {
			return nil, fmt.Errorf("seed tag %q: %w", name, err)
		}
		tags = append(tags, *tag)
	}
	result.Tags = len(tags)

	for i := 0; i < cfg.Applications; i++ {
		app := s.generate(rng, user.ID, tags)
		if _, err := s.apps.Create(ctx, app); err != nil {
			return nil, fmt.Errorf("seed application %d: %w", i, err)
		}
		result.Applications++
	}

	result.Duration = time.Since(start)
	s.log.Info("seeding complete",
		slog.Int("applications", result.Applications),
		slog.Int("tags", result.Tags),
		slog.Duration("duration", result.Duration),
	)
	return result, nil
}

func (s *Seeder) ensureUser(ctx context.Context, cfg Config, result *Result) (*domain.User, error) {
	existing, err := s.users.GetByEmail(ctx, cfg.Email)
	if err == nil {
		s.log.Info("reusing existing demo user", slog.String("email", cfg.Email))
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("look up demo user: %w", err)
	}
	if cfg.DryRun {
		return &domain.User{ID: uuid.New(), Email: cfg.Email}, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}

	user, err := s.users.Create(ctx, &domain.User{
		Email:        cfg.Email,
		Username:     cfg.Username,
		PasswordHash: string(hash),
		Role:         domain.UserRoleUser,
	})
	if err != nil {
		return nil, fmt.Errorf("create demo user: %w", err)
	}
	result.UserCreated = true
	s.log.Info("created demo user", slog.String("email", cfg.Email))
	return user, nil
}

func (s *Seeder) generate(rng *rand.Rand, userID uuid.UUID, tags []domain.Tag) *domain.Application {
	app := &domain.Application{
		UserID:   userID,
		Company:  companies[rng.Intn(len(companies))],
		Position: positions[rng.Intn(len(positions))],
		Status:   domain.Statuses[rng.Intn(len(domain.Statuses))],
		Mode:     pickMode(rng),
		// Spread applications over roughly the last half year.
		DateApplied: time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -rng.Intn(180)),
	}

	switch rng.Intn(4) {
	case 0:
		exact := 80000 + rng.Intn(120)*1000
		app.SalaryExact = &exact
	case 1:
		min := 70000 + rng.Intn(80)*1000
		max := min + 10000 + rng.Intn(60)*1000
		app.SalaryMin = &min
		app.SalaryMax = &max
	}
	app.RecomputeEffectiveSalary()

	if rng.Intn(2) == 0 {
		src := sources[rng.Intn(len(sources))]
		app.Source = &src
	}

	app.TailoredResume = rng.Intn(3) == 0
	app.TailoredCoverLetter = app.TailoredResume && rng.Intn(2) == 0

	if app.Status == domain.StatusInterviewing || app.Status == domain.StatusOffer {
		total := 2 + rng.Intn(4)
		app.InterviewRoundsTotal = &total
		app.InterviewRoundsDone = rng.Intn(total + 1)
	}

	// Up to three distinct tags per application.
	for _, idx := range rng.Perm(len(tags))[:rng.Intn(4)] {
		app.Tags = append(app.Tags, tags[idx])
	}

	return app
}

func pickMode(rng *rand.Rand) domain.WorkMode {
	modes := []domain.WorkMode{domain.ModeRemote, domain.ModeHybrid, domain.ModeInOffice}
	return modes[rng.Intn(len(modes))]
}
