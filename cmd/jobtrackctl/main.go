// Command jobtrackctl is a terminal client for the jobtrack API. It keeps a
// window cache per invocation chain, applies status changes optimistically,
// and persists the access token between runs.
//
// Usage:
//
//	jobtrackctl login --email you@example.com --password secret
//	jobtrackctl list --status Applied,Interviewing --sort effectiveSalary --dir desc --page 2
//	jobtrackctl add --company Initech --position "Backend Engineer" --date 2026-03-10
//	jobtrackctl set-status --status Rejected <id>...
//	jobtrackctl rm <id>...
//	jobtrackctl stats
//	jobtrackctl tags
//
// The server address comes from --server or JOBTRACK_SERVER
// (default http://localhost:8080).
//
// Exit codes: 0 = success, 1 = error, 2 = usage.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/appdex/jobtrack-backend/internal/client/api"
	"github.com/appdex/jobtrack-backend/internal/client/cache"
	"github.com/appdex/jobtrack-backend/internal/client/list"
	"github.com/appdex/jobtrack-backend/internal/client/mutation"
	"github.com/appdex/jobtrack-backend/internal/client/querystate"
	"github.com/appdex/jobtrack-backend/internal/domain"
)

const dateLayout = "2006-01-02"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cmd, args := os.Args[1], os.Args[2:]
	if err := run(ctx, cmd, args); err != nil {
		fmt.Fprintf(os.Stderr, "jobtrackctl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string) error {
	env := newEnv()

	switch cmd {
	case "login":
		return env.login(ctx, args)
	case "list":
		return env.list(ctx, args)
	case "add":
		return env.add(ctx, args)
	case "set-status":
		return env.setStatus(ctx, args)
	case "rm":
		return env.remove(ctx, args)
	case "stats":
		return env.stats(ctx, args)
	case "tags":
		return env.tags(ctx, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: jobtrackctl <login|list|add|set-status|rm|stats|tags> [flags]")
}

// env bundles the client stack one command invocation needs.
type env struct {
	server    string
	tokenPath string
	log       *slog.Logger
}

func newEnv() *env {
	server := os.Getenv("JOBTRACK_SERVER")
	if server == "" {
		server = "http://localhost:8080"
	}
	home, _ := os.UserHomeDir()
	return &env{
		server:    server,
		tokenPath: filepath.Join(home, ".config", "jobtrack", "token"),
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (e *env) client() *api.Client {
	token, _ := os.ReadFile(e.tokenPath)
	return api.New(e.server, api.WithToken(strings.TrimSpace(string(token))))
}

func (e *env) saveToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(e.tokenPath), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(e.tokenPath, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func (e *env) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	server := fs.String("server", e.server, "server base URL")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	_ = fs.Parse(args)

	if *email == "" || *password == "" {
		return fmt.Errorf("login requires --email and --password")
	}

	e.server = *server
	client := api.New(e.server)
	if err := client.Login(ctx, *email, *password); err != nil {
		return err
	}
	if err := e.saveToken(client.Token()); err != nil {
		return err
	}
	fmt.Println("logged in")
	return nil
}

func (e *env) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	statuses := fs.String("status", "", "comma-separated statuses")
	modes := fs.String("mode", "", "comma-separated work modes")
	tagNames := fs.String("tag", "", "comma-separated tag names")
	search := fs.String("q", "", "substring search on company and position")
	salaryMin := fs.Int("salary-min", 0, "minimum effective salary")
	salaryMax := fs.Int("salary-max", 0, "maximum effective salary")
	sortBy := fs.String("sort", querystate.DefaultSortBy, "sort field")
	sortDir := fs.String("dir", querystate.DefaultSortDir, "asc or desc")
	page := fs.Int("page", 1, "page number")
	size := fs.Int("size", querystate.DefaultPageSize, "rows per page")
	_ = fs.Parse(args)

	state := querystate.Default()
	for _, raw := range splitList(*statuses) {
		state.Statuses = append(state.Statuses, domain.ApplicationStatus(raw))
	}
	for _, raw := range splitList(*modes) {
		state.Modes = append(state.Modes, domain.WorkMode(raw))
	}
	state.TagNames = splitList(*tagNames)
	state.Search = *search
	if *salaryMin > 0 {
		state.SalaryMin = salaryMin
	}
	if *salaryMax > 0 {
		state.SalaryMax = salaryMax
	}
	state.SortBy = *sortBy
	state.SortDir = *sortDir
	state.Page = *page
	state.PageSize = *size

	ctrl := list.NewController(e.client(), cache.New(), e.log)
	result, err := ctrl.Load(ctx, state)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOMPANY\tPOSITION\tSTATUS\tMODE\tAPPLIED\tSALARY\tTAGS")
	for _, app := range result.Rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(app.ID), app.Company, app.Position, app.Status, app.Mode,
			app.DateApplied.Format(dateLayout), formatSalary(&app), joinTags(app.Tags))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("page %d of %d, %d total\n", result.Page, result.TotalPages, result.TotalCount)
	return nil
}

func (e *env) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	company := fs.String("company", "", "company name")
	position := fs.String("position", "", "position title")
	status := fs.String("status", string(domain.StatusApplied), "application status")
	mode := fs.String("mode", string(domain.ModeRemote), "work mode")
	date := fs.String("date", time.Now().Format(dateLayout), "date applied (YYYY-MM-DD)")
	salary := fs.Int("salary", 0, "exact salary")
	notes := fs.String("notes", "", "free-form notes")
	_ = fs.Parse(args)

	dateApplied, err := time.Parse(dateLayout, *date)
	if err != nil {
		return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
	}

	form := api.ApplicationForm{
		Company:     *company,
		Position:    *position,
		Status:      *status,
		Mode:        *mode,
		DateApplied: dateApplied,
	}
	if *salary > 0 {
		form.SalaryExact = salary
	}
	if *notes != "" {
		form.Notes = notes
	}

	coord := mutation.NewCoordinator(e.client(), cache.New(), e.log)
	app, err := coord.Create(ctx, form)
	if err != nil {
		return err
	}
	fmt.Printf("created %s (%s at %s)\n", app.ID, app.Position, app.Company)
	return nil
}

func (e *env) setStatus(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("set-status", flag.ExitOnError)
	status := fs.String("status", "", "target status")
	_ = fs.Parse(args)

	target := domain.ApplicationStatus(*status)
	if !target.IsValid() {
		return fmt.Errorf("--status must be one of %v", domain.Statuses)
	}
	ids, err := parseIDs(fs.Args())
	if err != nil {
		return err
	}

	coord := mutation.NewCoordinator(e.client(), cache.New(), e.log)
	updated, err := coord.BulkStatus(ctx, ids, target)
	if err != nil {
		return err
	}
	fmt.Printf("updated %d of %d\n", updated, len(ids))
	return nil
}

func (e *env) remove(ctx context.Context, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	coord := mutation.NewCoordinator(e.client(), cache.New(), e.log)
	if err := coord.BulkDelete(ctx, ids); err != nil {
		return err
	}
	fmt.Printf("deleted %d\n", len(ids))
	return nil
}

func (e *env) stats(ctx context.Context, _ []string) error {
	counts, err := e.client().Stats(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	total := 0
	for _, status := range domain.Statuses {
		if n := counts[status.String()]; n > 0 {
			fmt.Fprintf(w, "%s\t%d\n", status, n)
			total += n
		}
	}
	fmt.Fprintf(w, "total\t%d\n", total)
	return w.Flush()
}

func (e *env) tags(ctx context.Context, _ []string) error {
	tags, err := e.client().ListTags(ctx)
	if err != nil {
		return err
	}
	for _, t := range tags {
		fmt.Printf("%s\t%s\n", shortID(t.ID), t.Name)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseIDs(args []string) ([]uuid.UUID, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("at least one application id is required")
	}
	ids := make([]uuid.UUID, 0, len(args))
	for _, raw := range args {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", raw, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

func formatSalary(app *domain.Application) string {
	switch {
	case app.SalaryExact != nil:
		return strconv.Itoa(*app.SalaryExact)
	case app.SalaryMin != nil && app.SalaryMax != nil:
		return fmt.Sprintf("%d-%d", *app.SalaryMin, *app.SalaryMax)
	case app.EffectiveSalary != nil:
		return strconv.Itoa(*app.EffectiveSalary)
	}
	return "-"
}

func joinTags(tags []domain.Tag) string {
	if len(tags) == 0 {
		return "-"
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return strings.Join(names, ",")
}
