package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edkuperman/techboard/internal/config"
	"github.com/edkuperman/techboard/internal/db"
	"github.com/edkuperman/techboard/internal/task"
)

// Store interfaces cover exactly what the handlers call, so tests can
// substitute fakes. The pgx repositories satisfy them.

type EntryStore interface {
	TestConnection(ctx context.Context) error
	List(ctx context.Context, limit int) ([]db.Entry, error)
	Create(ctx context.Context, title, content string) (*db.Entry, error)
	Get(ctx context.Context, id int64) (*db.Entry, error)
}

type CronStore interface {
	task.CronStore
	ListRuns(ctx context.Context, limit int) ([]db.CronRecord, error)
}

type CompanyStore interface {
	ListWithWebsites(ctx context.Context, limit int) ([]db.Company, error)
}

type LinkStore interface {
	List(ctx context.Context, limit int) ([]db.Link, error)
}

// Handlers wires up all API endpoints.
type Handlers struct {
	cfg       config.Config
	entries   EntryStore
	cron      CronStore
	companies CompanyStore
	links     LinkStore
	runner    *task.Runner
	validate  *validator.Validate
}

func NewHandlers(cfg config.Config, pool *pgxpool.Pool) *Handlers {
	cron := db.NewCronRepo(pool)
	return &Handlers{
		cfg:       cfg,
		entries:   db.NewEntryRepo(pool),
		cron:      cron,
		companies: db.NewCompanyRepo(pool),
		links:     db.NewLinkRepo(pool),
		runner:    task.NewRunner(cron),
		validate:  validator.New(),
	}
}

// ===== Service endpoints =====

func (h *Handlers) home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]any{
		"message":   "Welcome to the techboard API",
		"status":    "running",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]any{
		"environment": h.cfg.Env,
		"port":        h.cfg.Port,
		"message":     "API is running",
	})
}

func (h *Handlers) dbTest(w http.ResponseWriter, r *http.Request) {
	if err := h.entries.TestConnection(r.Context()); err != nil {
		h.storeErr(w, err)
		return
	}
	writeJSON(w, 200, map[string]string{
		"status":   "ok",
		"database": "connected",
	})
}

// ===== Entries =====

func (h *Handlers) listEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.entries.List(r.Context(), 100)
	if err != nil {
		h.storeErr(w, err)
		return
	}
	if entries == nil {
		entries = []db.Entry{}
	}
	writeJSON(w, 200, entries)
}

type createEntryRequest struct {
	Title   string `json:"title"   validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
}

func (h *Handlers) createEntry(w http.ResponseWriter, r *http.Request) {
	var body createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, 400, fmt.Errorf("invalid JSON body"))
		return
	}
	if err := h.validate.Struct(body); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			writeErr(w, 400, fmt.Errorf("%s is missing or invalid", jsonField(f.Field())))
			return
		}
		writeErr(w, 400, err)
		return
	}

	entry, err := h.entries.Create(r.Context(), body.Title, body.Content)
	if err != nil {
		h.storeErr(w, err)
		return
	}
	writeJSON(w, 201, entry)
}

func (h *Handlers) getEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeErr(w, 400, fmt.Errorf("invalid entry id"))
		return
	}
	entry, err := h.entries.Get(r.Context(), id)
	if err != nil {
		h.storeErr(w, err)
		return
	}
	writeJSON(w, 200, entry)
}

// ===== Cron =====

// cronRun is the manual trigger: it calls the same task body the scheduler
// invokes and converts a failed run into an HTTP error response.
func (h *Handlers) cronRun(w http.ResponseWriter, r *http.Request) {
	res := h.runner.Run(r.Context())
	if !res.Success {
		writeErr(w, 500, h.sanitize(fmt.Errorf("cron job failed: %v", res.Errors)))
		return
	}
	writeJSON(w, 200, res)
}

func (h *Handlers) listRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.cron.ListRuns(r.Context(), 100)
	if err != nil {
		h.storeErr(w, err)
		return
	}
	if runs == nil {
		runs = []db.CronRecord{}
	}
	writeJSON(w, 200, runs)
}

// ===== Companies & links =====

func (h *Handlers) listCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.companies.ListWithWebsites(r.Context(), 100)
	if err != nil {
		h.storeErr(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{
		"count":   len(companies),
		"results": companies,
	})
}

func (h *Handlers) listLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.links.List(r.Context(), 100)
	if err != nil {
		h.storeErr(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{
		"count":   len(links),
		"results": links,
	})
}

func (h *Handlers) notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 404, map[string]string{
		"error":   "Not Found",
		"message": "The requested resource was not found",
	})
}

// ===== Error mapping =====

// storeErr is the single place repository error kinds become status codes.
func (h *Handlers) storeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, db.ErrValidation):
		writeErr(w, 400, err)
	case errors.Is(err, db.ErrNotFound):
		writeErr(w, 404, err)
	default:
		writeErr(w, 500, h.sanitize(err))
	}
}

// sanitize hides backend detail from clients in production; the full error
// has already been surfaced to the log by the layer that produced it.
func (h *Handlers) sanitize(err error) error {
	if h.cfg.IsProduction() {
		return fmt.Errorf("internal server error")
	}
	return err
}

// jsonField maps a struct field name back to its JSON key for 400 bodies.
func jsonField(name string) string {
	switch name {
	case "Title":
		return "title"
	case "Content":
		return "content"
	}
	return name
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
