// Package api wires the note operations to HTTP: routing, the
// middleware pipeline around each operation, and the JSON request and
// response shapes.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"example.com/daynotes/internal/config"
	"example.com/daynotes/internal/middleware"
	"example.com/daynotes/internal/notes"
	"example.com/daynotes/internal/ratelimit"
	"example.com/daynotes/internal/service"
)

// Operation names used as rate-limit keys. Reads are budgeted
// loosest, destructive operations tightest.
const (
	OpRead   = "read"
	OpList   = "list"
	OpWrite  = "write"
	OpDelete = "delete"
	OpRename = "rename"
)

// NoteService is the domain surface the handlers call.
// It allows unit-testing handlers without real storage.
type NoteService interface {
	Today() string
	GetNote(ctx context.Context, date string) (service.NoteView, error)
	SaveNote(ctx context.Context, date, content string) (service.SaveResult, error)
	DeleteNote(ctx context.Context, date string) (service.DeleteResult, error)
	RenameNote(ctx context.Context, oldDate, newDate, title string) (service.RenameResult, error)
	ListNotes(ctx context.Context) ([]notes.Summary, error)
}

type API struct {
	svc     NoteService
	limiter *ratelimit.Limiter
	cfg     config.Config
	log     zerolog.Logger
}

func New(svc NoteService, limiter *ratelimit.Limiter, cfg config.Config, log zerolog.Logger) *API {
	return &API{svc: svc, limiter: limiter, cfg: cfg, log: log}
}

// Limits maps the configured per-minute budgets onto operation names.
func Limits(cfg config.Config) ratelimit.Limits {
	return ratelimit.Limits{
		PerMinute: map[string]int{
			OpRead:   cfg.RateLimitRead,
			OpList:   cfg.RateLimitRead,
			OpWrite:  cfg.RateLimitWrite,
			OpDelete: cfg.RateLimitDelete,
			OpRename: cfg.RateLimitRename,
		},
		PerHour: cfg.RateLimitHour,
		PerDay:  cfg.RateLimitDay,
	}
}

// Routes composes the pipeline once: access log outermost, then IP
// filter, auth, the per-operation rate limit and, for writes, payload
// validation. Later stages are never charged for requests rejected
// earlier.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(a.log))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: a.cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
			AllowedHeaders: []string{"Content-Type", middleware.TokenHeader},
		}))
		r.Use(middleware.IPFilter(a.cfg.AllowedIPs, a.log))
		r.Use(middleware.Auth(a.cfg.APIToken, a.log))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(a.limiter, OpRead, a.log))
			r.Get("/note", a.getNote)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(a.limiter, OpList, a.log))
			r.Get("/dates", a.listDates)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(a.limiter, OpWrite, a.log))
			r.Use(middleware.ValidateContent(a.cfg.MaxContentLength, a.cfg.MaxNoteLength, a.log))
			r.Post("/note", a.saveNote)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(a.limiter, OpDelete, a.log))
			r.Delete("/note", a.deleteNote)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(a.limiter, OpRename, a.log))
			r.Post("/note/rename", a.renameNote)
		})
	})

	return r
}
