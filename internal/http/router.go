package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/syndic/internal/http/deal"
	"github.com/MrJamesThe3rd/syndic/internal/http/export"
	"github.com/MrJamesThe3rd/syndic/internal/http/importcsv"
	"github.com/MrJamesThe3rd/syndic/internal/http/investor"
	syndicMiddleware "github.com/MrJamesThe3rd/syndic/internal/http/middleware"
)

type Options struct {
	AllowedOrigins []string
	// Idempotency, when set, guards the mutating routes against replays.
	Idempotency syndicMiddleware.Store
	// IdempotencyTTL is how long a finished response can be replayed.
	IdempotencyTTL time.Duration
}

func New(
	dealsV1 *deal.Handler,
	investorsV1 *investor.Handler,
	exportV1 *export.Handler,
	importV1 *importcsv.Handler,
	opts Options,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", syndicMiddleware.HeaderIdempotencyKey},
		MaxAge:         300,
	}))

	if opts.Idempotency != nil {
		router.Use(syndicMiddleware.Idempotency(opts.Idempotency, opts.IdempotencyTTL))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/deals", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			dealsV1.Routes(r)
		})

		r.Route("/investors", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			investorsV1.Routes(r)
		})

		r.Route("/export", exportV1.Routes)
		r.Route("/import", importV1.Routes)
	})

	return router
}
