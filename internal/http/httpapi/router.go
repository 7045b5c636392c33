package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"qrkot/internal/http/handlers"
	"qrkot/internal/middleware"
)

// Options carries the collaborators the middleware chain needs.
type Options struct {
	Logger          zerolog.Logger
	Tokens          *middleware.TokenIssuer
	AllowedOrigins  []string
	RateLimitPerMin int
	CountryLookup   middleware.CountryLookup
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(middleware.LocaleEnglish, opts.CountryLookup),
		middleware.RateLimit(opts.RateLimitPerMin, time.Minute, app.StatusError),
		middleware.Authenticate(opts.Tokens, app.StatusError),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/docs", app.OpenAPIDocs)

	r.Route("/charity_project", func(r chi.Router) {
		r.Get("/", app.ProjectsList)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSuperuser(app.StatusError))
			r.Post("/", app.ProjectsCreate)
			r.Patch("/{id}", app.ProjectsUpdate)
			r.Delete("/{id}", app.ProjectsDelete)
		})
	})

	r.Route("/donation", func(r chi.Router) {
		r.Use(middleware.RequireUser(app.StatusError))
		r.Post("/", app.DonationsCreate)
		r.Get("/my", app.DonationsMine)
		r.With(middleware.RequireSuperuser(app.StatusError)).Get("/", app.DonationsList)
	})

	return r
}
