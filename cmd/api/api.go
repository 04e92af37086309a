package main

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wholesale/docs" //this is required to generate swagger docs
	"wholesale/internal/auth"
	"wholesale/internal/domain/catalog"
	"wholesale/internal/ingest"
	"wholesale/internal/ratelimiter"
	"wholesale/internal/sheet"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

// importer runs one parsed upload. *ingest.Engine implements it.
type importer interface {
	Import(ctx context.Context, kind ingest.Kind, g *sheet.Grid) (*ingest.Report, error)
}

type sessionManager interface {
	auth.Verifier
	Issue(adminID int64, role string) (string, time.Time, error)
	TTL() time.Duration
}

type pinger interface {
	Ping(ctx context.Context) error
}

type application struct {
	config      config
	logger      *zap.SugaredLogger
	db          pinger
	catalog     catalog.Store
	importer    importer
	sessions    sessionManager
	rateLimiter ratelimiter.Limiter
}

type config struct {
	addr        string
	env         string
	apiURL      string
	logLevel    string
	db          dbConfig
	auth        authConfig
	media       mediaConfig
	upload      uploadConfig
	rateLimiter ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	secret string
	exp    time.Duration
	iss    string
}

type basicConfig struct {
	user string
	pass string
}

type dbConfig struct {
	addr        string
	maxConns    int32
	maxIdleTime string
}

type mediaConfig struct {
	publicDir          string
	placeholderPicture string
	fetchTimeout       time.Duration
	maxImageBytes      int64
	backend            string
	cloudinaryURL      string
	cloudinaryFolder   string
}

type uploadConfig struct {
	maxBytes int64
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Large imports fetch one remote picture per row, so the deadline is generous.
	r.Use(middleware.Timeout(10 * time.Minute))

	public := http.FileServer(http.Dir(app.config.media.publicDir))
	r.Handle("/uploads/*", public)
	r.Handle("/images/*", public)

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		docsURL := app.config.apiURL + "/v1/swagger/doc.json"
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/session", app.createSessionHandler)
			r.Post("/logout", app.logoutHandler)
		})

		r.Route("/store/admin", func(r chi.Router) {
			r.Use(app.RequireAdmin)

			r.Get("/overview", app.adminOverviewHandler)
			r.Get("/categories", app.listCategoriesHandler)
			r.Get("/brands", app.listBrandsHandler)

			r.Route("/{kind}/bulk", func(r chi.Router) {
				r.With(app.RateLimiterMiddleware).Post("/", app.bulkUploadHandler)
				r.Get("/template", app.bulkTemplateHandler)
			})
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: 11 * time.Minute,
		ReadTimeout:  time.Minute,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
