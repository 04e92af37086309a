package main

import (
	"expvar"
	"net/http"
	"os"
	"runtime"
	"time"

	"wholesale/internal/auth"
	"wholesale/internal/db"
	"wholesale/internal/domain/catalog"
	"wholesale/internal/ingest"
	"wholesale/internal/media"
	"wholesale/internal/ratelimiter"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a console zap logger with coloured levels.
func NewLogger(level string) (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)

	lvl := zapcore.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		lvl = parsed
	}

	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), lvl)
	return zap.New(core).Sugar(), nil
}

var version = "0.3.0"

//	@title			Wholesale Admin API
//	@description	Bulk catalog imports and back-office endpoints for the wholesale storefront.

//	@BasePath					/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description

func main() {
	envErr := godotenv.Load()

	cfg := loadConfig()

	logger, err := NewLogger(cfg.logLevel)
	if err != nil {
		logger, _ = NewLogger("")
		logger.Warnw("invalid LOG_LEVEL, using info", "value", cfg.logLevel)
	}
	defer logger.Sync()

	if envErr != nil {
		logger.Warnw("no .env file loaded, using process environment", "error", envErr.Error())
	}

	// Database
	pool, err := db.New(db.Config{
		Addr:        cfg.db.addr,
		MaxConns:    cfg.db.maxConns,
		MaxIdleTime: cfg.db.maxIdleTime,
	})
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()
	logger.Info("database connection pool established")

	repo := catalog.NewRepository(pool)

	// Assets
	assets, err := newAssetStore(cfg.media)
	if err != nil {
		logger.Fatal(err)
	}
	logger.Infow("asset store ready", "backend", cfg.media.backend, "prefix", assets.Prefix())

	resolver := media.NewResolver(
		&http.Client{Timeout: cfg.media.fetchTimeout},
		media.ResolverConfig{
			PublicRoot:     cfg.media.publicDir,
			StoredPrefixes: []string{assets.Prefix()},
			MaxBytes:       cfg.media.maxImageBytes,
		},
		logger.Named("media"),
	)

	engine := ingest.NewEngine(repo, resolver, assets, cfg.media.placeholderPicture, logger.Named("ingest"))

	// Rate limiter
	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)
	defer rateLimiter.Stop()

	sessions := auth.NewSessionManager(cfg.auth.token.secret, cfg.auth.token.exp, cfg.auth.token.iss)

	app := &application{
		config:      cfg,
		logger:      logger,
		db:          pool,
		catalog:     repo,
		importer:    engine,
		sessions:    sessions,
		rateLimiter: rateLimiter,
	}

	//Metrics collected http://localhost:8080/v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		s := pool.Stat()
		return map[string]any{
			"total_conns":    s.TotalConns(),
			"idle_conns":     s.IdleConns(),
			"acquired_conns": s.AcquiredConns(),
			"max_conns":      s.MaxConns(),
		}
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))
	expvar.Publish("started_at", expvar.Func(func() any {
		return startedAt.Format(time.RFC3339)
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}

var startedAt = time.Now()
