package api

import (
	"log/slog"
	"time"

	"github.com/cqlclinic/clinic/internal/config"
	"github.com/cqlclinic/clinic/internal/events"
	"github.com/cqlclinic/clinic/internal/exercise"
	"github.com/cqlclinic/clinic/internal/progress"
	"github.com/cqlclinic/clinic/internal/recommend"
	"github.com/cqlclinic/clinic/internal/sandbox"
	"github.com/cqlclinic/clinic/internal/source"
	"github.com/cqlclinic/clinic/internal/storage/sqlite"
)

// App holds all application dependencies
type App struct {
	Config   *config.Config
	DB       *sqlite.DB
	Store    *exercise.Store
	Scorer   *recommend.Scorer
	Progress *progress.Service
	Sandbox  *sandbox.Client
	Events   *events.Producer // nil when no broker is configured
	Logger   *slog.Logger
}

// NewApp wires the application together from configuration. The
// RabbitMQ connection is optional; everything else is required.
func NewApp(cfg *config.Config, db *sqlite.DB, eventsConn *events.Connection, logger *slog.Logger) *App {
	app := &App{
		Config: cfg,
		DB:     db,
		Logger: logger,
	}

	var src source.Source
	if cfg.SourceURL != "" {
		src = source.NewHTTPSource(source.HTTPConfig{BaseURL: cfg.SourceURL})
	} else {
		src = source.NewFileSource(cfg.ExercisesPath)
	}
	src = source.NewResilientSource(src, logger)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	app.Store = exercise.NewStore(src, ttl)

	app.Scorer = recommend.NewScorer()

	app.Sandbox = sandbox.NewClient(sandbox.Config{
		BaseURL: cfg.SandboxURL,
		Timeout: time.Duration(cfg.SandboxTimeoutSeconds) * time.Second,
	}, logger)

	if eventsConn != nil {
		app.Events = events.NewProducer(eventsConn, logger)
	}

	var publisher progress.Publisher
	if app.Events != nil {
		publisher = app.Events
	}
	app.Progress = progress.NewService(sqlite.NewProgressStore(db), publisher, logger)

	return app
}

// Close cleans up application resources
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
