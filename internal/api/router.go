package api

import (
	"net/http"
	"time"

	"github.com/cqlclinic/clinic/internal/api/handlers"
	"github.com/cqlclinic/clinic/internal/api/middleware"
)

// Router wraps the HTTP multiplexer with middleware and handlers
type Router struct {
	mux      *http.ServeMux
	app      *App
	exercise *handlers.ExerciseHandler
	rec      *handlers.RecommendHandler
	execute  *handlers.ExecuteHandler
	progress *handlers.ProgressHandler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(app *App) http.Handler {
	r := &Router{
		mux: http.NewServeMux(),
		app: app,
	}

	var publisher handlers.SubmissionPublisher
	if app.Events != nil {
		publisher = app.Events
	}

	r.exercise = handlers.NewExerciseHandler(app.Store)
	r.rec = handlers.NewRecommendHandler(app.Store, app.Scorer, app.Progress)
	r.execute = handlers.NewExecuteHandler(app.Sandbox, publisher, app.Logger)
	r.progress = handlers.NewProgressHandler(app.Progress)

	r.registerRoutes()

	return r.buildMiddlewareChain(r.mux)
}

func (r *Router) registerRoutes() {
	// Health check
	r.mux.HandleFunc("GET /health", r.handleHealth)
	r.mux.HandleFunc("GET /ready", r.handleReady)

	// Exercise catalog
	r.mux.HandleFunc("GET /api/v1/exercises", r.exercise.List)
	r.mux.HandleFunc("GET /api/v1/exercises/analytics", r.exercise.Analytics)
	r.mux.HandleFunc("GET /api/v1/exercises/validation", r.exercise.Validation)
	r.mux.HandleFunc("GET /api/v1/exercises/{id}", r.exercise.Get)

	// Recommendations
	r.mux.HandleFunc("POST /api/v1/recommendations", r.rec.Recommend)

	// Sandbox execution, behind a stricter limiter
	executeLimiter := middleware.ExpensiveRateLimitMiddleware(middleware.DefaultRateLimitConfig())
	r.mux.Handle("POST /api/v1/execute", executeLimiter(http.HandlerFunc(r.execute.Execute)))

	// Learner progress
	r.mux.HandleFunc("GET /api/v1/progress/{user_id}", r.progress.Get)
	r.mux.HandleFunc("PUT /api/v1/progress/{user_id}/exercises/{id}", r.progress.RecordAttempt)

	// Cache administration
	r.mux.HandleFunc("POST /api/v1/cache/clear", r.exercise.ClearCache)
}

func (r *Router) buildMiddlewareChain(handler http.Handler) http.Handler {
	// Apply middleware in reverse order (last applied = first executed)
	handler = middleware.Recovery(handler)
	handler = middleware.Logger(handler)

	// Rate limiting is skipped in debug mode for easier development
	if !r.app.Config.Debug {
		handler = middleware.RateLimitMiddleware(middleware.DefaultRateLimitConfig())(handler)
	}

	handler = middleware.RequestID(handler)
	handler = middleware.CORS(handler)

	return handler
}

// Health check handlers
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (r *Router) handleReady(w http.ResponseWriter, req *http.Request) {
	checks := map[string]string{"database": "healthy"}
	status := http.StatusOK

	if err := r.app.DB.PingContext(req.Context()); err != nil {
		r.app.Logger.Error("database health check failed",
			"error", err,
			"request_id", middleware.GetRequestID(req.Context()),
		)
		checks["database"] = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	readiness := "ready"
	if status != http.StatusOK {
		readiness = "not ready"
	}
	handlers.WriteJSON(w, status, map[string]any{
		"status": readiness,
		"checks": checks,
	})
}
