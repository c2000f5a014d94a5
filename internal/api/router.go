package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/aibradaa-labs/council/internal/api/handlers"
	mw "github.com/aibradaa-labs/council/internal/api/middleware"
	"github.com/aibradaa-labs/council/internal/config"
	"github.com/aibradaa-labs/council/internal/domain"
	"github.com/aibradaa-labs/council/internal/llm"
	"github.com/aibradaa-labs/council/internal/service"
	"github.com/aibradaa-labs/council/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App holds the router and the wired council pipeline.
type App struct {
	Router       *chi.Mux
	Budget       *llm.Budget
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// NewApp wires stores, the model router, and the decision pipeline into an
// HTTP application. Catalogue errors are fatal: a council with a malformed
// persona file must not start.
func NewApp(db *pgxpool.Pool, rdb *redis.Client, logger *zap.Logger) (*App, error) {
	registry, err := service.LoadRegistry(config.PersonasPath())
	if err != nil {
		return nil, err
	}
	policies, err := service.LoadPolicyTable(config.PoliciesPath())
	if err != nil {
		return nil, err
	}

	costs := llm.CostTable{
		CheapPer1K:   config.CheapCostPer1K(),
		PremiumPer1K: config.PremiumCostPer1K(),
	}
	clients, err := llm.TierClients(config.GeminiAPIKey(), config.CerebrasAPIKey(), config.OpenAIAPIKey(), costs)
	if err != nil {
		return nil, err
	}
	budget := llm.NewBudget(config.SpendCeiling(), config.BudgetPeriod())
	router := llm.NewRouter(clients, budget, costs, config.VoteTimeout(), logger)

	// Stores
	verdictStore := store.NewVerdictStore(db)
	sessionStore := store.NewFallbackSessionStore(
		store.NewSessionStore(rdb),
		store.NewLocalSessionStore(),
		logger,
	)

	// Services
	selector := service.NewSelector(registry)
	collector := service.NewCollector(router, config.VoteTimeout(), config.CollectTimeout(), config.VoteConcurrency(), logger)
	scorer := service.NewScorer(service.TieBreakReject)
	orch := service.NewOrchestrator(policies, selector, collector, scorer, verdictStore, sessionStore, logger)

	// Handlers
	decisionHandler := handlers.NewDecisionHandler(orch, verdictStore)
	personaHandler := handlers.NewPersonaHandler(registry)
	sessionHandler := handlers.NewSessionHandler(sessionStore)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Budget:    budget,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/health", healthHandler(db, rdb))
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/decisions", func(r chi.Router) {
			r.Post("/", decisionHandler.Submit)
			r.Get("/", decisionHandler.ListRecent)
			r.Get("/{id}", decisionHandler.GetByDecisionID)
		})

		r.Route("/personas", func(r chi.Router) {
			r.Get("/", personaHandler.List)
			r.Get("/{id}", personaHandler.GetByID)
		})

		r.Route("/sessions/{userID}", func(r chi.Router) {
			r.Get("/messages", sessionHandler.GetRecent)
			r.Delete("/", sessionHandler.Clear)
		})
	})

	return app, nil
}

func healthHandler(db *pgxpool.Pool, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		// Redis being down is degraded, not dead: session memory falls back
		// to the in-process store.
		status := "ok"
		if err := rdb.Ping(r.Context()).Err(); err != nil {
			status = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds":   uptime.Seconds(),
			"uptime_human":     uptime.Round(time.Second).String(),
			"request_count":    app.requestCount.Load(),
			"error_count":      app.errorCount.Load(),
			"inference_spend":  app.Budget.Spent(),
			"budget_exhausted": app.Budget.Exhausted(),
			"goroutines":       runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.VerdictStore    = (*store.VerdictStore)(nil)
	_ domain.SessionStore    = (*store.SessionStore)(nil)
	_ domain.SessionStore    = (*store.LocalSessionStore)(nil)
	_ domain.SessionStore    = (*store.FallbackSessionStore)(nil)
	_ domain.ModelRouter     = (*llm.Router)(nil)
	_ domain.InferenceClient = (*llm.GeminiClient)(nil)
	_ domain.InferenceClient = (*llm.CerebrasClient)(nil)
	_ domain.InferenceClient = (*llm.OpenAIClient)(nil)
	_ domain.InferenceClient = (*llm.MockClient)(nil)
)
