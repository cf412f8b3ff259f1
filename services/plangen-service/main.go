package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/MacroPath/macro-path-backend/services/plangen-service/services"
	"github.com/MacroPath/macro-path-backend/services/plangen-service/store"
	"github.com/MacroPath/macro-path-backend/services/plangen-service/tables"
	"github.com/MacroPath/macro-path-backend/shared/config"
	"github.com/MacroPath/macro-path-backend/shared/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func newRouter(api *API, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	})
	r.Use(corsMiddleware.Handler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/plans/diet", api.GenerateDietPlan)
		r.Post("/plans/workout", api.GenerateWorkoutPlan)
		r.Post("/plans/daily/{userId}", api.GenerateDailyPlans) // ?date=YYYY-MM-DD|today&force=true
		r.Get("/plans/{kind}/{userId}/{date}", api.GetPlan)

		r.Get("/ws", api.handleWebSocket)
	})

	r.Get("/health", healthHandler)
	return r
}

// openPlanStore returns the configured store and a function releasing it.
func openPlanStore(ctx context.Context, cfg *config.Config) (store.PlanStore, func() error, error) {
	switch cfg.PlanStore {
	case config.StoreSQLite:
		db, err := store.OpenSQLite(cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		sqlStore, err := store.NewSQLStore(db)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		return sqlStore, sqlDB.Close, nil
	case config.StoreFirestore:
		fsClient, err := firestore.NewClient(ctx, cfg.FirestoreProjectID)
		if err != nil {
			return nil, nil, err
		}
		return store.NewFirestoreStore(fsClient), fsClient.Close, nil
	default:
		return store.NewMemoryStore(), func() error { return nil }, nil
	}
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()

	planTables, err := tables.Load(cfg.TablesPath)
	if err != nil {
		zl.Fatal("Failed to load plan tables", zap.Error(err))
	}

	planStore, closeStore, err := openPlanStore(ctx, cfg)
	if err != nil {
		zl.Fatal("Failed to open plan store", zap.String("store", cfg.PlanStore), zap.Error(err))
	}
	defer closeStore()

	connections := NewConnectionManager(zl)
	generator := services.NewPlanGenerator(planTables, planStore, zl, services.WithNotifier(connections))

	var daily *services.DailyPlanService
	if cfg.ContentServiceURL != "" && cfg.UsersServiceURL != "" {
		daily = services.NewDailyPlanService(
			services.NewCatalogService(cfg.ContentServiceURL, cfg.ContentAPIKey),
			services.NewProfileService(cfg.UsersServiceURL, cfg.ContentAPIKey),
			generator,
			planTables,
			zl,
		)
	} else {
		zl.Warn("CONTENT_SERVICE_URL or USERS_SERVICE_URL not set, daily plan endpoint disabled")
	}

	api := NewAPI(generator, daily, planStore, connections, zl)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: newRouter(api, cfg.CORSOrigins),
	}

	go func() {
		zl.Info("Server starting", zap.String("port", cfg.Port), zap.String("store", cfg.PlanStore))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("ListenAndServe error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("Server forced to shutdown", zap.Error(err))
	}

	zl.Info("Server exiting")
}
