package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"creditdoc/internal/config"
	"creditdoc/internal/database"
	"creditdoc/internal/database/migration"
	handlers "creditdoc/internal/http/handler"
	"creditdoc/internal/http/middleware"
	"creditdoc/internal/logger"
	"creditdoc/internal/mailer"
	"creditdoc/internal/otel"
	"creditdoc/internal/repository/postgres"
	"creditdoc/internal/service"
	"creditdoc/internal/storage"
)

// @title Credit Document API
// @version 1.0
// @BasePath /
func main() {
	cfg := config.Load()
	loc := cfg.Document.Location()

	log := logger.New(os.Stdout, loc, cfg.LogLevel)
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, db, cfg.Database.Name); err != nil {
		log.Warn("db pool metrics disabled", zap.Error(err))
	}

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		log.Fatal("failed to initialize object storage", zap.Error(err))
	}

	mail := mailer.NewSMTP(cfg.SMTP)
	if err := mail.Ready(); err != nil {
		log.Warn("email delivery disabled", zap.Error(err))
	}

	metrics, err := service.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal("failed to register service metrics", zap.Error(err))
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal("failed to register http metrics", zap.Error(err))
	}

	deps := service.Dependencies{
		Documents:     postgres.NewDocumentPostgres(db),
		Store:         objStore,
		Mailer:        mail,
		Metrics:       metrics,
		Logger:        log,
		Location:      loc,
		PresignExpiry: cfg.Document.PresignExpiry(),
	}
	records := postgres.NewRecordsPostgres(db)
	deps.Customers, deps.Collaterals, deps.Assessments = records, records, records
	if cfg.Document.LocalResultsDir != "" {
		deps.Local = storage.NewLocalDir(cfg.Document.LocalResultsDir)
	}
	docSvc := service.NewDocumentService(deps)

	app := newApp(log, promMiddleware, cfg.AppHost)
	handlers.RegisterRoutes(app, db, docSvc)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout()); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr), zap.String("app_host", cfg.AppHost))
	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
