package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/vitovidale/ai-animator/config"
	"github.com/vitovidale/ai-animator/domain"
	"github.com/vitovidale/ai-animator/infrastructure"
	"github.com/vitovidale/ai-animator/usecase"
)

func failOnError(log *logrus.Logger, err error, msg string) {
	if err != nil {
		log.WithError(err).Fatal(msg)
	}
}

// services groups the long-lived clients so they can be closed together.
type services struct {
	firebaseApp *firebase.App
	closers     []func() error
}

func (s *services) firebase(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	if s.firebaseApp != nil {
		return s.firebaseApp, nil
	}
	app, err := infrastructure.NewFirebaseApp(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
	if err != nil {
		return nil, err
	}
	s.firebaseApp = app
	return app, nil
}

func (s *services) close(log *logrus.Logger) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.WithError(err).Warn("error while closing client")
		}
	}
}

func initStore(ctx context.Context, cfg *config.Config, svc *services, log *logrus.Logger) (domain.CreationRepository, error) {
	switch cfg.StoreBackend {
	case "firestore":
		app, err := svc.firebase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("opening firestore: %w", err)
		}
		svc.closers = append(svc.closers, client.Close)
		return infrastructure.NewFirestoreCreationRepository(client), nil

	case "postgres":
		db, err := openPostgres(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		svc.closers = append(svc.closers, db.Close)
		repo := infrastructure.NewPostgresCreationRepository(db, cfg.CreationsTable)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return repo, nil

	case "postgrest":
		client, err := infrastructure.NewPostgRESTClient(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			return nil, err
		}
		return infrastructure.NewPostgRESTCreationRepository(client, cfg.CreationsTable), nil

	case "memory":
		log.Warn("using in-memory creation store; history is lost on restart")
		return infrastructure.NewMemoryCreationRepository(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func openPostgres(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	for i := 1; i <= cfg.ConnectAttempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			log.Info("connected to PostgreSQL")
			return db, nil
		}
		if i < cfg.ConnectAttempts {
			log.WithError(err).Warnf("PostgreSQL not reachable, retrying in %s (%d/%d)", cfg.ConnectRetryWait, i, cfg.ConnectAttempts)
			time.Sleep(cfg.ConnectRetryWait)
		}
	}
	db.Close()
	return nil, fmt.Errorf("connecting to PostgreSQL: %w", err)
}

func initVerifier(ctx context.Context, cfg *config.Config, svc *services) (domain.IdentityVerifier, error) {
	if cfg.AuthProvider == "jwt" {
		return infrastructure.NewJWTVerifier(cfg.JWTSecret), nil
	}
	app, err := svc.firebase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return infrastructure.NewFirebaseTokenVerifier(ctx, app)
}

func initEvents(cfg *config.Config, svc *services, log *logrus.Logger) domain.EventPublisher {
	if cfg.RabbitMQURL == "" {
		log.Info("RABBITMQ_URL not set; creation events are logged only")
		return &infrastructure.LogEventPublisher{Logger: log}
	}
	conn, err := infrastructure.DialRabbitMQ(cfg.RabbitMQURL, cfg.ConnectAttempts, cfg.ConnectRetryWait, log)
	failOnError(log, err, "failed to connect to RabbitMQ")
	svc.closers = append(svc.closers, conn.Close)

	publisher, err := infrastructure.NewAMQPEventPublisher(conn, cfg.EventsQueue)
	failOnError(log, err, "failed to prepare events queue")
	return publisher
}

const (
	responseMargin         = 30 * time.Second
	defaultShutdownTimeout = 2 * time.Minute
)

// serverWriteTimeout bounds a response by the longest render it can wait
// on. Without a render timeout a response has no write deadline either.
func serverWriteTimeout(cfg *config.Config) time.Duration {
	if cfg.RenderTimeout <= 0 {
		return 0
	}
	return cfg.RenderTimeout + responseMargin
}

// shutdownTimeout is how long in-flight renders get to finish after a
// stop signal.
func shutdownTimeout(cfg *config.Config) time.Duration {
	if cfg.RenderTimeout <= 0 {
		return defaultShutdownTimeout
	}
	return cfg.RenderTimeout + responseMargin
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if cfg.LogLevel != "debug" && cfg.LogLevel != "trace" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	svc := &services{}
	defer svc.close(log)

	creations, err := initStore(ctx, cfg, svc, log)
	failOnError(log, err, "failed to initialize creation store")

	verifier, err := initVerifier(ctx, cfg, svc)
	failOnError(log, err, "failed to initialize identity verifier")

	events := initEvents(cfg, svc, log)

	workspace, err := infrastructure.NewLocalSceneWorkspace(cfg.WorkDir)
	failOnError(log, err, "failed to prepare scene workspace")

	media, err := infrastructure.NewMediaStore(cfg.MediaDir, cfg.PublicBaseURL, cfg.SceneClass)
	failOnError(log, err, "failed to prepare media directory")

	metrics := infrastructure.NewMetrics()
	renderer := &infrastructure.InstrumentedRenderer{
		Next: &infrastructure.ManimRenderer{
			Binary:     cfg.ManimBinary,
			WorkDir:    workspace.Dir,
			SceneClass: cfg.SceneClass,
			MediaDir:   media.Root,
			Timeout:    cfg.RenderTimeout,
			Logger:     log,
		},
		Metrics: metrics,
	}

	renderUC := &usecase.RenderAnimationUseCase{
		Workspace: workspace,
		Renderer:  renderer,
		Artifacts: media,
		Creations: creations,
		Events:    events,
		Logger:    log,
	}
	historyUC := &usecase.CreationHistoryUseCase{Creations: creations}

	checks := map[string]domain.Pinger{}
	if p, ok := creations.(domain.Pinger); ok {
		checks["store"] = p
	}
	if p, ok := events.(domain.Pinger); ok {
		checks["broker"] = p
	}

	router := infrastructure.NewRouter(infrastructure.RouterDeps{
		Creations: infrastructure.NewCreationHandlers(renderUC, historyUC, cfg.MaxBodyBytes, log),
		Health:    &infrastructure.HealthHandlers{Checks: checks},
		Verifier:  verifier,
		Media:     media,
		Metrics:   metrics,
		Logger:    log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           infrastructure.WithCORS(router, cfg.FrontendOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      serverWriteTimeout(cfg),
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":    cfg.Port,
			"store":   cfg.StoreBackend,
			"auth":    cfg.AuthProvider,
			"origins": cfg.FrontendOrigins,
		}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	log.Info("server exited")
}
