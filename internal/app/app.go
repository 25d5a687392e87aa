package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"sortrash/internal/config"
	"sortrash/internal/handler"
	"sortrash/internal/logger"
	"sortrash/internal/repository"
	"sortrash/internal/repository/jsonfile"
	"sortrash/internal/repository/sqlite"
	"sortrash/internal/routes"
	"sortrash/internal/service"
	"sortrash/internal/service/ai"
	"sortrash/internal/service/frame"
	"sortrash/internal/service/inference"
	"sortrash/internal/service/journal"
	"sortrash/internal/service/pipeline"
	"sortrash/internal/service/websocket"
)

// ShutdownTimeout bounds graceful shutdown of in-flight requests.
const ShutdownTimeout = 10 * time.Second

type App struct {
	config     *config.Config
	logger     *logger.Logger
	store      repository.JournalStore
	hubService *websocket.HubService
	manager    *service.Manager
	health     handler.HealthChecker
	closers    []io.Closer
}

// inferenceStack is one consistent set of pipeline capabilities.
type inferenceStack struct {
	decoder    pipeline.Decoder
	detector   pipeline.Detector
	classifier pipeline.Classifier
	health     handler.HealthChecker
	closers    []io.Closer
}

func NewApp() (*App, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.NewLogger(cfg)

	store, err := openJournalStore(cfg)
	if err != nil {
		log.Close()
		return nil, err
	}

	stack, err := newInferenceStack(cfg, log)
	if err != nil {
		store.Close()
		log.Close()
		return nil, err
	}

	hub := websocket.NewHubService(log)
	j := journal.New(store, log)
	mng := service.NewManager(stack.decoder, stack.detector, stack.classifier, ai.Annotator{}, j, hub, cfg, log)

	return &App{
		config:     cfg,
		logger:     log,
		store:      store,
		hubService: hub,
		manager:    mng,
		health:     stack.health,
		closers:    stack.closers,
	}, nil
}

// openJournalStore opens the configured journal backend.
func openJournalStore(cfg *config.Config) (repository.JournalStore, error) {
	switch cfg.JournalBackend {
	case config.JournalBackendSQLite:
		db, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal database: %w", err)
		}
		return sqlite.NewJournalRepository(db), nil
	default:
		return jsonfile.New(cfg.JournalPath), nil
	}
}

// newInferenceStack loads the local models or connects to the remote
// model server.
func newInferenceStack(cfg *config.Config, log *logger.Logger) (*inferenceStack, error) {
	if cfg.InferenceBackend == config.InferenceBackendRemote {
		client := inference.NewClient(cfg.InferenceURL, time.Duration(cfg.InferenceTimeout)*time.Second)
		log.Info("Using remote inference at %s", cfg.InferenceURL)
		return &inferenceStack{
			decoder:    frame.Decoder{},
			detector:   client,
			classifier: client,
			health:     client,
		}, nil
	}

	detector, err := ai.NewDetectorService(cfg.DetectorModelPath, nil, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load detector: %w", err)
	}
	classifier, err := ai.NewClassifierService(cfg.ClassifierModelPath, cfg.ClassifierLabels, log)
	if err != nil {
		detector.Close()
		return nil, fmt.Errorf("failed to load classifier: %w", err)
	}
	return &inferenceStack{
		decoder:    ai.Decoder{},
		detector:   detector,
		classifier: classifier,
		closers:    []io.Closer{detector, classifier},
	}, nil
}

// Run serves HTTP until SIGINT or SIGTERM, then shuts down gracefully and
// releases every resource.
func (a *App) Run() error {
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go a.hubService.Run(ctx)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Port),
		Handler:           routes.SetupRoutes(a.manager, a.health, a.config, a.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.logger.Info("Waste classification server listening on http://localhost:%d", a.config.Port)
	a.logger.Info("Journal backend: %s, inference backend: %s", a.config.JournalBackend, a.config.InferenceBackend)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// Close releases models, the journal store and log files.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	errs = append(errs, a.store.Close(), a.logger.Close())
	return errors.Join(errs...)
}
