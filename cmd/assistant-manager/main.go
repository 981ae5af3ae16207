// cmd/assistant-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"product-assistant/internal/common/camunda"
	"product-assistant/internal/common/catalog"
	"product-assistant/internal/common/config"
	"product-assistant/internal/common/database"
	"product-assistant/internal/common/genai"
	"product-assistant/internal/common/logger"
	"product-assistant/internal/common/observability"
	"product-assistant/internal/httpapi"
	"product-assistant/pkg/registry"

	ea "product-assistant/internal/workers/assistant/extract-attributes"
	pa "product-assistant/internal/workers/assistant/parse-attributes"
	ap "product-assistant/internal/workers/assistant/product-assistant"
	sc "product-assistant/internal/workers/assistant/search-catalog"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"app":         cfg.App.Name,
		"environment": cfg.App.Environment,
	})

	zapLog.Info("Starting assistant manager...",
		zap.String("catalogBackend", cfg.Catalog.Backend),
		zap.String("collection", cfg.Catalog.Collection),
	)

	obs := observability.New(cfg.App.Name, cfg.Tracing, log)
	defer func() {
		if err := obs.Shutdown(context.Background()); err != nil {
			zapLog.Warn("observability shutdown failed", zap.Error(err))
		}
	}()

	// --- Catalog backend with retry ---
	var clients *database.Clients
	err = retryWithBackoff(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		var err error
		clients, err = database.Connect(ctx, cfg)
		return err
	}, 10, 2*time.Second, zapLog, fmt.Sprintf("%s connection", cfg.Catalog.Backend))
	if err != nil {
		zapLog.Fatal("catalog backend failed after retries", zap.Error(err))
	}
	defer clients.Close()

	store, err := catalog.Open(cfg, clients)
	if err != nil {
		zapLog.Fatal("failed to open catalog store", zap.Error(err))
	}
	zapLog.Info("Catalog store ready", zap.String("backend", cfg.Catalog.Backend))

	model := genai.NewClient(cfg.APIs.GenAI)

	searchCfg := sc.FromAppConfig(cfg)
	if err := searchCfg.Validate(); err != nil {
		zapLog.Fatal("invalid search-catalog config", zap.Error(err))
	}
	engine := sc.NewEngine(store, log,
		sc.WithPageSize(searchCfg.PageSize),
		sc.WithSampleSize(searchCfg.SampleSize),
	)
	pipeline := ap.NewPipeline(model, engine, cfg.Catalog.Collection, obs, log)

	// --- Job workers ---
	var workers []*camunda.CamundaWorker
	var zeebe *camunda.Client
	if cfg.Camunda.Enabled {
		validator := loadValidator(cfg.Registry.Path, zapLog)

		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")

		extractCfg := ea.FromAppConfig(cfg)
		if err := extractCfg.Validate(); err != nil {
			zapLog.Fatal("invalid extract-attributes config", zap.Error(err))
		}
		parseCfg := pa.FromAppConfig(cfg)
		assistantCfg := ap.FromAppConfig(cfg)

		register := func(enabled bool, opts camunda.WorkerOptions, handler camunda.JobHandler) {
			if !enabled {
				zapLog.Info("worker disabled", zap.String("taskType", opts.TaskType))
				return
			}
			w := camunda.NewWorker(zeebe.GetClient(), opts, handler, log)
			w.Start()
			workers = append(workers, w)
		}

		register(extractCfg.Enabled, camunda.WorkerOptions{
			TaskType: ea.TaskType, MaxJobsActive: extractCfg.MaxJobsActive, Timeout: extractCfg.Timeout,
		}, ea.NewHandler(extractCfg, model, validator, log))

		register(parseCfg.Enabled, camunda.WorkerOptions{
			TaskType: pa.TaskType, MaxJobsActive: parseCfg.MaxJobsActive, Timeout: parseCfg.Timeout,
		}, pa.NewHandler(parseCfg, validator, log))

		register(searchCfg.Enabled, camunda.WorkerOptions{
			TaskType: sc.TaskType, MaxJobsActive: searchCfg.MaxJobsActive, Timeout: searchCfg.Timeout,
		}, sc.NewHandler(searchCfg, engine, validator, log))

		register(assistantCfg.Enabled, camunda.WorkerOptions{
			TaskType: ap.TaskType, MaxJobsActive: assistantCfg.MaxJobsActive, Timeout: assistantCfg.Timeout,
		}, ap.NewHandler(assistantCfg, pipeline, validator, log))

		zapLog.Info("Workers registered", zap.Int("count", len(workers)))
	} else {
		zapLog.Info("Camunda disabled, serving HTTP only")
	}

	// --- HTTP server ---
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      httpapi.New(pipeline, store, log).Router(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}
	for _, w := range workers {
		w.Stop(shutdownCtx)
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Assistant manager stopped gracefully")
}

// loadValidator returns nil when the registry is missing, which disables
// schema validation rather than refusing to start.
func loadValidator(path string, log *zap.Logger) camunda.InputValidator {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		log.Warn("activity registry not loaded, job input is not schema-checked", zap.String("path", path), zap.Error(err))
		return nil
	}
	if err := reg.Check(); err != nil {
		log.Fatal("activity registry has invalid schemas", zap.Error(err))
	}
	return registry.NewValidator(reg)
}
