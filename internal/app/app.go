package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"ContentActivation/internal/audit"
	"ContentActivation/internal/brandvoice"
	"ContentActivation/internal/config"
	"ContentActivation/internal/domain"
	"ContentActivation/internal/enrichment"
	"ContentActivation/internal/infrastructure/cms"
	"ContentActivation/internal/infrastructure/destination"
	"ContentActivation/internal/infrastructure/images"
	"ContentActivation/internal/infrastructure/llm"
	"ContentActivation/internal/infrastructure/scheduler"
	"ContentActivation/internal/infrastructure/storage"
	"ContentActivation/internal/infrastructure/telegram"
	"ContentActivation/internal/logging"
	"ContentActivation/internal/metrics"
	"ContentActivation/internal/ports"
	"ContentActivation/internal/publishing"
	"ContentActivation/internal/transport/httpapi"
	"ContentActivation/internal/usecase"
	"ContentActivation/internal/validation"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	recorder  *audit.Recorder
	logFile   *audit.FileSink
	db        *sql.DB
	server    *http.Server
}

// New builds the application from configuration. It opens the activation log and, when a DSN is
// configured, the Postgres history mirror.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	a := &Application{cfg: cfg, logger: baseLogger.With("component", "app")}

	m := metrics.New(prometheus.NewRegistry())

	chain, err := enrichment.NewChain(baseLogger, enrichment.ChainOptions{
		TextTimeout:   cfg.Enrichment.TextTimeout,
		VisionTimeout: cfg.Enrichment.VisionTimeout,
		Observer:      m,
	}, buildProviders(cfg, a.logger)...)
	if err != nil {
		return nil, fmt.Errorf("build provider chain: %w", err)
	}
	coordinator := enrichment.NewCoordinator(baseLogger, chain,
		images.NewFetcher(nil, cfg.Enrichment.MaxImageBytes),
		enrichment.Options{ImageConcurrency: cfg.Enrichment.ImageConcurrency})

	validator := validation.New(validation.NewVocabulary(cfg.Vocabulary), cfg.Validation)

	analyzer, err := brandvoice.NewAnalyzer(cfg.BrandVoice.Weights, cfg.BrandVoice.Thresholds)
	if err != nil {
		return nil, fmt.Errorf("brand voice config: %w", err)
	}

	mock := destination.NewMock()
	registry := publishing.NewRegistry(
		mock,
		destination.NewWebhook(cfg.Destination.Webhook.URL, cfg.Destination.Webhook.Token, nil),
	)
	publisher, err := publishing.NewAdapter(baseLogger, registry, cfg.Destination.Platform, cfg.Destination.Timeout)
	if err != nil {
		return nil, err
	}

	sink, history, err := a.openAudit(ctx)
	if err != nil {
		return nil, err
	}
	a.recorder = audit.NewRecorder(baseLogger, sink, audit.Options{
		QueueSize:     cfg.Audit.QueueSize,
		EnqueueBudget: cfg.Audit.EnqueueBudget,
		Observer:      m,
	})

	var notifier ports.ReviewNotifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.APIURL, tg.BotToken, tg.ChatID)
	}

	a.pipeline, err = usecase.NewPipeline(usecase.PipelineDeps{
		Source:         buildSource(cfg, baseLogger),
		Validator:      validator,
		Enricher:       coordinator,
		Analyzer:       analyzer,
		Publisher:      publisher,
		Recorder:       a.recorder,
		Notifier:       notifier,
		Observer:       m,
		Logger:         baseLogger,
		NotifyAdvisory: cfg.Notifications.NotifyAdvisory,
		SourceTimeout:  cfg.Source.Timeout,
	})
	if err != nil {
		return nil, err
	}

	a.scheduler = usecase.NewScheduler(baseLogger,
		scheduler.NewCronScheduler(baseLogger, cfg.Scheduler.Location()),
		a.pipeline, scheduledJobs(cfg.Scheduler))

	platforms := httpapi.PlatformInfo{Active: publisher.Platform(), Available: registry.Names()}
	if publisher.Platform() == mock.Name() {
		platforms.Lists = mock.ListIDs()
	}
	a.server = &http.Server{
		Addr: cfg.Server.Addr,
		Handler: httpapi.NewRouter(httpapi.Deps{
			Activator: a.pipeline,
			History:   history,
			Platforms: platforms,
			Metrics:   m.Handler(),
			Logger:    baseLogger,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return a, nil
}

// Pipeline exposes the activation use case, mainly for one-shot CLI runs.
func (a *Application) Pipeline() *usecase.Pipeline {
	return a.pipeline
}

// Run serves HTTP and scheduled activations until ctx is done, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		runErr = fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("http shutdown", "error", err)
	}
	if err := a.scheduler.Stop(shutdownCtx); err != nil {
		a.logger.Warn("scheduler shutdown", "error", err)
	}
	return errors.Join(runErr, a.Close(shutdownCtx))
}

// Close drains the audit queue and releases files and connections.
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	if a.recorder != nil {
		errs = append(errs, a.recorder.Close(ctx))
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

func (a *Application) openAudit(ctx context.Context) (audit.Sink, audit.Reader, error) {
	file, err := audit.OpenFileSink(a.cfg.Audit.LogPath)
	if err != nil {
		return nil, nil, err
	}
	a.logFile = file
	if a.cfg.Database.DSN == "" {
		return file, file, nil
	}

	db, err := storage.Open(ctx, a.cfg.Database.DSN)
	if err != nil {
		a.logger.Warn("activation history mirror disabled", "error", err)
		return file, file, nil
	}
	repo := storage.NewPostgresRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		a.logger.Warn("activation history mirror disabled", "error", err)
		return file, file, nil
	}
	a.db = db
	multi := audit.NewMultiSink(file, repo)
	return multi, multi, nil
}

func buildProviders(cfg config.Config, logger *slog.Logger) []enrichment.Member {
	var members []enrichment.Member
	for _, pc := range cfg.Providers {
		guard := enrichment.Guard{
			RatePerSecond:    pc.RatePerMinute / 60,
			Burst:            pc.Burst,
			FailureThreshold: pc.FailureThreshold,
			OpenTimeout:      pc.OpenTimeout,
		}
		switch strings.ToLower(pc.Name) {
		case "openai":
			if cfg.OpenAI.APIKey == "" {
				logger.Info("openai provider skipped: no API key configured")
				continue
			}
			members = append(members, enrichment.Member{Provider: llm.NewChatGPTClient(cfg.OpenAI), Guard: guard})
		case "ollama":
			client, err := llm.NewOllamaClient(cfg.Ollama)
			if err != nil {
				logger.Warn("ollama provider skipped", "error", err)
				continue
			}
			members = append(members, enrichment.Member{Provider: client, Guard: guard})
		case "stub":
			members = append(members, enrichment.Member{Provider: llm.Stub{}, Guard: guard})
		default:
			logger.Warn("unknown provider in chain", "name", pc.Name)
		}
	}
	if len(members) == 0 {
		members = append(members, enrichment.Member{Provider: llm.Stub{}})
	}
	return members
}

func buildSource(cfg config.Config, logger *slog.Logger) ports.ContentSource {
	if cfg.Source.Kind == "http" {
		return cms.NewEntrySource(cfg.Source.BaseURL, cfg.Source.AccessToken,
			&http.Client{Timeout: cfg.Source.Timeout}, logger.With("component", "cms"))
	}
	return cms.NewMockSource()
}

func scheduledJobs(cfg config.SchedulerConfig) []usecase.ScheduledActivation {
	jobs := make([]usecase.ScheduledActivation, 0, len(cfg.Activations))
	for _, s := range cfg.Activations {
		jobs = append(jobs, usecase.ScheduledActivation{
			Spec: s.Cron,
			Request: domain.ActivationRequest{
				ContentID:         s.EntryID,
				ListID:            s.ListID,
				EnrichmentEnabled: s.Enrichment(),
			},
		})
	}
	return jobs
}
