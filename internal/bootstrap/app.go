// Package bootstrap wires configuration, storage, the LLM provider, and
// the HTTP layer into a runnable application.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"

	"bloodreport-backend/internal/agents"
	"bloodreport-backend/internal/analyses"
	"bloodreport-backend/internal/llm"
	"bloodreport-backend/internal/llm/gemini"
	"bloodreport-backend/internal/llm/openai"
	"bloodreport-backend/internal/reports"
	"bloodreport-backend/internal/shared/config"
	"bloodreport-backend/internal/shared/server"
	"bloodreport-backend/internal/shared/storage/db"
	"bloodreport-backend/internal/shared/storage/object"
	localstore "bloodreport-backend/internal/shared/storage/object/local"
	miniostore "bloodreport-backend/internal/shared/storage/object/minio"
	"bloodreport-backend/internal/shared/telemetry"
	"bloodreport-backend/internal/usage"
	"bloodreport-backend/internal/web"
)

// App is the assembled application.
type App struct {
	Engine   *gin.Engine
	Analyses *analyses.Service

	database *sql.DB
	closers  []func() error
}

// Build assembles the application from config.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{}

	database, err := connectDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.database = database

	store, err := buildObjectStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client, closer, err := buildLLMClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}

	defs, err := agents.LoadDefinitions()
	if err != nil {
		return nil, fmt.Errorf("load agent definitions: %w", err)
	}
	pipeline := agents.NewPipeline(client, defs)

	var reportRepo reports.Repo
	var analysisRepo analyses.Repo
	var usageStore usage.Store
	if database != nil {
		reportRepo = reports.NewPGRepo(database)
		analysisRepo = analyses.NewPGRepo(database)
		usageStore = usage.NewPGStore(database)
	} else {
		reportRepo = reports.NewMemoryRepo()
		analysisRepo = analyses.NewMemoryRepo()
		usageStore = usage.NewMemoryStore()
	}

	reportSvc := reports.NewService(reportRepo, store, cfg.ObjectStoreType)
	quotaSvc := usage.NewService(usageStore, cfg.AnalysisDailyLimit)
	analysisSvc := analyses.NewService(analysisRepo, reportSvc, pipeline, quotaSvc, analyses.Options{
		Provider:        client.Provider(),
		Model:           cfg.LLMModel,
		PipelineVersion: cfg.PipelineVersion,
	})
	app.Analyses = analysisSvc

	engine := server.NewRouter(cfg,
		reports.NewHandler(reportSvc),
		analyses.NewHandler(analysisSvc),
		usage.NewHandler(quotaSvc),
	)
	if err := web.Register(engine); err != nil {
		return nil, fmt.Errorf("mount frontend: %w", err)
	}
	app.Engine = engine

	telemetry.Info("app.ready", map[string]any{
		"env":       cfg.Env,
		"provider":  client.Provider(),
		"store":     cfg.ObjectStoreType,
		"database":  database != nil,
		"pipeline":  cfg.PipelineVersion,
		"llm_model": cfg.LLMModel,
	})
	return app, nil
}

// Close drains in-flight analyses and releases resources.
func (a *App) Close() {
	if a.Analyses != nil {
		a.Analyses.Wait()
	}
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			telemetry.Warn("app.close_failed", map[string]any{"error": err.Error()})
		}
	}
	if a.database != nil {
		if err := a.database.Close(); err != nil {
			telemetry.Warn("app.db_close_failed", map[string]any{"error": err.Error()})
		}
	}
}

func connectDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		telemetry.Warn("app.db_disabled", map[string]any{
			"reason": "DATABASE_URL not set; using in-memory repositories",
		})
		return nil, nil
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.RunMigrations(ctx, database); err != nil {
		database.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return database, nil
}

func buildObjectStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	if cfg.ObjectStoreType == "minio" {
		store, err := miniostore.New(ctx, miniostore.Options{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			Region:    cfg.MinioRegion,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("minio store: %w", err)
		}
		return store, nil
	}
	return localstore.New(cfg.LocalStoreDir), nil
}

// buildLLMClient picks the provider from config, falling back to the
// placeholder when no key is configured so the server still starts.
func buildLLMClient(ctx context.Context, cfg config.Config) (llm.Client, func() error, error) {
	switch cfg.LLMProvider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			telemetry.Warn("app.llm_placeholder", map[string]any{"reason": "GEMINI_API_KEY not set"})
			return llm.NewPlaceholder(), nil, nil
		}
		client, err := gemini.New(ctx, gemini.Options{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.LLMModel,
			Timeout: cfg.LLMTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	case "none":
		return llm.NewPlaceholder(), nil, nil
	default:
		if cfg.OpenAIAPIKey == "" {
			telemetry.Warn("app.llm_placeholder", map[string]any{"reason": "OPENAI_API_KEY not set"})
			return llm.NewPlaceholder(), nil, nil
		}
		client, err := openai.New(openai.Options{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.LLMModel,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.LLMTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil
	}
}
