package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/thelogicnomad/sitecrafter-final-version-backend/config"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/api"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/llm"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/logging"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/notify"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/store/artifact"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/store/projectstore"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/workflow"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*configPath)
		},
	}
}

func runServe(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}

	log := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Env:     cfg.AppEnv,
		LogFile: cfg.LogFile,
	})

	client, err := buildLLM(cfg)
	if err != nil {
		return err
	}
	engine := workflow.NewEngine(client, log)

	projects := projectstore.Open(cfg.StorePath, cfg.StoreDSN)
	defer projects.Close()

	artifacts, err := buildArtifacts(cfg, log)
	if err != nil {
		return err
	}

	hub := api.NewHub(log)
	webhook := notify.NewWebhook(cfg.WebhookURL, cfg.WebhookSecret, log)
	handler := api.NewAPIHandler(engine, projects, artifacts, hub, webhook, log)

	if strings.EqualFold(cfg.AppEnv, "production") {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	api.RegisterRoutes(router, handler)

	server := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: router,
		// Generation requests block until the workflow finishes, so the
		// write timeout has to cover a full run.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", cfg.ServerAddress).
			Str("provider", client.Name()).
			Msg("api server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("api server listen error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("api server forced shutdown")
		return err
	}
	log.Info().Msg("api server stopped")
	return nil
}

// buildLLM assembles the provider client with retry and rate-limit
// middleware. Key rotation happens inside the retry layer through the pool.
func buildLLM(cfg config.Config) (llm.Client, error) {
	var (
		base llm.Client
		pool *llm.KeyPool
		err  error
	)

	switch strings.ToLower(strings.TrimSpace(cfg.LLMProvider)) {
	case "", "openai":
		pool, err = llm.NewKeyPool(cfg.OpenAIKeyList())
		if err != nil {
			return nil, fmt.Errorf("openai: %w", err)
		}
		base = llm.NewOpenAI(pool, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	case "gemini":
		pool, err = llm.NewKeyPool(cfg.GeminiKeyList())
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		base, err = llm.NewGemini(context.Background(), pool, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
	case "fake":
		// Deterministic offline provider for development and demos.
		return llm.NewDev(), nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}

	return llm.Chain(base,
		llm.Retry(llm.RetryOptions{Attempts: cfg.LLMAttempts, Pool: pool}),
		llm.RateLimit(cfg.LLMRPS, cfg.LLMBurst),
	), nil
}

func buildArtifacts(cfg config.Config, log zerolog.Logger) (artifact.Store, error) {
	if strings.TrimSpace(cfg.S3Endpoint) == "" {
		log.Info().Msg("no S3 endpoint configured, storing artifacts in memory")
		return artifact.NewMemoryStore(), nil
	}
	s3, err := artifact.NewS3Store(artifact.S3Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		UseSSL:    cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("artifact store: %w", err)
	}
	return s3, nil
}
