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

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/tanpawarit/ai-support-router/agent/agents/orchestrator"
	"github.com/tanpawarit/ai-support-router/agent/agents/specialist"
	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
	llmx "github.com/tanpawarit/ai-support-router/agent/llm"
	statex "github.com/tanpawarit/ai-support-router/agent/state"
	"github.com/tanpawarit/ai-support-router/api"
	configx "github.com/tanpawarit/ai-support-router/pkg/config"
	"github.com/tanpawarit/ai-support-router/pkg/database"
	_ "github.com/tanpawarit/ai-support-router/pkg/logger/autoload"
	openrouterx "github.com/tanpawarit/ai-support-router/pkg/openrouter"
	"github.com/tanpawarit/ai-support-router/pkg/ratelimit"
)

type AppConfig struct {
	Port            int           `envconfig:"PORT" split_words:"true" default:"3000"`
	Env             string        `envconfig:"ENV" split_words:"true" default:"production"`
	FrontendURL     string        `envconfig:"FRONTEND_URL" split_words:"true"`
	Migrate         bool          `envconfig:"MIGRATE" split_words:"true" default:"true"`
	Seed            bool          `envconfig:"SEED" split_words:"true" default:"false"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" split_words:"true" default:"10s"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCfg := configx.MustNew[AppConfig]("APP")
	llmCfg := configx.MustNew[llmx.Config]("LLM")
	dbCfg := configx.MustNew[database.Config]("DATABASE")
	limitCfg := configx.MustNew[ratelimit.Config]("RATE_LIMIT")

	db, err := database.New(*dbCfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if appCfg.Migrate {
		if err := statex.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if appCfg.Seed {
		if err := statex.Seed(ctx, db); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	store, err := statex.NewBunStore(db)
	if err != nil {
		return err
	}

	if err := llmCfg.Ready(); err != nil {
		log.Warn().Err(err).Msg("reasoning provider not configured, replies will fail until it is")
	} else {
		probeProvider(ctx, *llmCfg)
	}

	models, err := specialist.NewRegistry(ctx, *llmCfg, store)
	if err != nil {
		return err
	}

	svc, err := orchestrator.New(store, models)
	if err != nil {
		return err
	}

	limiter, err := ratelimit.New(*limitCfg, func() ratelimit.UpstashConfig {
		return *configx.MustNew[ratelimit.UpstashConfig]("UPSTASH_REDIS")
	})
	if err != nil {
		return err
	}

	if appCfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := api.NewRouter(api.Config{Env: appCfg.Env, FrontendURL: appCfg.FrontendURL}, api.Deps{
		Chat:    svc,
		Limiter: limiter,
		Ping: func(ctx context.Context) error {
			return database.Ping(ctx, db)
		},
		AIReady: llmCfg.Ready,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", appCfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", appCfg.Port).Str("env", appCfg.Env).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), appCfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// probeProvider checks that the configured default model is served. The
// result is only logged.
func probeProvider(ctx context.Context, cfg llmx.Config) {
	probeCfg := cfg.OpenRouterFor(contractx.AgentTypeRouter)
	client := openrouterx.NewClient(probeCfg)

	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := openrouterx.Probe(probeCtx, client, probeCfg.Model); err != nil {
		log.Warn().Err(err).Str("model", probeCfg.Model).Msg("provider probe failed")
		return
	}
	log.Info().Str("model", probeCfg.Model).Msg("provider reachable")
}
