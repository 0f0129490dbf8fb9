// Package main is the entry point for the DeepSeek tool bridge.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tidwall/gjson"

	"dsbridge/config"
	"dsbridge/internal/deepseek"
	"dsbridge/internal/logging"
	"dsbridge/internal/observability"
	"dsbridge/internal/server"
	"dsbridge/internal/tools"
	"dsbridge/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	versionFlag := flag.Bool("version", false, "Print version information")
	smokeFlag := flag.Bool("smoke", false, "Run a live GET /models smoke test and exit")
	configPath := flag.String("config", "", "Path to optional YAML config file")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.Info())
		return 0
	}

	logging.Setup(slog.LevelInfo)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	var hooks *observability.PrometheusHooks
	if cfg.Metrics.Enabled {
		hooks = observability.NewPrometheusHooks()
	}

	client := newClient(cfg, hooks)

	if *smokeFlag {
		return runSmoke(client)
	}

	registry := tools.NewRegistry()
	var recorder tools.FallbackRecorder
	if hooks != nil {
		recorder = hooks
	}
	if err := tools.RegisterDeepSeek(registry, client, cfg.DeepSeek.DefaultModel, recorder); err != nil {
		slog.Error("failed to register tools", "error", err)
		return 1
	}

	srv := server.New(registry, &server.Config{
		MasterKey:       cfg.Server.MasterKey,
		MetricsEnabled:  cfg.Metrics.Enabled,
		MetricsEndpoint: cfg.Metrics.Endpoint,
		DefaultModel:    cfg.DeepSeek.DefaultModel,
	})

	logStartupInfo(cfg)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		slog.Info("shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	addr := ":" + cfg.Server.Port
	slog.Info("starting server", "address", addr)

	if err := srv.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("server stopped gracefully")
			return 0
		}
		slog.Error("server failed to start", "error", err)
		return 1
	}
	return 0
}

func newClient(cfg *config.Config, hooks *observability.PrometheusHooks) *deepseek.Client {
	clientCfg := deepseek.Config{
		APIKey:                 cfg.DeepSeek.APIKey,
		BaseURL:                cfg.DeepSeek.BaseURL,
		Timeout:                cfg.DeepSeek.Timeout(),
		DefaultModel:           cfg.DeepSeek.DefaultModel,
		EnableReasonerFallback: cfg.DeepSeek.EnableReasonerFallback,
		FallbackModel:          cfg.DeepSeek.FallbackModel,
	}
	if hooks != nil {
		clientCfg.Hooks = hooks
	}
	return deepseek.New(clientCfg)
}

// runSmoke performs a live /models call and prints the available model ids.
func runSmoke(client *deepseek.Client) int {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	models, err := client.ListModels(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "smoke test failed: %v\n", err)
		return 1
	}

	fmt.Println("smoke test OK. Available models:")
	gjson.GetBytes(models, "data.#.id").ForEach(func(_, id gjson.Result) bool {
		fmt.Printf("- %s\n", id.String())
		return true
	})
	return 0
}

// logStartupInfo logs the effective configuration on startup.
func logStartupInfo(cfg *config.Config) {
	slog.Info("starting dsbridge",
		"version", version.Version,
		"commit", version.Commit,
		"build_date", version.Date,
	)
	slog.Info("deepseek client configured",
		"base_url", cfg.DeepSeek.BaseURL,
		"default_model", cfg.DeepSeek.DefaultModel,
		"fallback_model", cfg.DeepSeek.FallbackModel,
		"reasoner_fallback", cfg.DeepSeek.EnableReasonerFallback,
		"timeout_ms", cfg.DeepSeek.TimeoutMS,
	)
	if cfg.Server.MasterKey == "" {
		slog.Warn("DSBRIDGE_MASTER_KEY not set - tool endpoints accept unauthenticated requests")
	} else {
		slog.Info("authentication enabled", "mode", "master_key")
	}
	if cfg.Metrics.Enabled {
		slog.Info("prometheus metrics enabled", "endpoint", cfg.Metrics.Endpoint)
	} else {
		slog.Info("prometheus metrics disabled")
	}
}
