// Package main implements the VondraLink API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/Jawher-Sadok/VondraLink/engine/activity"
	"github.com/Jawher-Sadok/VondraLink/engine/curator"
	"github.com/Jawher-Sadok/VondraLink/engine/ecosystem"
	"github.com/Jawher-Sadok/VondraLink/engine/planner"
	"github.com/Jawher-Sadok/VondraLink/engine/semantic"
	"github.com/Jawher-Sadok/VondraLink/pkg/clip"
	"github.com/Jawher-Sadok/VondraLink/pkg/mid"
	"github.com/Jawher-Sadok/VondraLink/pkg/resilience"
)

// Config holds all environment-based configuration.
type Config struct {
	Port        string
	MetricsPort string
	ClipURL     string
	QdrantURL   string
	Collection  string
	Neo4jURL    string
	Neo4jUser   string
	Neo4jPass   string
	NatsURL     string
	LLMBaseURL  string
	LLMToken    string
	LLMModel    string
	CORSOrigin  string
}

func loadConfig() Config {
	return Config{
		Port:        envOr("PORT", "8080"),
		MetricsPort: envOr("METRICS_PORT", "9090"),
		ClipURL:     envOr("CLIP_URL", "http://localhost:8000"),
		QdrantURL:   envOr("QDRANT_URL", "localhost:6334"),
		Collection:  envOr("QDRANT_COLLECTION", "lifestyle_products"),
		Neo4jURL:    os.Getenv("NEO4J_URL"),
		Neo4jUser:   envOr("NEO4J_USER", "neo4j"),
		Neo4jPass:   envOr("NEO4J_PASS", "password"),
		NatsURL:     os.Getenv("NATS_URL"),
		LLMBaseURL:  os.Getenv("LLM_BASE_URL"),
		LLMToken:    os.Getenv("OPENAI_API_KEY"),
		LLMModel:    envOr("LLM_MODEL", "gpt-4-turbo"),
		CORSOrigin:  envOr("CORS_ORIGIN", "*"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- CLIP sidecar ---
	encoder := clip.New(cfg.ClipURL, clip.DefaultOptions())

	// --- Qdrant ---
	vectorStore, err := semantic.New(cfg.QdrantURL, cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer vectorStore.Close()

	// --- Brand graph (optional) ---
	var brandGraph *ecosystem.Graph
	if cfg.Neo4jURL != "" {
		brandGraph, err = ecosystem.New(ctx, cfg.Neo4jURL, cfg.Neo4jUser, cfg.Neo4jPass)
		if err != nil {
			logger.Warn("brand graph unavailable, ecosystem strategies disabled", "err", err)
			brandGraph = nil
		}
	}
	defer brandGraph.Close(ctx)

	// --- Activity store, mirrored to NATS when configured ---
	var nc *nats.Conn
	if cfg.NatsURL != "" {
		nc, err = nats.Connect(cfg.NatsURL)
		if err != nil {
			logger.Warn("nats unavailable, activity events disabled", "err", err)
		} else {
			defer nc.Close()
		}
	}
	recorder := activity.NewRecorder(activity.NewStore(0), nc, logger)

	// --- Planner: LLM when configured, rules otherwise ---
	rules := planner.NewRules(graphOrNil(brandGraph))
	var plans planner.Planner = rules
	if cfg.LLMToken != "" || cfg.LLMBaseURL != "" {
		llmOpts := planner.DefaultLLMOptions()
		llmOpts.BaseURL = cfg.LLMBaseURL
		llmOpts.Token = cfg.LLMToken
		llmOpts.Model = cfg.LLMModel
		llm, err := planner.NewLLM(llmOpts, rules, logger)
		if err != nil {
			logger.Warn("llm planner unavailable, using rule planner", "err", err)
		} else {
			plans = llm
		}
	}

	// --- Curator ---
	breaker := resilience.NewBreaker(resilience.DefaultBreakerOpts)
	svc := curator.New(encoder, vectorStore, plans, breaker, curator.DefaultOptions(), logger)

	// --- HTTP servers ---
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("POST /api/search", handleSearch(svc, recorder, logger))
	mux.HandleFunc("POST /api/recommendations", handleRecommendations(svc, recorder, logger))
	mux.HandleFunc("POST /api/activity/views", handleViews(recorder))
	mux.HandleFunc("GET /api/activity/{user_id}", handleActivity(recorder))
	mux.HandleFunc("DELETE /api/activity/{user_id}", handleClear(recorder))

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.RequestID(),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("vondralink-api"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("GET /metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metricsMux,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("metrics server starting", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		metricsSrv.Shutdown(shutCtx)
		return srv.Shutdown(shutCtx)
	})
	return g.Wait()
}

// graphOrNil avoids handing the planner a typed nil interface value.
func graphOrNil(g *ecosystem.Graph) planner.BrandSource {
	if g == nil {
		return nil
	}
	return g
}
