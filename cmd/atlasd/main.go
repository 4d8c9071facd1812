package main

import (
	"context"
	_ "embed"
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"atlas/pkg/answerer"
	"atlas/pkg/feedback"
	"atlas/pkg/ingest"
	"atlas/pkg/log"
	"atlas/pkg/metrics"
	"atlas/pkg/pricing"
	"atlas/pkg/ratelimit"
	"atlas/pkg/rawstore/jsonl"
	"atlas/pkg/retrieval"
	"atlas/pkg/server"
	"atlas/pkg/tenant"
	"atlas/pkg/vectorindex"
	"atlas/pkg/vectorindex/memory"
	"atlas/pkg/vectorindex/remote"
)

const dataDirPerm = 0750

//go:embed VERSION
var Version string

func main() {
	// Load .env before anything reads the environment
	_ = godotenv.Load()

	dataDir := flag.String("data", "build/data", "Data directory path")
	addr := flag.String("addr", ":8080", "Listen address")
	flag.Parse()

	if err := os.MkdirAll(*dataDir, dataDirPerm); err != nil {
		log.Fatal().Err(err).Str("data_dir", *dataDir).Msg("Failed to create data directory")
	}

	salt := os.Getenv("ATLAS_API_KEY_SALT")
	if salt == "" {
		log.Fatal().Msg("ATLAS_API_KEY_SALT is required")
	}

	registry, err := tenant.NewRegistry(*dataDir, salt)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load tenant registry")
	}

	raw := jsonl.New(*dataDir, jsonl.Options{
		PersistClean:     envBool("ATLAS_PERSIST_CLEAN", false),
		AllowClientDocID: envBool("ATLAS_ALLOW_CLIENT_DOC_ID", false),
	})

	provider := vectorindex.NewProvider(vectorFactory())
	limiter := ratelimit.New(envFloat("ATLAS_RATE_RPS", 5), envInt("ATLAS_RATE_BURST", 10))
	table := pricing.Load(os.Getenv("ATLAS_PRICING_PATH"))
	m := metrics.New()

	var gen answerer.Answerer
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		gen = answerer.NewOpenAI(apiKey, envString("ATLAS_MODEL", "gpt-4o-mini"))
	} else {
		log.Warn().Msg("OPENAI_API_KEY is not set, answers degrade to the static fallback")
		gen = &answerer.Static{Text: retrieval.FallbackAnswer, Model: "static"}
	}

	feedbackStore, err := feedback.NewStore(filepath.Join(*dataDir, "feedback.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open feedback store")
	}

	api := server.NewAPIServer(
		server.Config{
			AdminKey:      os.Getenv("ATLAS_ADMIN_KEY"),
			MaxDocTextLen: envInt("ATLAS_MAX_DOC_TEXT_LEN", 0),
			Version:       strings.TrimSpace(Version),
		},
		registry,
		limiter,
		raw,
		ingest.New(raw, provider, m),
		retrieval.New(provider, gen, table, m, retrieval.Options{
			MaxDistance: envFloat("ATLAS_MAX_DISTANCE", 0),
		}),
		feedbackStore,
		m,
	)

	if err := api.Start(*addr); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}

	os.Exit(0)
}

// vectorFactory selects the vector index backend: a remote service when
// ATLAS_VECTOR_URL is set, otherwise the in-process index.
func vectorFactory() vectorindex.Factory {
	baseURL := os.Getenv("ATLAS_VECTOR_URL")
	if baseURL == "" {
		log.Warn().Msg("ATLAS_VECTOR_URL is not set, using the in-process vector index")
		embedder := memory.NewHashingEmbedder()
		return func(collection string) (vectorindex.Index, error) {
			return memory.New(embedder), nil
		}
	}

	cfg := remote.Config{
		BaseURL: baseURL,
		APIKey:  os.Getenv("ATLAS_VECTOR_API_KEY"),
		Timeout: time.Duration(envInt("ATLAS_VECTOR_TIMEOUT_SECONDS", 30)) * time.Second,
	}
	return func(collection string) (vectorindex.Index, error) {
		ix := remote.New(cfg, collection)
		// Create the collection on first access so a misconfigured backend
		// surfaces on the tenant's first request, not mid-ingest.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		if err := ix.EnsureCollection(ctx); err != nil {
			return nil, err
		}
		return ix, nil
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid boolean, using fallback")
		return fallback
	}
	return parsed
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid integer, using fallback")
		return fallback
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid number, using fallback")
		return fallback
	}
	return parsed
}
