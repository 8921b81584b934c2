// Package main ingests a product catalog into the vector index and the brand
// compatibility graph. Input is a JSON array of catalog entries, typically
// exported by the scraping side.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/Jawher-Sadok/VondraLink/engine/ecosystem"
	"github.com/Jawher-Sadok/VondraLink/engine/semantic"
	"github.com/Jawher-Sadok/VondraLink/pkg/clip"
	"github.com/Jawher-Sadok/VondraLink/pkg/fn"
)

// CatalogEntry is one product in the input file.
type CatalogEntry struct {
	ID               string   `json:"id,omitempty"`
	Title            string   `json:"title"`
	Description      string   `json:"description,omitempty"`
	Price            string   `json:"price"`
	Image            string   `json:"image_online"`
	Link             string   `json:"link"`
	Brand            string   `json:"brand,omitempty"`
	CompatibleBrands []string `json:"compatible_brands,omitempty"`
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

	file := flag.String("file", "products.json", "catalog JSON file")
	batch := flag.Int("batch", 64, "upsert batch size")
	workers := flag.Int("workers", 4, "embedding concurrency")
	flag.Parse()

	if err := run(context.Background(), *file, *batch, *workers, logger); err != nil {
		logger.Error("ingest failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, file string, batch, workers int, logger *slog.Logger) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}
	var entries []CatalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}
	logger.Info("catalog loaded", "entries", len(entries))

	encoder := clip.New(envOr("CLIP_URL", "http://localhost:8000"), clip.DefaultOptions())

	store, err := semantic.New(envOr("QDRANT_URL", "localhost:6334"), envOr("QDRANT_COLLECTION", "lifestyle_products"))
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer store.Close()

	var graph *ecosystem.Graph
	if url := os.Getenv("NEO4J_URL"); url != "" {
		graph, err = ecosystem.New(ctx, url, envOr("NEO4J_USER", "neo4j"), envOr("NEO4J_PASS", "password"))
		if err != nil {
			logger.Warn("brand graph unavailable, skipping brand ingestion", "err", err)
			graph = nil
		} else {
			defer graph.Close(ctx)
		}
	}

	// Embed entries concurrently; an entry that fails to embed is dropped,
	// not fatal.
	records := embedEntries(ctx, encoder, entries, workers, logger)
	if len(records) == 0 {
		return fmt.Errorf("no entries could be embedded")
	}

	if err := store.EnsureCollection(ctx, len(records[0].Embedding)); err != nil {
		return err
	}
	for start := 0; start < len(records); start += batch {
		end := min(start+batch, len(records))
		if err := store.Upsert(ctx, records[start:end]); err != nil {
			return err
		}
		logger.Info("batch upserted", "from", start, "to", end)
	}

	if graph != nil {
		ingestBrands(ctx, graph, entries, logger)
	}

	logger.Info("ingest complete", "indexed", len(records))
	return nil
}

func embedEntries(ctx context.Context, encoder *clip.Client, entries []CatalogEntry, workers int, logger *slog.Logger) []semantic.ProductRecord {
	results := fn.ParMapResult(entries, workers, func(e CatalogEntry) fn.Result[semantic.ProductRecord] {
		text := e.Title
		if e.Description != "" {
			text += ". " + e.Description
		}
		embedding, err := encoder.EmbedText(ctx, text)
		if err != nil {
			return fn.Err[semantic.ProductRecord](fmt.Errorf("embed %q: %w", e.Title, err))
		}

		id := e.ID
		if id == "" {
			id = uuid.NewString()
		}
		return fn.Ok(semantic.ProductRecord{
			ID:        id,
			Embedding: embedding,
			Payload: map[string]any{
				"title":        e.Title,
				"price":        e.Price,
				"image_online": e.Image,
				"link":         e.Link,
				"brand":        e.Brand,
			},
		})
	})

	var records []semantic.ProductRecord
	for _, r := range results {
		rec, err := r.Unwrap()
		if err != nil {
			logger.Warn("entry skipped", "err", err)
			continue
		}
		records = append(records, rec)
	}
	return records
}

func ingestBrands(ctx context.Context, graph *ecosystem.Graph, entries []CatalogEntry, logger *slog.Logger) {
	for _, e := range entries {
		if e.Brand == "" {
			continue
		}
		if err := graph.SaveBrand(ctx, e.Brand); err != nil {
			logger.Warn("brand skipped", "brand", e.Brand, "err", err)
			continue
		}
		for _, other := range e.CompatibleBrands {
			if err := graph.SaveCompatibility(ctx, e.Brand, other); err != nil {
				logger.Warn("compatibility skipped", "from", e.Brand, "to", other, "err", err)
			}
		}
	}
}
