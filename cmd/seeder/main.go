// Command seeder loads a JSON item catalog into the items table.
// It is intended to be run offline, not as part of the main server.
//
// Flags:
//
//	--file     path to the catalog JSON file (required)
//	--dry-run  parse and validate without writing to DB
//
// The file is an array of objects:
//
//	{
//	  "language": "es",
//	  "kind": "VOCABULARY",
//	  "content": {"word": "gato", "translation": "cat"},
//	  "difficulty": -1.2,
//	  "discrimination": 1.0,
//	  "cefr_level": "A2"
//	}
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/adaptivelang/srs-backend/internal/adapter/postgres"
	itemrepo "github.com/adaptivelang/srs-backend/internal/adapter/postgres/item"
	"github.com/adaptivelang/srs-backend/internal/app"
	"github.com/adaptivelang/srs-backend/internal/config"
	"github.com/adaptivelang/srs-backend/internal/domain"
)

type seedItem struct {
	ID             *uuid.UUID      `json:"id"`
	Language       string          `json:"language"`
	Kind           string          `json:"kind"`
	Content        json.RawMessage `json:"content"`
	Difficulty     float64         `json:"difficulty"`
	Discrimination float64         `json:"discrimination"`
	CEFRLevel      *string         `json:"cefr_level"`
}

func main() {
	fileFlag := flag.String("file", "", "path to the catalog JSON file")
	dryRunFlag := flag.Bool("dry-run", false, "parse and validate without writing to DB")
	flag.Parse()

	_ = godotenv.Load()

	if *fileFlag == "" {
		log.Fatal("--file is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg.Log)

	items, err := parseCatalog(*fileFlag)
	if err != nil {
		logger.Error("parse catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("catalog parsed", slog.Int("items", len(items)), slog.Bool("dry_run", *dryRunFlag))

	if *dryRunFlag {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	count, err := itemrepo.New(pool).CreateBatch(ctx, items)
	if err != nil {
		logger.Error("seed items", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("catalog seeded", slog.Int("inserted", count))
}

func parseCatalog(path string) ([]domain.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var raw []seedItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}

	items := make([]domain.Item, 0, len(raw))
	for i, r := range raw {
		kind := domain.ContentKind(r.Kind)
		content, err := domain.UnmarshalContent(kind, r.Content)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if err := domain.ValidateContent(content); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}

		id := uuid.New()
		if r.ID != nil {
			id = *r.ID
		}
		var level *domain.CEFRLevel
		if r.CEFRLevel != nil {
			l := domain.CEFRLevel(*r.CEFRLevel)
			if !l.IsValid() {
				return nil, fmt.Errorf("item %d: invalid cefr_level %q", i, *r.CEFRLevel)
			}
			level = &l
		}

		items = append(items, domain.Item{
			ID:             id,
			Language:       r.Language,
			Kind:           kind,
			Content:        content,
			Difficulty:     r.Difficulty,
			Discrimination: r.Discrimination,
			Level:          level,
		})
	}
	return items, nil
}
