// Command load-cases bulk-loads a JSON case corpus into the configured
// vector index.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/sanketexe/legal-chatbot/internal/config"
	embeddings "github.com/sanketexe/legal-chatbot/internal/embedding/openai"
	"github.com/sanketexe/legal-chatbot/internal/index"
	"github.com/sanketexe/legal-chatbot/internal/ingest"
	"github.com/sanketexe/legal-chatbot/internal/observability"
)

func main() {
	file := flag.String("file", "data/cases.json", "path to a JSON array of case records")
	flag.Parse()

	cfg := config.Load()

	logger, err := observability.InitLogger()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	emb, err := embeddings.NewGenerator(cfg.Embedding)
	if err != nil {
		log.Fatalf("Failed to create embedding generator: %v", err)
	}

	idx, err := index.New(&cfg.Index, emb.Dimension())
	if err != nil {
		log.Fatalf("Failed to open vector index: %v", err)
	}

	loader := ingest.NewLoader(emb, idx)

	report, err := loader.LoadFile(context.Background(), *file)
	if err != nil {
		log.Fatalf("Failed to load corpus: %v", err)
	}

	logger.Info("ingestion finished",
		observability.String("file", *file),
		observability.Int("loaded", report.Loaded),
		observability.Int("indexed", report.Indexed),
		observability.Int("rejected", len(report.Rejected)))

	for _, rejected := range report.Rejected {
		logger.Warn("record rejected",
			observability.String("case_id", rejected.ID),
			observability.String("reason", rejected.Reason))
	}
}
