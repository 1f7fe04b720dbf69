// Package ingest loads a case corpus from disk into a vector index.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sanketexe/legal-chatbot/internal/domain"
	"github.com/sanketexe/legal-chatbot/internal/observability"
)

const defaultBatchSize = 32

// Loader embeds case records and upserts them into a vector index in batches.
type Loader struct {
	embeddings domain.EmbeddingGenerator
	index      domain.VectorIndex
	batchSize  int
}

// Report summarizes one ingestion run. Rejected items carry the reason each
// record was refused; the run continues past them.
type Report struct {
	Loaded   int
	Indexed  int
	Rejected []domain.RejectedItem
}

// NewLoader creates a corpus loader.
func NewLoader(embeddings domain.EmbeddingGenerator, index domain.VectorIndex) *Loader {
	return &Loader{
		embeddings: embeddings,
		index:      index,
		batchSize:  defaultBatchSize,
	}
}

// LoadFile reads a JSON array of case records from path and indexes them.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file: %w", err)
	}

	var records []domain.CaseRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse corpus file: %w", err)
	}

	return l.Load(ctx, records)
}

// Load embeds and indexes the given records. Infrastructure failures abort
// the run; per-record problems are reported and skipped.
func (l *Loader) Load(ctx context.Context, records []domain.CaseRecord) (*Report, error) {
	logger := observability.FromContext(ctx)

	report := &Report{Loaded: len(records)}
	batch := make([]domain.IndexItem, 0, l.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		upserted, err := l.index.Upsert(ctx, batch)
		if err != nil {
			return fmt.Errorf("failed to upsert batch: %w", err)
		}
		report.Indexed += upserted.Indexed
		report.Rejected = append(report.Rejected, upserted.Rejected...)
		batch = batch[:0]
		return nil
	}

	for _, record := range records {
		if reason := validateRecord(record); reason != "" {
			report.Rejected = append(report.Rejected, domain.RejectedItem{
				ID:     record.ID,
				Reason: reason,
			})
			continue
		}

		vector, err := l.embeddings.Generate(ctx, record.Text)
		if err != nil {
			logger.Warn("embedding failed, skipping record",
				observability.String("case_id", record.ID),
				observability.Error(err))
			report.Rejected = append(report.Rejected, domain.RejectedItem{
				ID:     record.ID,
				Reason: fmt.Sprintf("embedding failed: %v", err),
			})
			continue
		}

		batch = append(batch, domain.IndexItem{
			ID:       record.ID,
			Vector:   vector,
			Text:     record.Text,
			Metadata: recordMetadata(record),
		})

		if len(batch) >= l.batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}

	logger.Info("corpus loaded",
		observability.Int("loaded", report.Loaded),
		observability.Int("indexed", report.Indexed),
		observability.Int("rejected", len(report.Rejected)))

	return report, nil
}

func validateRecord(record domain.CaseRecord) string {
	switch {
	case strings.TrimSpace(record.ID) == "":
		return "missing id"
	case strings.TrimSpace(record.Text) == "":
		return "missing full_text"
	case strings.TrimSpace(record.Title) == "":
		return "missing title"
	default:
		return ""
	}
}

func recordMetadata(record domain.CaseRecord) map[string]string {
	meta := map[string]string{
		domain.MetaTitle: record.Title,
	}

	if record.Court != "" {
		meta[domain.MetaCourt] = record.Court
	}
	if record.Date != "" {
		meta[domain.MetaDate] = record.Date
	}
	if record.Judges != "" {
		meta[domain.MetaJudges] = record.Judges
	}
	if record.Citation != "" {
		meta[domain.MetaCitation] = record.Citation
	}
	if record.Source != "" {
		meta[domain.MetaSource] = record.Source
	}
	if record.URL != "" {
		meta[domain.MetaURL] = record.URL
	}
	if len(record.Acts) > 0 {
		// Stored as a JSON array so the retriever can round-trip it.
		acts, err := json.Marshal(record.Acts)
		if err == nil {
			meta[domain.MetaActs] = string(acts)
		}
	}

	return meta
}
