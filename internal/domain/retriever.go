package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sanketexe/legal-chatbot/internal/observability"
)

const (
	// Over-fetch factor: query the index for more candidates than requested
	// so threshold filtering does not starve the result set.
	overFetchFactor = 2

	defaultExcerptLength = 400
)

// CaseRetriever converts a free-text legal question into a ranked list of
// relevant precedent cases. It owns the normalization of the index's native
// similarity unit into the external [0,1] relevance contract.
type CaseRetriever struct {
	embeddingGen  EmbeddingGenerator
	index         VectorIndex
	threshold     float64
	excerptLength int
}

// NewCaseRetriever creates a new case retriever.
func NewCaseRetriever(
	embeddingGen EmbeddingGenerator,
	index VectorIndex,
	threshold float64,
	excerptLength int,
) *CaseRetriever {
	if excerptLength <= 0 {
		excerptLength = defaultExcerptLength
	}
	return &CaseRetriever{
		embeddingGen:  embeddingGen,
		index:         index,
		threshold:     threshold,
		excerptLength: excerptLength,
	}
}

// Retrieve embeds the query, runs similarity search with over-fetch, filters
// by the relevance threshold, and returns at most topK cases sorted by
// descending relevance. A nil slice with a nil error means the index holds no
// qualifying matches; that is a distinct non-fatal outcome, not a failure.
func (r *CaseRetriever) Retrieve(ctx context.Context, query string, topK int) ([]RelevantCase, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrInvalidQuery
	}
	if topK <= 0 {
		return nil, ErrInvalidTopK
	}

	logger := observability.FromContext(ctx)

	embedding, err := r.embeddingGen.Generate(ctx, query)
	if err != nil {
		logger.Error("failed to embed query", observability.Error(err))
		return nil, fmt.Errorf("%w: embedding failed: %w", ErrRetrievalUnavailable, err)
	}

	hits, err := r.index.Query(ctx, embedding, topK*overFetchFactor, nil)
	if err != nil {
		logger.Error("vector index query failed", observability.Error(err))
		return nil, fmt.Errorf("%w: index query failed: %w", ErrRetrievalUnavailable, err)
	}

	metric := r.index.Metric()

	var cases []RelevantCase
	for _, hit := range hits {
		relevance := normalizeRelevance(metric, hit.Value)
		if relevance < r.threshold {
			continue
		}
		cases = append(cases, r.toRelevantCase(hit, relevance))
	}

	sort.SliceStable(cases, func(i, j int) bool {
		return cases[i].Relevance > cases[j].Relevance
	})
	if len(cases) > topK {
		cases = cases[:topK]
	}

	logger.Info("case retrieval completed",
		observability.Int("candidates", len(hits)),
		observability.Int("relevant", len(cases)),
		observability.Float64("threshold", r.threshold))

	return cases, nil
}

// normalizeRelevance maps the index's native unit into [0,1], 1 = identical.
func normalizeRelevance(metric SimilarityMetric, value float64) float64 {
	var relevance float64
	switch metric {
	case MetricCosineDistance:
		relevance = (2 - value) / 2
	case MetricCosineScore:
		relevance = value
	default:
		relevance = value
	}
	if relevance < 0 {
		return 0
	}
	if relevance > 1 {
		return 1
	}
	return relevance
}

func (r *CaseRetriever) toRelevantCase(hit SearchHit, relevance float64) RelevantCase {
	meta := hit.Metadata
	if meta == nil {
		meta = map[string]string{}
	}

	var acts []string
	if raw := meta[MetaActs]; raw != "" {
		// Acts are stored as a JSON array in metadata; a plain string is
		// tolerated as a single act.
		if err := json.Unmarshal([]byte(raw), &acts); err != nil {
			acts = []string{raw}
		}
	}

	excerpt := hit.Text
	if len(excerpt) > r.excerptLength {
		// Back off to a rune boundary so the cut never splits a multibyte
		// character.
		cut := r.excerptLength
		for cut > 0 && !utf8.RuneStart(excerpt[cut]) {
			cut--
		}
		excerpt = excerpt[:cut]
	}

	return RelevantCase{
		ID:        hit.ID,
		Title:     meta[MetaTitle],
		Court:     meta[MetaCourt],
		Date:      meta[MetaDate],
		Judges:    meta[MetaJudges],
		Citation:  meta[MetaCitation],
		Acts:      acts,
		URL:       meta[MetaURL],
		Relevance: relevance,
		Excerpt:   excerpt,
	}
}
