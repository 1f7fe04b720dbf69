// Package redisearch implements the hosted vector index backend on Redis
// Stack's FT.SEARCH with a FLAT cosine vector field.
package redisearch

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/redis/go-redis/v9"

	"github.com/sanketexe/legal-chatbot/internal/domain"
	"github.com/sanketexe/legal-chatbot/internal/observability"
)

const (
	redisDialectVersion = 2
	keyPrefix           = "case:"
)

// Index is a VectorIndex backed by a Redis search index.
type Index struct {
	client             *redis.Client
	indexName          string
	embeddingDimension int
}

// NewIndex creates the backend and ensures the search index exists.
func NewIndex(client *redis.Client, indexName string, embeddingDimension int) (*Index, error) {
	idx := &Index{
		client:             client,
		indexName:          indexName,
		embeddingDimension: embeddingDimension,
	}

	if err := idx.createIndex(); err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return idx, nil
}

// Metric reports cosine distance: Redis returns 1 - cos(a, b) in [0, 2].
func (idx *Index) Metric() domain.SimilarityMetric {
	return domain.MetricCosineDistance
}

// floatsToBytes converts a float64 slice to the FLOAT32 binary layout Redis
// expects.
func floatsToBytes(fs []float64) []byte {
	const bytesPerFloat32 = 4
	buf := make([]byte, len(fs)*bytesPerFloat32)

	for i, f := range fs {
		u := math.Float32bits(float32(f))
		binary.LittleEndian.PutUint32(buf[i*bytesPerFloat32:], u)
	}

	return buf
}

// Upsert persists a batch of cases. Items with a missing ID, a wrong vector
// dimension, or empty text are rejected individually; the batch continues.
func (idx *Index) Upsert(ctx context.Context, items []domain.IndexItem) (*domain.UpsertReport, error) {
	logger := observability.FromContext(ctx)

	report := &domain.UpsertReport{}
	pipe := idx.client.Pipeline()

	for _, item := range items {
		if reason := validateItem(item, idx.embeddingDimension); reason != "" {
			report.Rejected = append(report.Rejected, domain.RejectedItem{ID: item.ID, Reason: reason})
			continue
		}

		fields := []interface{}{
			"embedding", floatsToBytes(item.Vector),
			"text", item.Text,
			"indexed_at", time.Now().Unix(),
		}
		for k, v := range item.Metadata {
			fields = append(fields, "meta_"+k, v)
		}

		pipe.HSet(ctx, keyPrefix+item.ID, fields...)
		report.Indexed++
	}

	if _, err := pipe.Exec(ctx); err != nil {
		logger.Error("vector upsert failed", observability.Error(err))
		return nil, fmt.Errorf("failed to upsert: %w", err)
	}

	logger.Debug("vector upsert completed",
		observability.Int("indexed", report.Indexed),
		observability.Int("rejected", len(report.Rejected)))
	return report, nil
}

func validateItem(item domain.IndexItem, dimension int) string {
	switch {
	case item.ID == "":
		return "missing id"
	case len(item.Vector) != dimension:
		return fmt.Sprintf("vector dimension %d, want %d", len(item.Vector), dimension)
	case item.Text == "":
		return "missing text"
	}
	return ""
}

// Query runs a KNN search and returns hits with their raw cosine distance.
func (idx *Index) Query(
	ctx context.Context,
	vector []float64,
	topK int,
	filter map[string]string,
) ([]domain.SearchHit, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	logger := observability.FromContext(ctx)

	query := fmt.Sprintf("%s=>[KNN %d @embedding $vec AS score]", filterExpression(filter), topK)

	results, err := idx.client.FTSearchWithArgs(ctx, idx.indexName, query,
		&redis.FTSearchOptions{
			Return: returnFields(),
			SortBy: []redis.FTSearchSortBy{
				{FieldName: "score", Asc: true},
			},
			LimitOffset:    0,
			Limit:          topK,
			DialectVersion: redisDialectVersion,
			Params: map[string]any{
				"vec": floatsToBytes(vector),
			},
		},
	).Result()
	if err != nil {
		logger.Error("vector search failed", observability.Error(err))
		return nil, fmt.Errorf("search failed: %w", err)
	}

	logger.Debug("vector search completed",
		observability.Int("total_docs", results.Total),
		observability.Int("docs_returned", len(results.Docs)))

	hits := make([]domain.SearchHit, 0, len(results.Docs))
	for _, doc := range results.Docs {
		if hit, ok := idx.parseDoc(ctx, doc); ok {
			hits = append(hits, hit)
		}
	}
	return hits, nil
}

// metaKeys lists the metadata keys that are both declared in the schema and
// pulled back with each hit.
func metaKeys() []string {
	return []string{
		domain.MetaTitle, domain.MetaCourt, domain.MetaDate, domain.MetaJudges,
		domain.MetaCitation, domain.MetaActs, domain.MetaSource, domain.MetaURL,
	}
}

// filterExpression renders the metadata filter as TAG clauses, or the
// match-all query when the filter is empty. Keys are sorted so the expression
// is deterministic.
func filterExpression(filter map[string]string) string {
	if len(filter) == 0 {
		return "*"
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	for _, k := range keys {
		clauses = append(clauses, fmt.Sprintf("@meta_%s:{%s}", k, escapeTagValue(filter[k])))
	}
	return strings.Join(clauses, " ")
}

// escapeTagValue backslash-escapes the ASCII punctuation RediSearch treats as
// syntax inside a TAG clause, spaces and commas included.
func escapeTagValue(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r <= unicode.MaxASCII && !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// returnFields lists the document fields to pull back with each hit: the
// stored text, the KNN score alias, and every known metadata key.
func returnFields() []redis.FTSearchReturn {
	fields := []redis.FTSearchReturn{
		{FieldName: "text"},
		{FieldName: "score"},
	}
	for _, key := range metaKeys() {
		fields = append(fields, redis.FTSearchReturn{FieldName: "meta_" + key})
	}
	return fields
}

// Count returns the number of indexed documents.
func (idx *Index) Count(ctx context.Context) (int, error) {
	info, err := idx.client.FTInfo(ctx, idx.indexName).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read index info: %w", err)
	}
	return info.NumDocs, nil
}

// createIndex creates the Redis search index if it doesn't exist.
func (idx *Index) createIndex() error {
	ctx := context.Background()
	logger := observability.FromContext(ctx)

	if _, err := idx.client.FTInfo(ctx, idx.indexName).Result(); err == nil {
		logger.Info("redis search index already exists, skipping creation",
			observability.String("index_name", idx.indexName))
		return nil
	}

	logger.Info("creating redis search index",
		observability.String("index_name", idx.indexName),
		observability.Int("embedding_dimension", idx.embeddingDimension))

	schemas := []*redis.FieldSchema{
		{
			FieldName: "embedding",
			FieldType: redis.SearchFieldTypeVector,
			VectorArgs: &redis.FTVectorArgs{
				FlatOptions: &redis.FTFlatOptions{
					Type:           "FLOAT32",
					Dim:            idx.embeddingDimension,
					DistanceMetric: "COSINE",
				},
			},
		},
		{
			FieldName: "text",
			FieldType: redis.SearchFieldTypeText,
		},
		{
			FieldName: "indexed_at",
			FieldType: redis.SearchFieldTypeNumeric,
			Sortable:  true,
		},
	}
	// Metadata fields are TAG so exact-match filters work without tokenization.
	for _, key := range metaKeys() {
		schemas = append(schemas, &redis.FieldSchema{
			FieldName: "meta_" + key,
			FieldType: redis.SearchFieldTypeTag,
		})
	}

	_, err := idx.client.FTCreate(ctx, idx.indexName,
		&redis.FTCreateOptions{
			OnHash: true,
			Prefix: []any{keyPrefix},
		},
		schemas...,
	).Result()
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// parseDoc converts a Redis document into a SearchHit. Metadata fields are
// stored under a "meta_" prefix to keep them apart from the schema fields.
func (idx *Index) parseDoc(ctx context.Context, doc redis.Document) (domain.SearchHit, bool) {
	logger := observability.FromContext(ctx)

	scoreStr, ok := doc.Fields["score"]
	if !ok {
		return domain.SearchHit{}, false
	}
	distance, err := strconv.ParseFloat(scoreStr, 64)
	if err != nil {
		logger.Warn("unparseable score in search result",
			observability.String("key", doc.ID),
			observability.Error(err))
		return domain.SearchHit{}, false
	}

	metadata := make(map[string]string)
	for field, value := range doc.Fields {
		if name, found := strings.CutPrefix(field, "meta_"); found {
			metadata[name] = value
		}
	}

	return domain.SearchHit{
		ID:       strings.TrimPrefix(doc.ID, keyPrefix),
		Value:    distance,
		Text:     doc.Fields["text"],
		Metadata: metadata,
	}, true
}
