// Package bolt implements the local persistent vector index backend on
// bbolt, with brute-force cosine search over the stored vectors.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/sanketexe/legal-chatbot/internal/domain"
	"github.com/sanketexe/legal-chatbot/internal/observability"
)

var (
	bucketVectors = []byte("vectors")
	bucketTexts   = []byte("texts")
	bucketMeta    = []byte("meta")
)

// Index is a VectorIndex backed by a single bbolt file. Suited to local
// development and corpora up to a few tens of thousands of cases; search is
// a linear scan.
type Index struct {
	db        *bbolt.DB
	dimension int
}

// NewIndex opens (or creates) the database file and its buckets.
func NewIndex(path string, dimension int) (*Index, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketVectors, bucketTexts, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Index{db: db, dimension: dimension}, nil
}

// Close releases the underlying database file.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// Metric reports cosine score: 1 = identical, 0 = unrelated.
func (idx *Index) Metric() domain.SimilarityMetric {
	return domain.MetricCosineScore
}

// Upsert writes a batch in one transaction. Invalid items are rejected
// individually; re-upserting an ID overwrites the previous entry.
func (idx *Index) Upsert(ctx context.Context, items []domain.IndexItem) (*domain.UpsertReport, error) {
	logger := observability.FromContext(ctx)
	report := &domain.UpsertReport{}

	err := idx.db.Update(func(tx *bbolt.Tx) error {
		vectors := tx.Bucket(bucketVectors)
		texts := tx.Bucket(bucketTexts)
		meta := tx.Bucket(bucketMeta)

		for _, item := range items {
			if reason := idx.validate(item); reason != "" {
				report.Rejected = append(report.Rejected, domain.RejectedItem{ID: item.ID, Reason: reason})
				continue
			}

			metaData, err := json.Marshal(item.Metadata)
			if err != nil {
				report.Rejected = append(report.Rejected, domain.RejectedItem{
					ID:     item.ID,
					Reason: fmt.Sprintf("unserializable metadata: %v", err),
				})
				continue
			}

			key := []byte(item.ID)
			if err := vectors.Put(key, vectorToBytes(item.Vector)); err != nil {
				return err
			}
			if err := texts.Put(key, []byte(item.Text)); err != nil {
				return err
			}
			if err := meta.Put(key, metaData); err != nil {
				return err
			}
			report.Indexed++
		}
		return nil
	})
	if err != nil {
		logger.Error("bolt upsert failed", observability.Error(err))
		return nil, fmt.Errorf("failed to upsert: %w", err)
	}

	return report, nil
}

func (idx *Index) validate(item domain.IndexItem) string {
	switch {
	case item.ID == "":
		return "missing id"
	case len(item.Vector) != idx.dimension:
		return fmt.Sprintf("vector dimension %d, want %d", len(item.Vector), idx.dimension)
	case item.Text == "":
		return "missing text"
	}
	return ""
}

// Query scans every stored vector, scores it by cosine similarity, applies
// the optional metadata filter, and returns the topK best hits.
func (idx *Index) Query(
	ctx context.Context,
	vector []float64,
	topK int,
	filter map[string]string,
) ([]domain.SearchHit, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}
	if len(vector) != idx.dimension {
		return nil, fmt.Errorf("query vector dimension %d, want %d", len(vector), idx.dimension)
	}

	var hits []domain.SearchHit

	err := idx.db.View(func(tx *bbolt.Tx) error {
		vectors := tx.Bucket(bucketVectors)
		texts := tx.Bucket(bucketTexts)
		meta := tx.Bucket(bucketMeta)

		return vectors.ForEach(func(k, v []byte) error {
			stored, err := bytesToVector(v)
			if err != nil {
				return fmt.Errorf("corrupt vector for %s: %w", k, err)
			}

			var metadata map[string]string
			if raw := meta.Get(k); raw != nil {
				if err := json.Unmarshal(raw, &metadata); err != nil {
					return fmt.Errorf("corrupt metadata for %s: %w", k, err)
				}
			}
			if !matchesFilter(metadata, filter) {
				return nil
			}

			hits = append(hits, domain.SearchHit{
				ID:       string(k),
				Value:    cosineSimilarity(vector, stored),
				Text:     string(texts.Get(k)),
				Metadata: metadata,
			})
			return nil
		})
	})
	if err != nil {
		observability.FromContext(ctx).Error("bolt query failed", observability.Error(err))
		return nil, fmt.Errorf("search failed: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Value > hits[j].Value
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Count returns the number of stored vectors.
func (idx *Index) Count(_ context.Context) (int, error) {
	var count int
	err := idx.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(bucketVectors).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count vectors: %w", err)
	}
	return count, nil
}

func matchesFilter(metadata, filter map[string]string) bool {
	for k, want := range filter {
		if metadata[k] != want {
			return false
		}
	}
	return true
}

func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

const bytesPerFloat64 = 8

func vectorToBytes(vector []float64) []byte {
	buf := make([]byte, len(vector)*bytesPerFloat64)
	for i, f := range vector {
		binary.LittleEndian.PutUint64(buf[i*bytesPerFloat64:], math.Float64bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float64, error) {
	if len(data)%bytesPerFloat64 != 0 {
		return nil, fmt.Errorf("vector payload length %d not a multiple of %d", len(data), bytesPerFloat64)
	}
	vector := make([]float64, len(data)/bytesPerFloat64)
	for i := range vector {
		vector[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*bytesPerFloat64:]))
	}
	return vector, nil
}
