package domain

import "time"

// CaseRecord is a stored precedent case. Records are immutable once indexed;
// the corpus only changes through a full re-index.
type CaseRecord struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Court    string   `json:"court"`
	Date     string   `json:"date"`
	Judges   string   `json:"judges"`
	Text     string   `json:"full_text"`
	Citation string   `json:"citation"`
	Acts     []string `json:"legal_acts"`
	Source   string   `json:"source"`
	URL      string   `json:"url"`
}

// RelevantCase is a query-time projection of a CaseRecord with a normalized
// relevance score in [0,1] (1 = identical) and a bounded excerpt. Never
// persisted; it lives for the duration of one query.
type RelevantCase struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Court     string   `json:"court,omitempty"`
	Date      string   `json:"date,omitempty"`
	Judges    string   `json:"judges,omitempty"`
	Citation  string   `json:"citation,omitempty"`
	Acts      []string `json:"legal_acts,omitempty"`
	URL       string   `json:"url,omitempty"`
	Relevance float64  `json:"relevance_score"`
	Excerpt   string   `json:"excerpt"`
}

// RagResult is the orchestrator's output. Sources are ordered by descending
// relevance; Answer is non-empty unless the call itself returned an error.
type RagResult struct {
	Answer    string         `json:"answer"`
	Sources   []RelevantCase `json:"sources"`
	Query     string         `json:"query"`
	Timestamp time.Time      `json:"timestamp"`
	Metrics   ResultMetrics  `json:"performance"`
}

// ResultMetrics carries per-step wall-clock timings and diagnostic metadata.
// LLMUsed is the generator name, "fallback" when the template path substituted
// for a failed model call, or "none" when generation was skipped entirely.
// Operators monitor the degradation rate through this field.
type ResultMetrics struct {
	TotalTime      time.Duration `json:"total_time"`
	RetrievalTime  time.Duration `json:"retrieval_time"`
	GenerationTime time.Duration `json:"generation_time"`
	CacheHit       bool          `json:"cache_hit"`
	LLMUsed        string        `json:"llm_used"`
	CasesRetrieved int           `json:"cases_retrieved"`
	ContextLength  int           `json:"context_length"`
}

// IndexItem is a vector plus its source text and metadata, as stored in a
// vector index. Upserting the same ID twice overwrites.
type IndexItem struct {
	ID       string
	Vector   []float64
	Text     string
	Metadata map[string]string
}

// SearchHit is a raw nearest-neighbor result. Value is in the index's native
// similarity unit; callers consult VectorIndex.Metric() to interpret it.
type SearchHit struct {
	ID       string
	Value    float64
	Text     string
	Metadata map[string]string
}

// RejectedItem records a single item refused during a batch upsert.
type RejectedItem struct {
	ID     string
	Reason string
}

// UpsertReport summarizes a batch upsert. A batch continues past per-item
// rejections; only infrastructure failures abort it.
type UpsertReport struct {
	Indexed  int
	Rejected []RejectedItem
}

// Metadata keys shared by the index backends and the retriever.
const (
	MetaTitle    = "title"
	MetaCourt    = "court"
	MetaDate     = "date"
	MetaJudges   = "judges"
	MetaCitation = "citation"
	MetaActs     = "legal_acts"
	MetaSource   = "source"
	MetaURL      = "url"
)
