package knowledge

import "time"

// Metadata keys every stored chunk carries. The ingestion pipeline stamps
// all three; Search relies on MetaBotID for tenant isolation.
const (
	MetaSource     = "source"
	MetaBotID      = "bot_id"
	MetaDocumentID = "document_id"
)

// VectorDimension is the embedding width of the documents table schema
// (the vector(768) column). AddBatch rejects vectors of any other width.
const VectorDimension = 768

// Chunk is a contiguous span of extracted document text plus its tagging
// metadata. The embedding is carried separately (see Store.AddBatch) so the
// type stays cheap to construct and compare in tests.
type Chunk struct {
	Content  string
	Metadata map[string]string
}

// Result is a single search hit.
type Result struct {
	Chunk      Chunk
	Similarity float32 // cosine similarity in [0,1]
}

// DocumentInfo describes one logical uploaded document. Documents have no
// storage row of their own; this is an aggregation over chunk metadata.
type DocumentInfo struct {
	DocumentID string    `json:"document_id"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
}

// SearchOption configures Search via functional options.
type SearchOption func(*searchConfig)

type searchConfig struct {
	topK    int
	filter  map[string]string
	timeout time.Duration
}

// WithTopK sets the maximum number of results. Default 5.
func WithTopK(k int) SearchOption {
	return func(c *searchConfig) {
		if k > 0 {
			c.topK = k
		}
	}
}

// WithFilter adds a metadata equality filter. Multiple calls AND together.
func WithFilter(key, value string) SearchOption {
	return func(c *searchConfig) {
		if c.filter == nil {
			c.filter = make(map[string]string)
		}
		c.filter[key] = value
	}
}

// ApplySearchOptions resolves opts to the effective top-k and metadata
// filter. Lets consumers' test doubles assert what a search was asked to
// do without a live store.
func ApplySearchOptions(opts ...SearchOption) (topK int, filter map[string]string) {
	cfg := buildSearchConfig(opts)
	return cfg.topK, cfg.filter
}

func buildSearchConfig(opts []SearchOption) *searchConfig {
	cfg := &searchConfig{
		topK:    5,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
