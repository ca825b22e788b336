package transport

import "github.com/mharlan/vectorcache/store"

// The request/response payload shapes below are the thin translation
// layer named in SPEC_FULL.md §4.F / §6: they own JSON (de)serialization
// only, never validation logic that belongs to package store.

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type createCollectionRequest struct {
	CollectionName string        `json:"collection_name"`
	Dimension      int           `json:"dimension"`
	Distance       store.Distance `json:"distance"`
}

type createCollectionResponse struct {
	Result string `json:"result"`
	Status string `json:"status"`
}

type insertEmbeddingRequest struct {
	CollectionName string          `json:"collection_name"`
	Embedding      store.Embedding `json:"embedding"`
}

type batchInsertRequest struct {
	CollectionName string            `json:"collection_name"`
	Embeddings     []store.Embedding `json:"embeddings"`
}

type collectionNameRequest struct {
	CollectionName string `json:"collection_name"`
}

type getSimilarityRequest struct {
	CollectionName string    `json:"collection_name"`
	QueryVector    []float32 `json:"query_vector"`
	K              int       `json:"k"`
}

type similarityResult struct {
	Score     float32         `json:"score"`
	Embedding store.Embedding `json:"embedding"`
}
