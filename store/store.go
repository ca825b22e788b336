// Package store holds the collection/embedding data model and the
// CRUD-plus-query surface that the transport adapter and the replay
// parser both drive.
package store

import (
	"sync"

	"github.com/mharlan/vectorcache/similarity"
)

// Store is a mapping from collection name to Collection, guarded by a
// single reader/writer lock. Mutating operations take the write side;
// read-only operations take the read side.
type Store struct {
	mu          sync.RWMutex
	collections map[string]Collection
}

// New returns an empty Store.
func New() *Store {
	return &Store{collections: make(map[string]Collection)}
}

// CreateCollection creates a new, empty collection. It fails with
// KindUniqueViolation if name is already in use.
func (s *Store) CreateCollection(name string, dimension int, distance Distance) (Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.collections[name]; exists {
		return Collection{}, newError(KindUniqueViolation, "collection %q already exists", name)
	}
	c := Collection{Dimension: dimension, Distance: distance}
	s.collections[name] = c
	return c.Clone(), nil
}

// DeleteCollection removes a collection and all its embeddings. It
// fails with KindNotFound if name does not exist.
func (s *Store) DeleteCollection(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.collections[name]; !exists {
		return newError(KindNotFound, "collection %q not found", name)
	}
	delete(s.collections, name)
	return nil
}

// GetCollection returns a copy of the named collection, or ok=false if
// it does not exist.
func (s *Store) GetCollection(name string) (Collection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return Collection{}, false
	}
	return c.Clone(), true
}

// GetEmbeddings returns a copy of the named collection's embeddings, or
// ok=false if the collection does not exist.
func (s *Store) GetEmbeddings(name string) ([]Embedding, bool) {
	c, ok := s.GetCollection(name)
	if !ok {
		return nil, false
	}
	return c.Embeddings, true
}

// InsertEmbedding inserts a single embedding into the named
// collection, normalizing its vector first if the collection's metric
// is cosine. See BatchInsert's doc on batch-insert atomicity for how
// the two compare.
func (s *Store) InsertEmbedding(collectionName string, embedding Embedding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collectionName]
	if !ok {
		return newError(KindNotFound, "collection %q not found", collectionName)
	}

	prepared, err := prepareInsert(c, embedding)
	if err != nil {
		return err
	}
	c.Embeddings = append(c.Embeddings, prepared)
	s.collections[collectionName] = c
	return nil
}

// BatchInsert inserts each embedding in embeddings in order, stopping
// at the first error. Embeddings preceding the failure are committed:
// batch insert is NOT atomic, matching the source's observable
// behavior. A duplicate id within the batch itself (not only against
// the pre-existing collection) fails with KindUniqueViolation.
func (s *Store) BatchInsert(collectionName string, embeddings []Embedding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collectionName]
	if !ok {
		return newError(KindNotFound, "collection %q not found", collectionName)
	}

	for _, embedding := range embeddings {
		prepared, err := prepareInsert(c, embedding)
		if err != nil {
			s.collections[collectionName] = c
			return err
		}
		c.Embeddings = append(c.Embeddings, prepared)
	}
	s.collections[collectionName] = c
	return nil
}

// prepareInsert validates embedding against c's invariants and returns
// the embedding to store (vector normalized for cosine collections).
// It does not mutate c.
func prepareInsert(c Collection, embedding Embedding) (Embedding, error) {
	if c.findByID(embedding.ID) >= 0 {
		return Embedding{}, newError(KindUniqueViolation, "embedding id %v already exists", embedding.ID)
	}
	if len(embedding.Vector) != c.Dimension {
		return Embedding{}, newError(KindDimensionMismatch, "vector length %d != collection dimension %d", len(embedding.Vector), c.Dimension)
	}
	prepared := embedding.Clone()
	if c.Distance == Cosine {
		prepared.Vector = similarity.Normalize(prepared.Vector)
	}
	return prepared, nil
}

// ScoredEmbedding pairs a similarity score with a copy of the
// embedding it was computed from.
type ScoredEmbedding struct {
	Score     float32
	Embedding Embedding
}

// collectionScorer adapts a Collection's embeddings to
// similarity.Scorer without exposing Collection internals to the
// similarity package.
type collectionScorer struct {
	embeddings []Embedding
}

func (c collectionScorer) Len() int                 { return len(c.embeddings) }
func (c collectionScorer) VectorAt(i int) []float32 { return c.embeddings[i].Vector }

// Query ranks the named collection's embeddings against queryVector
// and returns the k most similar, ascending by score. It fails with
// KindNotFound if the collection does not exist, or
// KindDimensionMismatch if queryVector's length does not match the
// collection's dimension — a check the source omits and this store
// adds per the corrected design.
func (s *Store) Query(collectionName string, queryVector []float32, k int) ([]ScoredEmbedding, error) {
	s.mu.RLock()
	c, ok := s.collections[collectionName]
	s.mu.RUnlock()
	if !ok {
		return nil, newError(KindNotFound, "collection %q not found", collectionName)
	}
	if len(queryVector) != c.Dimension {
		return nil, newError(KindDimensionMismatch, "query vector length %d != collection dimension %d", len(queryVector), c.Dimension)
	}

	query := queryVector
	var metric similarity.Metric
	switch c.Distance {
	case Cosine:
		query = similarity.Normalize(queryVector)
		metric = similarity.Cosine
	case DotProduct:
		metric = similarity.DotProduct
	default:
		metric = similarity.Euclidean
	}

	scorer := collectionScorer{embeddings: c.Embeddings}
	ranked := similarity.TopK(scorer, query, k, metric, 0)

	out := make([]ScoredEmbedding, len(ranked))
	for i, r := range ranked {
		out[i] = ScoredEmbedding{Score: r.Score, Embedding: c.Embeddings[r.Index].Clone()}
	}
	return out, nil
}
