package store

// Collection is a named, fixed-dimension, single-metric container of
// embeddings. Insertion order is preserved and is observable in query
// tie-breaking.
type Collection struct {
	Dimension  int         `json:"dimension"`
	Distance   Distance    `json:"distance"`
	Embeddings []Embedding `json:"embeddings"`
}

// Clone returns a deep copy of c.
func (c Collection) Clone() Collection {
	out := Collection{
		Dimension: c.Dimension,
		Distance:  c.Distance,
	}
	if c.Embeddings != nil {
		out.Embeddings = make([]Embedding, len(c.Embeddings))
		for i, e := range c.Embeddings {
			out.Embeddings[i] = e.Clone()
		}
	}
	return out
}

// findByID returns the index of the embedding carrying id, or -1.
func (c Collection) findByID(id ID) int {
	for i, e := range c.Embeddings {
		if e.ID.Equal(id) {
			return i
		}
	}
	return -1
}
