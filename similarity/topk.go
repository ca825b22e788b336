package similarity

import (
	"container/heap"
	"fmt"
	"runtime"
	"sync"
)

// ScoredIndex pairs a computed score with the insertion-order index of
// the embedding it was computed from.
type ScoredIndex struct {
	Score float32
	Index int
}

// Scorer exposes the two inputs the selector needs from a collection
// without importing the store package, avoiding a cyclic dependency
// between store (which drives queries) and similarity (which scores
// them).
type Scorer interface {
	// Len returns the number of embeddings to score.
	Len() int
	// VectorAt returns the vector at index i.
	VectorAt(i int) []float32
}

// TopK computes scores for every vector in s against query using
// metric, then returns the k ScoredIndex pairs with the smallest
// scores, sorted ascending (most similar first). Ties prefer the
// larger index. Scoring fans out across goroutines; selection itself
// is sequential.
func TopK(s Scorer, query []float32, k int, metric Metric, memo float32) []ScoredIndex {
	n := s.Len()
	if k <= 0 || n == 0 {
		return nil
	}

	scores := scoreParallel(s, query, metric, memo)

	h := &boundedHeap{}
	heap.Init(h)
	for _, si := range scores {
		if h.Len() < k {
			heap.Push(h, si)
			continue
		}
		if less(si, (*h)[0]) {
			(*h)[0] = si
			heap.Fix(h, 0)
		}
	}

	out := make([]ScoredIndex, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(ScoredIndex)
	}
	return out
}

// scoreParallel computes score_i = metric(vector_i, query, memo) for
// every i in s, fanning the work out over a fixed worker pool. Each
// individual score is still a single sequential reduction, so only the
// outer map is parallel and the result is otherwise deterministic.
func scoreParallel(s Scorer, query []float32, metric Metric, memo float32) []ScoredIndex {
	n := s.Len()
	out := make([]ScoredIndex, n)

	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= n {
			break
		}
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				out[i] = ScoredIndex{
					Score: metric(s.VectorAt(i), query, memo),
					Index: i,
				}
			}
		}(start, end)
	}
	wg.Wait()
	return out
}

// less reports whether a ranks ahead of b (is more similar): a's score
// is strictly smaller, or scores tie and a's index is larger (so the
// larger index survives ties).
func less(a, b ScoredIndex) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Index > b.Index
}

// boundedHeap is a max-heap over ScoredIndex under the tie-break rule
// in less: its root is always the candidate to evict first when the
// heap exceeds its target size k.
type boundedHeap []ScoredIndex

func (h boundedHeap) Len() int { return len(h) }
func (h boundedHeap) Less(i, j int) bool {
	// container/heap keeps h[0] as the minimum under Less; we want h[0]
	// to be the *worst* (highest-priority-to-evict) candidate, so invert
	// the smaller-is-better comparator from less().
	return less(h[j], h[i])
}
func (h boundedHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *boundedHeap) Push(x any) {
	si, ok := x.(ScoredIndex)
	if !ok {
		panic(fmt.Sprintf("similarity: boundedHeap.Push got %T, want ScoredIndex", x))
	}
	*h = append(*h, si)
}
func (h *boundedHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
