package similarity

import "testing"

type sliceScorer [][]float32

func (s sliceScorer) Len() int               { return len(s) }
func (s sliceScorer) VectorAt(i int) []float32 { return s[i] }

func TestTopKZeroK(t *testing.T) {
	s := sliceScorer{{1, 1, 1}}
	got := TopK(s, []float32{0, 0, 0}, 0, Euclidean, 0)
	if len(got) != 0 {
		t.Errorf("TopK k=0 = %v, want empty", got)
	}
}

func TestTopKEmptyCollection(t *testing.T) {
	s := sliceScorer{}
	got := TopK(s, []float32{0, 0, 0}, 5, Euclidean, 0)
	if len(got) != 0 {
		t.Errorf("TopK on empty = %v, want empty", got)
	}
}

func TestTopKLargerThanCollection(t *testing.T) {
	s := sliceScorer{{1, 0, 0}, {0, 1, 0}}
	got := TopK(s, []float32{0, 0, 0}, 5, Euclidean, 0)
	if len(got) != 2 {
		t.Fatalf("TopK k>n returned %d results, want 2", len(got))
	}
}

func TestTopKOrderingAndTieBreak(t *testing.T) {
	// Three vectors equidistant from the query; indices 0,1,2.
	s := sliceScorer{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	got := TopK(s, []float32{0, 0, 0}, 2, Euclidean, 0)
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	// All scores tie at 1.0; ties prefer the larger index, so the
	// top 2 are indices 2 and 1, and the better-ranked (larger) index
	// comes first.
	if got[0].Index < got[1].Index {
		t.Errorf("expected descending index order under tie, got %v", got)
	}
	for _, si := range got {
		if si.Index == 0 {
			t.Errorf("index 0 should have been evicted under tie-break, got %v", got)
		}
	}
}

func TestTopKAscendingScores(t *testing.T) {
	s := sliceScorer{{5, 0, 0}, {1, 0, 0}, {3, 0, 0}}
	got := TopK(s, []float32{0, 0, 0}, 3, Euclidean, 0)
	for i := 1; i < len(got); i++ {
		if got[i-1].Score > got[i].Score {
			t.Errorf("results not ascending: %v", got)
		}
	}
	if got[0].Index != 1 {
		t.Errorf("closest vector should be index 1, got %v", got)
	}
}
