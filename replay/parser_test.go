package replay

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mharlan/vectorcache/store"
)

func writeTempLog(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "output.log")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRestoreFromFileCreateInsertDelete(t *testing.T) {
	log := "2024-09-10 23:28:48 [INFO] Created new collection with name: 'test_collection', dimension: '3', distance: 'Euclidean'\n" +
		"2024-09-10 23:28:48 [INFO] Created new collection with name: 'test_collection_1', dimension: '3', distance: 'Euclidean'\n" +
		`2024-09-10 23:28:48 [INFO] Embedding: 'Embedding { id: {"unique_id": "0"}, vector: [1.0, 1.0, 1.0], metadata: Some({"page": "1", "text": "This is a test metadata text"}) }', successfully inserted into collection 'test_collection'` + "\n" +
		"2024-09-10 23:28:49 [INFO] Deleted collection: 'test_collection_1'\n"

	path := writeTempLog(t, log)
	db := store.New()

	if err := RestoreFromFile(context.Background(), path, db, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := db.GetCollection("test_collection_1"); ok {
		t.Errorf("test_collection_1 should have been deleted during replay")
	}

	embeddings, ok := db.GetEmbeddings("test_collection")
	if !ok {
		t.Fatalf("test_collection should exist")
	}
	if len(embeddings) != 1 {
		t.Fatalf("got %d embeddings, want 1", len(embeddings))
	}
	got := embeddings[0]
	if got.ID["unique_id"] != "0" {
		t.Errorf("id = %v, want unique_id=0", got.ID)
	}
	if got.Metadata["page"] != "1" || got.Metadata["text"] != "This is a test metadata text" {
		t.Errorf("metadata = %v, unexpected", got.Metadata)
	}
	for i, v := range []float32{1, 1, 1} {
		if got.Vector[i] != v {
			t.Errorf("vector[%d] = %v, want %v", i, got.Vector[i], v)
		}
	}
}

func TestRestoreFromFileMissingFileErrors(t *testing.T) {
	db := store.New()
	err := RestoreFromFile(context.Background(), filepath.Join(t.TempDir(), "missing.log"), db, nil)
	if err == nil {
		t.Fatal("expected error for missing log file")
	}
}

func TestRestoreFromFileSkipsMalformedEntries(t *testing.T) {
	log := "2024-09-10 23:28:48 [INFO] Created new collection with name: 'c', dimension: '3', distance: 'Euclidean'\n" +
		"2024-09-10 23:28:49 [INFO] Created new collection with garbage text that matches nothing\n" +
		"2024-09-10 23:28:50 [INFO] Deleted collection: 'c'\n"
	path := writeTempLog(t, log)
	db := store.New()

	if err := RestoreFromFile(context.Background(), path, db, nil); err != nil {
		t.Fatalf("malformed entries must not abort replay: %v", err)
	}
	if _, ok := db.GetCollection("c"); ok {
		t.Errorf("collection c should have been deleted")
	}
}

func TestRestoreFromFileBatchInsert(t *testing.T) {
	log := "2024-09-10 23:28:48 [INFO] Created new collection with name: 'c', dimension: '3', distance: 'Euclidean'\n" +
		`2024-09-10 23:28:49 [INFO] Embedding: '[Embedding { id: {"unique_id": "1"}, vector: [1.0, 0.0, 0.0], metadata: None }, Embedding { id: {"unique_id": "2"}, vector: [0.0, 1.0, 0.0], metadata: None }]' successfully updated to collection 'c'` + "\n"
	path := writeTempLog(t, log)
	db := store.New()

	if err := RestoreFromFile(context.Background(), path, db, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	embeddings, ok := db.GetEmbeddings("c")
	if !ok || len(embeddings) != 2 {
		t.Fatalf("got %v, ok=%v, want 2 embeddings", embeddings, ok)
	}
}
