// Package oplog writes the same textual, timestamp-prefixed operation
// log that package replay reads back at startup. It is the single
// canonical writer for that format.
package oplog

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mharlan/vectorcache/store"
)

// Writer appends one line per accepted operation to its underlying
// file, formatted so that package replay can parse it back. A Writer
// is safe for concurrent use; callers still must pair each write with
// the store mutation it describes while holding the store's lock, so
// the log and the in-memory state never diverge in relative order.
type Writer struct {
	mu   sync.Mutex
	file *os.File
	now  func() time.Time
}

// Open opens path for appending, creating it if necessary. It returns
// a LoggerInitializationError-tagged error if the file cannot be
// opened, per SPEC_FULL.md §7.
func Open(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, &InitError{Path: path, Cause: err}
	}
	return &Writer{file: f, now: time.Now}, nil
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

func (w *Writer) writeLine(message string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	line := fmt.Sprintf("%s [INFO] %s\n", w.now().Format("2006-01-02 15:04:05"), message)
	_, err := w.file.WriteString(line)
	return err
}

// LogCreateCollection records a create_collection operation.
func (w *Writer) LogCreateCollection(name string, dimension int, distance store.Distance) error {
	return w.writeLine(fmt.Sprintf(
		"Created new collection with name: '%s', dimension: '%d', distance: '%s'",
		name, dimension, distanceVariant(distance)))
}

// LogInsertEmbedding records an insert_embedding operation.
func (w *Writer) LogInsertEmbedding(collectionName string, e store.Embedding) error {
	return w.writeLine(fmt.Sprintf(
		"Embedding: '%s', successfully inserted into collection '%s'",
		formatEmbedding(e), collectionName))
}

// LogBatchInsert records a batch_insert operation.
func (w *Writer) LogBatchInsert(collectionName string, embeddings []store.Embedding) error {
	parts := make([]string, len(embeddings))
	for i, e := range embeddings {
		parts[i] = formatEmbedding(e)
	}
	return w.writeLine(fmt.Sprintf(
		"Embedding: '[%s]' successfully updated to collection '%s'",
		strings.Join(parts, ", "), collectionName))
}

// LogDeleteCollection records a delete_collection operation.
func (w *Writer) LogDeleteCollection(name string) error {
	return w.writeLine(fmt.Sprintf("Deleted collection: '%s'", name))
}

func distanceVariant(d store.Distance) string {
	switch d {
	case store.Cosine:
		return "Cosine"
	case store.DotProduct:
		return "DotProduct"
	default:
		return "Euclidean"
	}
}

// formatEmbedding renders e in the debug-print shape package replay
// expects: `Embedding { id: {"unique_id": "<n>"}, vector: [...],
// metadata: Some({...}) }`. When e's id is not exactly a single
// "unique_id" key, the id is rendered as its full pair set instead —
// replay's regex will not recognize that shape on a future restart,
// which is the known non-numeric-id replay limitation, not a writer
// bug: the log line still documents what was inserted.
func formatEmbedding(e store.Embedding) string {
	return fmt.Sprintf("Embedding { id: %s, vector: [%s], metadata: %s }",
		formatID(e.ID), formatVector(e.Vector), formatMetadata(e.Metadata))
}

func formatID(id store.ID) string {
	if v, ok := soleKey(id, "unique_id"); ok {
		return fmt.Sprintf(`{"unique_id": "%s"}`, v)
	}
	keys := make([]string, 0, len(id))
	for k := range id {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf(`"%s": "%s"`, k, id[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func soleKey(m map[string]string, key string) (string, bool) {
	if len(m) != 1 {
		return "", false
	}
	v, ok := m[key]
	return v, ok
}

func formatVector(v []float32) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = formatFloat(f)
	}
	return strings.Join(parts, ", ")
}

// formatFloat mimics Rust's {:?} float formatting: a value printed
// without a decimal point or exponent gets ".0" appended (1 -> "1.0");
// exponent forms such as "1e+20" are left as they are.
func formatFloat(f float32) string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func formatMetadata(m map[string]string) string {
	if len(m) == 0 {
		return "None"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf(`"%s": "%s"`, k, m[k])
	}
	return "Some({" + strings.Join(parts, ", ") + "})"
}

// InitError is returned when the operation log file cannot be opened
// for append at startup — SPEC_FULL.md's
// LoggerInitializationError.
type InitError struct {
	Path  string
	Cause error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("oplog: failed to open %s: %v", e.Path, e.Cause)
}

func (e *InitError) Unwrap() error { return e.Cause }
