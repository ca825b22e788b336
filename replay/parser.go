// Package replay reconstructs a *store.Store by parsing the
// human-readable, append-only operation log that vectorcache writes
// during live operation. It is the durability mechanism: there is no
// binary WAL, only a textual debug-print log, and the parser here is
// tolerant of malformed entries by design (see §4.E of SPEC_FULL.md).
package replay

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mharlan/vectorcache/store"
)

var timestampPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`)

var (
	createPattern = regexp.MustCompile(
		`Created new collection with name: '([^']+)', dimension: '(\d+)', distance: '([^']+)'`)
	insertPattern = regexp.MustCompile(
		`Embedding: 'Embedding \{ id: \{"unique_id": "(\d+)"\}, vector: \[([0-9.eE+\-,\s]*)\], metadata: (Some\(\{(.*?)\}\)|None) \}', successfully inserted into collection '([^']*)'`)
	batchPattern = regexp.MustCompile(
		`Embedding: '\[(.*?)\]' successfully updated to collection '([^']*)'`)
	embeddingPattern = regexp.MustCompile(
		`Embedding \{ id: \{"unique_id": "(\d+)"\}, vector: \[([0-9.eE+\-,\s]*)\], metadata: (Some\(\{(.*?)\}\)|None) \}`)
	deletePattern = regexp.MustCompile(`Deleted collection: '([^']*)'`)
)

// Driver is the subset of *store.Store the replay parser needs. It is
// the same public surface live request handlers use — replay never
// takes a private path into the store.
type Driver interface {
	CreateCollection(name string, dimension int, distance store.Distance) (store.Collection, error)
	InsertEmbedding(collectionName string, embedding store.Embedding) error
	BatchInsert(collectionName string, embeddings []store.Embedding) error
	DeleteCollection(name string) error
}

// RestoreFromFile opens path, replays every recognized entry into db,
// and returns. Malformed entries are logged at WARN and skipped; they
// never abort the replay. Only a failure to open path surfaces as an
// error, matching the source's "replay always succeeds unless the log
// itself can't be opened" policy.
func RestoreFromFile(ctx context.Context, path string, db Driver, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	runID := uuid.New().String()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("replay: opening %s: %w", path, err)
	}
	defer f.Close()

	content, err := io.ReadAll(bufio.NewReader(f))
	if err != nil {
		return fmt.Errorf("replay: reading %s: %w", path, err)
	}

	entries := splitByTimestamp(string(content))
	logger.InfoContext(ctx, "replay starting", "run_id", runID, "path", path, "entries", len(entries))

	for _, entry := range entries {
		switch {
		case strings.Contains(entry, "Created new collection"):
			applyCreate(ctx, entry, db, logger, runID)
		case strings.Contains(entry, "successfully inserted into collection"):
			applyInsert(ctx, entry, db, logger, runID)
		case strings.Contains(entry, "successfully updated to collection"):
			applyBatch(ctx, entry, db, logger, runID)
		case strings.Contains(entry, "Deleted collection"):
			applyDelete(ctx, entry, db, logger, runID)
		}
	}

	logger.InfoContext(ctx, "replay finished", "run_id", runID)
	return nil
}

// splitByTimestamp breaks log into entries, scanning for the next
// "YYYY-MM-DD HH:MM:SS" occurrence to delimit the previous one —
// mirroring the source's regex-based split rather than assuming one
// entry per line, since a logged embedding's debug print can itself
// wrap.
func splitByTimestamp(log string) []string {
	matches := timestampPattern.FindAllStringIndex(log, -1)
	if len(matches) == 0 {
		return nil
	}
	var entries []string
	for i, m := range matches {
		start := m[0]
		end := len(log)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		entry := strings.TrimSpace(log[start:end])
		if entry != "" {
			entries = append(entries, entry)
		}
	}
	return entries
}

func applyCreate(ctx context.Context, entry string, db Driver, logger *slog.Logger, runID string) {
	caps := createPattern.FindStringSubmatch(entry)
	if caps == nil {
		logger.WarnContext(ctx, "malformed create-collection entry, skipping", "run_id", runID, "entry", entry)
		return
	}
	name := caps[1]
	dimension, err := strconv.Atoi(caps[2])
	if err != nil {
		logger.WarnContext(ctx, "malformed dimension, skipping", "run_id", runID, "entry", entry, "error", err)
		return
	}
	distance, err := store.ParseDistance(caps[3])
	if err != nil {
		logger.WarnContext(ctx, "unknown distance, skipping", "run_id", runID, "entry", entry, "error", err)
		return
	}
	if _, err := db.CreateCollection(name, dimension, distance); err != nil {
		logger.WarnContext(ctx, "replayed create_collection failed, skipping", "run_id", runID, "collection", name, "error", err)
	}
}

func applyInsert(ctx context.Context, entry string, db Driver, logger *slog.Logger, runID string) {
	caps := insertPattern.FindStringSubmatch(entry)
	if caps == nil {
		logger.WarnContext(ctx, "malformed insert entry, skipping", "run_id", runID, "entry", entry)
		return
	}
	embedding := parseEmbedding(caps[1], caps[2], caps[4])
	collectionName := caps[5]
	if err := db.InsertEmbedding(collectionName, embedding); err != nil {
		logger.WarnContext(ctx, "replayed insert_embedding failed, skipping", "run_id", runID, "collection", collectionName, "error", err)
	}
}

func applyBatch(ctx context.Context, entry string, db Driver, logger *slog.Logger, runID string) {
	caps := batchPattern.FindStringSubmatch(entry)
	if caps == nil {
		logger.WarnContext(ctx, "malformed batch entry, skipping", "run_id", runID, "entry", entry)
		return
	}
	embeddingsBlob := caps[1]
	collectionName := caps[2]

	var embeddings []store.Embedding
	for _, m := range embeddingPattern.FindAllStringSubmatch(embeddingsBlob, -1) {
		embeddings = append(embeddings, parseEmbedding(m[1], m[2], m[4]))
	}
	if len(embeddings) == 0 {
		logger.WarnContext(ctx, "batch entry carried no parseable embeddings, skipping", "run_id", runID, "entry", entry)
		return
	}
	if err := db.BatchInsert(collectionName, embeddings); err != nil {
		logger.WarnContext(ctx, "replayed batch_insert failed, skipping", "run_id", runID, "collection", collectionName, "error", err)
	}
}

func applyDelete(ctx context.Context, entry string, db Driver, logger *slog.Logger, runID string) {
	caps := deletePattern.FindStringSubmatch(entry)
	if caps == nil {
		logger.WarnContext(ctx, "malformed delete entry, skipping", "run_id", runID, "entry", entry)
		return
	}
	name := caps[1]
	if err := db.DeleteCollection(name); err != nil {
		logger.WarnContext(ctx, "replayed delete_collection failed, skipping", "run_id", runID, "collection", name, "error", err)
	}
}

// parseEmbedding builds a store.Embedding from the raw regex capture
// groups shared by the insert and batch entry shapes. uniqueID is
// assumed numeric — a known limitation inherited from the source: a
// composite id with a non-numeric unique_id will never round-trip
// through this log format, because the insert and batch patterns only
// accept digits in that position, whatever value the writer printed.
func parseEmbedding(uniqueID, vectorBlob, metadataBlob string) store.Embedding {
	var vector []float32
	for _, tok := range strings.Split(vectorBlob, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			continue
		}
		vector = append(vector, float32(v))
	}

	var metadata map[string]string
	if metadataBlob != "" {
		metadata = parseMetadata(metadataBlob)
	}

	return store.Embedding{
		ID:       store.ID{"unique_id": uniqueID},
		Vector:   vector,
		Metadata: metadata,
	}
}

// parseMetadata parses the contents of a debug-printed Rust
// HashMap<String, String>, e.g. `"page": "1", "text": "..."`.
func parseMetadata(blob string) map[string]string {
	out := make(map[string]string)
	for _, entry := range strings.Split(blob, ",") {
		kv := strings.SplitN(entry, ":", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.Trim(strings.TrimSpace(kv[0]), `"`)
		value := strings.Trim(strings.TrimSpace(kv[1]), `"`)
		if key == "" {
			continue
		}
		out[key] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
