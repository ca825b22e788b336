// Package transport is the thin HTTP adapter named in SPEC_FULL.md
// §4.F: it translates requests into store.Store calls under the
// store's own locking, and maps store error Kinds to the status codes
// (and quirks) spec.md §6/§7 specify. It owns no domain logic.
package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mharlan/vectorcache/oplog"
	"github.com/mharlan/vectorcache/store"
)

// db is the subset of *store.Store the adapter drives. Narrowed to an
// interface so handlers can be tested against a fake.
type db interface {
	CreateCollection(name string, dimension int, distance store.Distance) (store.Collection, error)
	DeleteCollection(name string) error
	GetCollection(name string) (store.Collection, bool)
	GetEmbeddings(name string) ([]store.Embedding, bool)
	InsertEmbedding(collectionName string, embedding store.Embedding) error
	BatchInsert(collectionName string, embeddings []store.Embedding) error
	Query(collectionName string, queryVector []float32, k int) ([]store.ScoredEmbedding, error)
}

// Logger is the Writer interface oplog.Writer satisfies; kept narrow so
// a Server can run without durability wired up (oplog nil is allowed).
type Logger interface {
	LogCreateCollection(name string, dimension int, distance store.Distance) error
	LogInsertEmbedding(collectionName string, e store.Embedding) error
	LogBatchInsert(collectionName string, embeddings []store.Embedding) error
	LogDeleteCollection(name string) error
}

var _ Logger = (*oplog.Writer)(nil)

// Server exposes the HTTP surface of SPEC_FULL.md §6 over a db.
type Server struct {
	DB     db
	Log    Logger
	AppLog AppLogger
}

// AppLogger is the structured diagnostic logger interface, satisfied
// by *slog.Logger. Separate from Logger (the operation-log writer)
// because the two serve different purposes: one is durability, the
// other is observability.
type AppLogger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// NewServer builds a Server over db and an optional operation-log
// writer (nil disables append-only logging, e.g. for tests).
func NewServer(database db, logWriter Logger, appLogger AppLogger) *Server {
	return &Server{DB: database, Log: logWriter, AppLog: appLogger}
}

// Handler returns the fully wired http.Handler: routes, CORS, and the
// request-id/latency logging middleware, mirroring the
// stdlib-ServeMux style of _examples/liuprestin-relurpify/server/api.go.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthchecker", s.handleHealth)
	mux.HandleFunc("/create_collection", s.handleCreateCollection)
	mux.HandleFunc("/insert_embeddings", s.handleInsertEmbeddings)
	mux.HandleFunc("/batch_insert_embeddings", s.handleBatchInsertEmbeddings)
	mux.HandleFunc("/get_collection", s.handleGetCollection)
	mux.HandleFunc("/get_embeddings", s.handleGetEmbeddings)
	mux.HandleFunc("/delete_collection", s.handleDeleteCollection)
	mux.HandleFunc("/get_similarity", s.handleGetSimilarity)
	return s.withLogging(withCORS(mux))
}

// withCORS allows any origin and the methods SPEC_FULL.md §6 names,
// matching the source's warp::cors().allow_any_origin() policy.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging tags each request with a request id and logs its start
// and end (method, path, status, latency) — the HTTP analogue of the
// teacher's chain/LLM start-end callback pairs
// (core/callbacks.go's OnChainStart/OnChainEnd).
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		ctx := r.Context()
		start := time.Now()

		if s.AppLog != nil {
			s.AppLog.InfoContext(ctx, "request started", "request_id", requestID, "method", r.Method, "path", r.URL.Path)
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if s.AppLog != nil {
			s.AppLog.InfoContext(ctx, "request finished", "request_id", requestID, "method", r.Method, "path", r.URL.Path,
				"status", rec.status, "duration_ms", time.Since(start).Milliseconds())
		}
	})
}
