package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mharlan/vectorcache/store"
)

const healthMessage = "Health Check Sucessful!🚀"

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "success", Message: healthMessage})
}

// handleCreateCollection always answers 200: a create conflict is
// reported as a failure payload in the body, a quirk preserved from
// the source (SPEC_FULL.md §9).
func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var req createCollectionRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusOK, createCollectionResponse{Result: "failure", Status: "Error: " + err.Error()})
		return
	}
	if _, err := s.DB.CreateCollection(req.CollectionName, req.Dimension, req.Distance); err != nil {
		writeJSON(w, http.StatusOK, createCollectionResponse{Result: "failure", Status: fmt.Sprintf("Error: %v", err)})
		return
	}
	if s.Log != nil {
		_ = s.Log.LogCreateCollection(req.CollectionName, req.Dimension, req.Distance)
	}
	writeJSON(w, http.StatusOK, createCollectionResponse{Result: "success", Status: "Collection created"})
}

// handleInsertEmbeddings answers 200 for every store outcome, success
// or failure alike (only an undecodable request body gets 400) — the source's insert_embeddings_handler replies with a bare
// warp::reply::json(...) on both match arms, and spec.md's
// insert_embeddings table row deliberately omits HTTP codes, so this
// preserves rather than breaks that external behavior.
func (s *Server) handleInsertEmbeddings(w http.ResponseWriter, r *http.Request) {
	var req insertEmbeddingRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, fmt.Sprintf("Error: %v", err))
		return
	}
	if err := s.DB.InsertEmbedding(req.CollectionName, req.Embedding); err != nil {
		writeJSON(w, http.StatusOK, fmt.Sprintf("Failed to insert embedding into collection: %s. Error: %v", req.CollectionName, err))
		return
	}
	if s.Log != nil {
		_ = s.Log.LogInsertEmbedding(req.CollectionName, req.Embedding)
	}
	writeJSON(w, http.StatusOK, fmt.Sprintf("Embedding inserted into collection: %s", req.CollectionName))
}

// handleBatchInsertEmbeddings answers 404 on any store failure, not
// just NotFound (an undecodable request body gets 400) — mirroring update_collection_handler in the source, whose
// Err(err) arm maps every error kind to StatusCode::NOT_FOUND.
func (s *Server) handleBatchInsertEmbeddings(w http.ResponseWriter, r *http.Request) {
	var req batchInsertRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, fmt.Sprintf("Error: %v", err))
		return
	}
	if err := s.DB.BatchInsert(req.CollectionName, req.Embeddings); err != nil {
		writeJSON(w, http.StatusNotFound, fmt.Sprintf("Failed to insert embeddings into collection: %s. Error: %v", req.CollectionName, err))
		return
	}
	if s.Log != nil {
		_ = s.Log.LogBatchInsert(req.CollectionName, req.Embeddings)
	}
	writeJSON(w, http.StatusOK, fmt.Sprintf("Embeddings inserted into collection: %s", req.CollectionName))
}

func (s *Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	var req collectionNameRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, fmt.Sprintf("Error: %v", err))
		return
	}
	collection, ok := s.DB.GetCollection(req.CollectionName)
	if !ok {
		writeJSON(w, http.StatusNotFound, fmt.Sprintf("Collection '%s' not found", req.CollectionName))
		return
	}
	writeJSON(w, http.StatusOK, collection)
}

func (s *Server) handleGetEmbeddings(w http.ResponseWriter, r *http.Request) {
	var req collectionNameRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, fmt.Sprintf("Error: %v", err))
		return
	}
	embeddings, ok := s.DB.GetEmbeddings(req.CollectionName)
	if !ok {
		writeJSON(w, http.StatusNotFound, fmt.Sprintf("Collection '%s' not found", req.CollectionName))
		return
	}
	writeJSON(w, http.StatusOK, embeddings)
}

func (s *Server) handleDeleteCollection(w http.ResponseWriter, r *http.Request) {
	var req collectionNameRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, fmt.Sprintf("Error: %v", err))
		return
	}
	if err := s.DB.DeleteCollection(req.CollectionName); err != nil {
		writeJSON(w, http.StatusNotFound, fmt.Sprintf("Failed to delete collection '%s': %v", req.CollectionName, err))
		return
	}
	if s.Log != nil {
		_ = s.Log.LogDeleteCollection(req.CollectionName)
	}
	writeJSON(w, http.StatusOK, fmt.Sprintf("Collection '%s' deleted successfully", req.CollectionName))
}

// handleGetSimilarity preserves the source's quirk: a missing
// collection is reported as a 200 with a text body, not a 404
// (SPEC_FULL.md §9's "similarity result quirk").
func (s *Server) handleGetSimilarity(w http.ResponseWriter, r *http.Request) {
	var req getSimilarityRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, fmt.Sprintf("Error: %v", err))
		return
	}
	results, err := s.DB.Query(req.CollectionName, req.QueryVector, req.K)
	if err != nil {
		var storeErr *store.Error
		if errors.As(err, &storeErr) && storeErr.Kind == store.KindNotFound {
			writeJSON(w, http.StatusOK, "Collection not found")
			return
		}
		writeJSON(w, http.StatusBadRequest, fmt.Sprintf("Error: %v", err))
		return
	}
	out := make([]similarityResult, len(results))
	for i, r := range results {
		out[i] = similarityResult{Score: r.Score, Embedding: r.Embedding}
	}
	writeJSON(w, http.StatusOK, out)
}
