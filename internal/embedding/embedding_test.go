package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Model != "test-model" || len(req.Input) != 2 {
			t.Errorf("unexpected request: %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float64{{1, 0}, {0, 1}},
		})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("test-model", srv.URL)
	embeddings, err := e.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(embeddings) != 2 || embeddings[0][0] != 1 {
		t.Errorf("unexpected embeddings: %v", embeddings)
	}
}

func TestOllamaEmbedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("test-model", srv.URL)
	if _, err := e.Embed(context.Background(), []string{"a"}); err == nil {
		t.Error("expected error for server failure")
	}
}

func TestAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]string{{"name": "all-minilm:latest"}},
		})
	}))
	defer srv.Close()

	if !NewOllamaEmbedder("all-minilm", srv.URL).Available() {
		t.Error("expected model to be available")
	}
	if NewOllamaEmbedder("other-model", srv.URL).Available() {
		t.Error("expected model to be unavailable")
	}
}
