package clip

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newTestServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/encode/text":
			var req encodeTextReq
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(encodeResp{Embedding: []float32{1, 2, 3}})
		case "/encode/image":
			var req encodeImageReq
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if _, err := base64.StdEncoding.DecodeString(req.Image); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(encodeResp{Embedding: []float32{4, 5}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestEmbedText(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, &hits)
	defer srv.Close()

	c := New(srv.URL, DefaultOptions())
	vec, err := c.EmbedText(context.Background(), "wireless headphones")
	if err != nil {
		t.Fatalf("EmbedText: %v", err)
	}
	if len(vec) != 3 || vec[0] != 1 {
		t.Errorf("unexpected embedding: %v", vec)
	}
}

func TestEmbedText_Cached(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, &hits)
	defer srv.Close()

	c := New(srv.URL, DefaultOptions())
	for i := 0; i < 3; i++ {
		if _, err := c.EmbedText(context.Background(), "same query"); err != nil {
			t.Fatalf("EmbedText: %v", err)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 upstream call, got %d", hits.Load())
	}
}

func TestEmbedImage(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, &hits)
	defer srv.Close()

	c := New(srv.URL, DefaultOptions())
	vec, err := c.EmbedImage(context.Background(), []byte{0xFF, 0xD8})
	if err != nil {
		t.Fatalf("EmbedImage: %v", err)
	}
	if len(vec) != 2 {
		t.Errorf("unexpected embedding: %v", vec)
	}
}

func TestEmbedText_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, DefaultOptions())
	if _, err := c.EmbedText(context.Background(), "boom"); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestEmbedText_EmptyEmbedding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(encodeResp{})
	}))
	defer srv.Close()

	c := New(srv.URL, DefaultOptions())
	if _, err := c.EmbedText(context.Background(), "empty"); err == nil {
		t.Fatal("expected error on empty embedding")
	}
}
