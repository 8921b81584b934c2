// Package clip provides a client for the CLIP embedding sidecar.
//
// Text and image queries are embedded into the same vector space so that
// a text query can be matched against image-embedded product vectors.
package clip

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Embedder produces query embeddings for retrieval.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedImage(ctx context.Context, image []byte) ([]float32, error)
}

// Client talks to the CLIP sidecar over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
	cache   *gocache.Cache
}

// Options configures the CLIP client.
type Options struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

// DefaultOptions provides sensible client defaults.
func DefaultOptions() Options {
	return Options{
		Timeout:  15 * time.Second,
		CacheTTL: 10 * time.Minute,
	}
}

// New creates a CLIP sidecar client. Text embeddings are memoized for
// CacheTTL since identical queries repeat heavily within a session.
func New(baseURL string, opts Options) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: opts.Timeout},
		cache:   gocache.New(opts.CacheTTL, 2*opts.CacheTTL),
	}
}

type encodeTextReq struct {
	Text string `json:"text"`
}

type encodeImageReq struct {
	Image string `json:"image"`
}

type encodeResp struct {
	Embedding []float32 `json:"embedding"`
}

func (c *Client) encode(ctx context.Context, path string, payload any) ([]float32, error) {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clip encode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("clip encode: status %d", resp.StatusCode)
	}

	var result encodeResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("clip encode decode: %w", err)
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("clip encode: empty embedding")
	}
	return result.Embedding, nil
}

// EmbedText embeds a text query, serving repeated queries from cache.
func (c *Client) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := c.cache.Get(text); ok {
		return cached.([]float32), nil
	}
	vec, err := c.encode(ctx, "/encode/text", encodeTextReq{Text: text})
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(text, vec)
	return vec, nil
}

// EmbedImage embeds raw image bytes. Image queries are not cached.
func (c *Client) EmbedImage(ctx context.Context, image []byte) ([]float32, error) {
	encoded := base64.StdEncoding.EncodeToString(image)
	return c.encode(ctx, "/encode/image", encodeImageReq{Image: encoded})
}
