// Package searchapi is a thin client for the lecture search backend.
package searchapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Adda-Baaj/lecture-search-client/pkg/httpclient"
)

// DefaultBaseURL is the address of the local backend.
const DefaultBaseURL = "http://127.0.0.1:5000"

const (
	searchPath  = "/api/search"
	summaryPath = "/api/summary"
	segmentPath = "/segment"
	docsPath    = "/docs/"

	defaultTimeout = 30 * time.Second
)

// Client issues requests against the backend. It keeps no per-call state and
// is safe for concurrent use.
type Client struct {
	baseURL string
	http    httpclient.Client
}

// Option customises a Client.
type Option func(*Client)

// WithBaseURL points the client at a different backend.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base = strings.TrimSpace(base); base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithHTTPClient swaps the transport.
func WithHTTPClient(h httpclient.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// New builds a client for DefaultBaseURL unless overridden by opts.
func New(opts ...Option) *Client {
	c := &Client{baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClient(defaultTimeout)
	}
	return c
}

// BaseURL returns the backend address the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// SearchOption adjusts a SearchRequest built by Search.
type SearchOption func(*SearchRequest)

// WithTopK sets the maximum number of results requested.
func WithTopK(n int) SearchOption {
	return func(r *SearchRequest) { r.TopK = n }
}

// WithProximity toggles proximity ranking on the backend.
func WithProximity(enabled bool) SearchOption {
	return func(r *SearchRequest) { r.UseProximity = enabled }
}

// NewSearchRequest returns a request for query with topk=10 and proximity off.
func NewSearchRequest(query string, opts ...SearchOption) SearchRequest {
	req := SearchRequest{Query: query, TopK: DefaultTopK}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}

// Search runs query on the backend and returns the response body as is.
func (c *Client) Search(ctx context.Context, query string, opts ...SearchOption) (SearchResponse, error) {
	return c.SearchWith(ctx, NewSearchRequest(query, opts...))
}

// SearchWith posts req unchanged to the search endpoint.
func (c *Client) SearchWith(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	body, err := c.post(ctx, searchPath, req)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("search: response is not valid json")
	}
	return SearchResponse(bytes.Clone(body)), nil
}

// Segment returns the tokens the backend produces for text. A response with
// no tokens field yields a nil slice and no error.
func (c *Client) Segment(ctx context.Context, text string) ([]string, error) {
	body, err := c.post(ctx, segmentPath, SegmentRequest{Text: text})
	if err != nil {
		return nil, err
	}
	var out segmentResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("segment: decode response: %w", err)
	}
	return out.Tokens, nil
}

// Summary asks the backend to summarise documents found for query.
func (c *Client) Summary(ctx context.Context, query string, documents []SearchHit) (string, error) {
	if documents == nil {
		documents = []SearchHit{}
	}
	body, err := c.post(ctx, summaryPath, SummaryRequest{Query: query, Documents: documents})
	if err != nil {
		return "", err
	}
	var out summaryResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("summary: decode response: %w", err)
	}
	return out.Summary, nil
}

// Document fetches the full content of a stored document.
func (c *Client) Document(ctx context.Context, docID string) (*Document, error) {
	body, err := c.get(ctx, docsPath+url.PathEscape(docID))
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("document: decode response: %w", err)
	}
	return &doc, nil
}

// Ping reports whether the backend answers on its root path.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, "/")
	return err
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	endpoint := c.baseURL + path
	resp, err := c.http.PostJSON(ctx, endpoint, payload, nil)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", endpoint, err)
	}
	return checkResponse(endpoint, resp)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	endpoint := c.baseURL + path
	resp, err := c.http.Get(ctx, endpoint, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", endpoint, err)
	}
	return checkResponse(endpoint, resp)
}

func checkResponse(endpoint string, resp httpclient.Response) ([]byte, error) {
	if resp == nil {
		return nil, fmt.Errorf("%s: empty response", endpoint)
	}
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, &StatusError{URL: endpoint, Code: code, Body: readBodySnippet(resp.Body())}
	}
	return resp.Body(), nil
}
