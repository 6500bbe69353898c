package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Adda-Baaj/lecture-search-client/internal/config"
	"github.com/Adda-Baaj/lecture-search-client/internal/logger"
	"github.com/Adda-Baaj/lecture-search-client/internal/storage"
	"github.com/Adda-Baaj/lecture-search-client/pkg/httpclient"
	"github.com/Adda-Baaj/lecture-search-client/pkg/searchapi"
)

// Session wires the API client, query history and logging for one CLI run.
type Session struct {
	client *searchapi.Client
	store  storage.Store
	log    logger.Logger
}

// NewSession builds a session from config. baseURL, when non-empty, overrides
// the configured backend address.
func NewSession(cfg *config.Config, log logger.Logger, baseURL string) (*Session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if baseURL == "" {
		baseURL = cfg.APIBaseURL
	}

	client := searchapi.New(
		searchapi.WithBaseURL(baseURL),
		searchapi.WithHTTPClient(httpclient.NewRestyClient(cfg.RequestTimeout)),
	)

	storeOpts := storage.Options{
		EntryTTL:        cfg.HistoryTTL,
		CleanupInterval: cfg.HistoryCleanupInterval,
	}
	store, err := storage.NewStore(cfg.HistoryType, cfg.HistoryPath, storeOpts)
	if err != nil {
		return nil, fmt.Errorf("init history: %w", err)
	}
	log.DebugObj("session initialized", "session_config", map[string]any{
		"base_url":        client.BaseURL(),
		"timeout_seconds": int(cfg.RequestTimeout.Seconds()),
		"history_type":    cfg.HistoryType,
		"history_path":    cfg.HistoryPath,
	})

	return newSession(client, store, log), nil
}

func newSession(client *searchapi.Client, store storage.Store, log logger.Logger) *Session {
	if store == nil {
		store, _ = storage.NewStore("none", "", storage.Options{})
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Session{client: client, store: store, log: log}
}

// Client exposes the underlying API client.
func (s *Session) Client() *searchapi.Client { return s.client }

// Search records the query in history and runs it against the backend.
func (s *Session) Search(ctx context.Context, req searchapi.SearchRequest) (searchapi.SearchResponse, error) {
	s.record(req)

	start := time.Now()
	resp, err := s.client.SearchWith(ctx, req)
	if err != nil {
		s.log.ErrorObj("search failed", "search_error", map[string]any{
			"query": req.Query,
			"error": err.Error(),
		})
		return nil, fmt.Errorf("search %q: %w", req.Query, err)
	}
	s.log.InfoObj("search completed", "search_meta", map[string]any{
		"query":         req.Query,
		"topk":          req.TopK,
		"use_proximity": req.UseProximity,
		"bytes":         len(resp),
		"elapsed_ms":    time.Since(start).Milliseconds(),
	})
	return resp, nil
}

// Segment asks the backend to tokenize text.
func (s *Session) Segment(ctx context.Context, text string) ([]string, error) {
	tokens, err := s.client.Segment(ctx, text)
	if err != nil {
		s.log.ErrorObj("segment failed", "error", err)
		return nil, fmt.Errorf("segment: %w", err)
	}
	s.log.DebugObj("segment completed", "tokens_count", len(tokens))
	return tokens, nil
}

// Summarize runs a search for req and asks the backend to summarise its hits.
func (s *Session) Summarize(ctx context.Context, req searchapi.SearchRequest) (string, error) {
	raw, err := s.Search(ctx, req)
	if err != nil {
		return "", err
	}
	res, err := searchapi.DecodeSearchResult(raw)
	if err != nil {
		return "", fmt.Errorf("decode search result: %w", err)
	}
	summary, err := s.client.Summary(ctx, req.Query, res.Results)
	if err != nil {
		s.log.ErrorObj("summary failed", "error", err)
		return "", fmt.Errorf("summary: %w", err)
	}
	return summary, nil
}

// Document fetches a stored document.
func (s *Session) Document(ctx context.Context, docID string) (*searchapi.Document, error) {
	doc, err := s.client.Document(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("document %q: %w", docID, err)
	}
	return doc, nil
}

// Ping checks that the backend is reachable.
func (s *Session) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", s.client.BaseURL(), err)
	}
	return nil
}

// History returns up to limit recent queries.
func (s *Session) History(limit int) ([]storage.Entry, error) {
	entries, err := s.store.Recent(limit)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return entries, nil
}

// Close releases the history store, logging any errors encountered.
func (s *Session) Close() {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		s.log.ErrorObj("history close failed", "error", err)
	}
}

// record never fails the caller; history is best effort.
func (s *Session) record(req searchapi.SearchRequest) {
	err := s.store.Record(storage.Entry{
		Query:        req.Query,
		TopK:         req.TopK,
		UseProximity: req.UseProximity,
	})
	if err != nil {
		s.log.WarnObj("history write failed", "error", err)
	}
}
