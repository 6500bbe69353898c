package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// searchBodies collects decoded search request bodies.
type searchBodies struct {
	mu     sync.Mutex
	bodies []map[string]any
}

func (s *searchBodies) add(b map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies = append(s.bodies, b)
}

func (s *searchBodies) all() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.bodies...)
}

func newFakeBackend(t *testing.T) (*httptest.Server, *searchBodies) {
	t.Helper()
	bodies := &searchBodies{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/search", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies.add(body)
		_, _ = io.WriteString(w, `{"query":"cats","elapsed_ms":1,"results":[{"doc_id":"cats.txt","score":1,"snippet":"about cats","link":"/docs/cats.txt"}]}`)
	})
	mux.HandleFunc("/segment", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"tokens":["hello","world"]}`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ready")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, bodies
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HISTORY_TYPE", "none")
	t.Setenv("LOG_LEVEL", "error")

	root, c := newRootCmd()
	defer c.teardown()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSearchCommandSendsFlags(t *testing.T) {
	srv, bodies := newFakeBackend(t)

	out, err := execute(t, "--base-url", srv.URL, "search", "cats", "--topk", "5", "--proximity")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "cats.txt") {
		t.Fatalf("expected result in output, got %q", out)
	}
	got := bodies.all()
	if len(got) != 1 {
		t.Fatalf("expected one request, got %d", len(got))
	}
	body := got[0]
	if body["query"] != "cats" || body["topk"] != float64(5) || body["use_proximity"] != true {
		t.Fatalf("unexpected request body %v", body)
	}
}

func TestSegmentCommandJSON(t *testing.T) {
	srv, _ := newFakeBackend(t)

	out, err := execute(t, "--base-url", srv.URL, "-o", "json", "segment", "hello", "world")
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	var tokens []string
	if err := json.Unmarshal([]byte(out), &tokens); err != nil {
		t.Fatalf("output is not a JSON array: %v\n%s", err, out)
	}
	if len(tokens) != 2 || tokens[0] != "hello" {
		t.Fatalf("unexpected tokens %v", tokens)
	}
}

func TestPingCommand(t *testing.T) {
	srv, _ := newFakeBackend(t)

	out, err := execute(t, "--base-url", srv.URL, "ping")
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	if !strings.HasPrefix(out, "ok ") {
		t.Fatalf("unexpected ping output %q", out)
	}
}

func TestCommandFailsWhenBackendDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	if _, err := execute(t, "--base-url", base, "search", "cats"); err == nil {
		t.Fatalf("expected error when backend is unreachable")
	}
}

func TestRejectsUnknownFormat(t *testing.T) {
	if _, err := execute(t, "-o", "xml", "history"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
