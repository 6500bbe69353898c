package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Adda-Baaj/lecture-search-client/internal/storage"
	"github.com/Adda-Baaj/lecture-search-client/pkg/searchapi"
	"gopkg.in/yaml.v3"
)

const samplePayload = `{"query":"ai","use_llm":false,"use_proximity":false,"elapsed_ms":3.21,
"results":[{"doc_id":"lecture-1.txt","score":0.87,"snippet":"Artificial intelligence talk","link":"/docs/lecture-1.txt"}],
"gpt_summary":"","corrected_queries":["al"]}`

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"": Text, "TEXT": Text, "json": JSON, " yaml ": YAML}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Errorf("expected error for xml")
	}
}

func TestSearchOutputText(t *testing.T) {
	var buf bytes.Buffer
	if err := SearchOutput(&buf, searchapi.SearchResponse(samplePayload), Text); err != nil {
		t.Fatalf("SearchOutput: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Found 1 results", "lecture-1.txt", "Did you mean: al", "3.21ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestSearchOutputJSONIsValid(t *testing.T) {
	var buf bytes.Buffer
	if err := SearchOutput(&buf, searchapi.SearchResponse(samplePayload), JSON); err != nil {
		t.Fatalf("SearchOutput: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded["query"] != "ai" {
		t.Errorf("unexpected query %v", decoded["query"])
	}
}

func TestSearchOutputYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := SearchOutput(&buf, searchapi.SearchResponse(samplePayload), YAML); err != nil {
		t.Fatalf("SearchOutput: %v", err)
	}
	var decoded map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, buf.String())
	}
	results, ok := decoded["results"].([]any)
	if !ok || len(results) != 1 {
		t.Fatalf("unexpected results %v", decoded["results"])
	}
}

func TestSearchOutputTextFallsBackForUnknownShape(t *testing.T) {
	var buf bytes.Buffer
	if err := SearchOutput(&buf, searchapi.SearchResponse(`[1,2,3]`), Text); err != nil {
		t.Fatalf("SearchOutput: %v", err)
	}
	if !strings.Contains(buf.String(), "1") {
		t.Fatalf("expected raw payload echoed, got %q", buf.String())
	}
}

func TestWriteTokensAndHistory(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, []string{"hello", "world"}, Text); err != nil {
		t.Fatalf("Write tokens: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "hello / world" {
		t.Fatalf("unexpected tokens output %q", got)
	}

	buf.Reset()
	entries := []storage.Entry{{Query: "cats", TopK: 5, UseProximity: true, At: time.Now()}}
	if err := Write(&buf, entries, Text); err != nil {
		t.Fatalf("Write history: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "cats") || !strings.Contains(out, "proximity") {
		t.Fatalf("unexpected history output %q", out)
	}

	buf.Reset()
	if err := Write(&buf, []storage.Entry(nil), Text); err != nil {
		t.Fatalf("Write empty history: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "no history" {
		t.Fatalf("unexpected empty history output %q", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("深圳大学讲座", 2); got != "深圳..." {
		t.Fatalf("unexpected truncate %q", got)
	}
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("unexpected truncate %q", got)
	}
}
