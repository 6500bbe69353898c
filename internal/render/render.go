// Package render writes command results in text, JSON or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Adda-Baaj/lecture-search-client/internal/storage"
	"github.com/Adda-Baaj/lecture-search-client/pkg/searchapi"
	"gopkg.in/yaml.v3"
)

// Format is an output format.
type Format string

const (
	// Text is human-readable output (default).
	Text Format = "text"
	// JSON is indented JSON for machine consumption.
	JSON Format = "json"
	// YAML is YAML for machine consumption.
	YAML Format = "yaml"
)

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", Text:
		return Text, nil
	case JSON, YAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", s)
	}
}

// Write encodes v to w. For Text, known result types get a readable layout
// and anything else falls back to JSON.
func Write(w io.Writer, v any, format Format) error {
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeText(w, v)
	}
}

// SearchOutput writes a search payload. Raw JSON is decoded into a generic
// value first so YAML output mirrors the backend's fields.
func SearchOutput(w io.Writer, raw searchapi.SearchResponse, format Format) error {
	switch format {
	case JSON:
		return Write(w, raw, JSON)
	case YAML:
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return fmt.Errorf("decode search response: %w", err)
		}
		return Write(w, generic, YAML)
	default:
		res, err := searchapi.DecodeSearchResult(raw)
		if err != nil {
			// Not the shape we know; show it as is.
			return Write(w, raw, JSON)
		}
		return writeText(w, res)
	}
}

func writeText(w io.Writer, v any) error {
	switch val := v.(type) {
	case *searchapi.SearchResult:
		writeSearchResult(w, val)
	case []string:
		fmt.Fprintln(w, strings.Join(val, " / "))
	case *searchapi.Document:
		fmt.Fprintf(w, "ID: %s\n\n%s\n", val.DocID, val.Content)
	case []storage.Entry:
		writeHistory(w, val)
	case string:
		fmt.Fprintln(w, val)
	default:
		return Write(w, v, JSON)
	}
	return nil
}

func writeSearchResult(w io.Writer, res *searchapi.SearchResult) {
	if res.Error != "" {
		fmt.Fprintf(w, "error: %s\n", res.Error)
		return
	}
	mode := "vector space"
	if res.UseProximity {
		mode = "proximity"
	}
	fmt.Fprintf(w, "\nFound %d results for %q in %.2fms (%s)\n\n", len(res.Results), res.Query, res.ElapsedMS, mode)
	if len(res.CorrectedQueries) > 0 {
		fmt.Fprintf(w, "Did you mean: %s\n\n", strings.Join(res.CorrectedQueries, ", "))
	}
	for i, hit := range res.Results {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Rank: %d | Score: %.4f | %s\n", i+1, hit.Score, hit.DocID)
		if hit.Link != "" {
			fmt.Fprintf(w, "Link: %s\n", hit.Link)
		}
		fmt.Fprintf(w, "\n%s\n\n", Truncate(hit.Snippet, 200))
	}
	if res.Summary != "" {
		fmt.Fprintf(w, "--- Summary ---\n%s\n", res.Summary)
	}
}

func writeHistory(w io.Writer, entries []storage.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no history")
		return
	}
	for _, e := range entries {
		flags := fmt.Sprintf("topk=%d", e.TopK)
		if e.UseProximity {
			flags += " proximity"
		}
		fmt.Fprintf(w, "%s  %-40s %s\n", e.At.Local().Format("2006-01-02 15:04:05"), e.Query, flags)
	}
}

// Truncate truncates s to maxLen runes and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
