package searchapi

import "encoding/json"

// DefaultTopK is the result count requested when the caller does not set one.
const DefaultTopK = 10

// SearchRequest is the body posted to the search endpoint.
type SearchRequest struct {
	Query        string `json:"query"`
	TopK         int    `json:"topk"`
	UseProximity bool   `json:"use_proximity"`
}

// SearchResponse is the backend's search payload, passed through untouched.
type SearchResponse = json.RawMessage

// SegmentRequest is the body posted to the segment endpoint.
type SegmentRequest struct {
	Text string `json:"text"`
}

type segmentResponse struct {
	Tokens []string `json:"tokens"`
}

// SummaryRequest is the body posted to the summary endpoint.
type SummaryRequest struct {
	Query     string      `json:"query"`
	Documents []SearchHit `json:"documents"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

// Document is a stored lecture document as served by the backend.
type Document struct {
	DocID   string `json:"doc_id" yaml:"doc_id"`
	Content string `json:"content" yaml:"content"`
}

// SearchHit is a single ranked document in a search result.
type SearchHit struct {
	DocID   string  `json:"doc_id" yaml:"doc_id"`
	Score   float64 `json:"score" yaml:"score"`
	Snippet string  `json:"snippet" yaml:"snippet"`
	Link    string  `json:"link" yaml:"link"`
}

// SearchResult is a typed view of the payload the reference backend returns.
// Fields the backend omits stay at their zero value.
type SearchResult struct {
	Query            string      `json:"query" yaml:"query"`
	UseLLM           bool        `json:"use_llm" yaml:"use_llm"`
	UseProximity     bool        `json:"use_proximity" yaml:"use_proximity"`
	ElapsedMS        float64     `json:"elapsed_ms" yaml:"elapsed_ms"`
	Results          []SearchHit `json:"results" yaml:"results"`
	Summary          string      `json:"gpt_summary" yaml:"gpt_summary"`
	CorrectedQueries []string    `json:"corrected_queries" yaml:"corrected_queries"`
	Error            string      `json:"error,omitempty" yaml:"error,omitempty"`
}

// DecodeSearchResult unmarshals a raw search payload into a SearchResult.
func DecodeSearchResult(raw SearchResponse) (*SearchResult, error) {
	var out SearchResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
