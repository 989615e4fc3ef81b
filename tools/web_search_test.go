package tools

import (
	"testing"
)

const sampleResultsPage = `<html><body>
<div class="results">
  <div class="result results_links results_links_deep web-result">
    <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fraft&rut=abc">Raft Consensus</a>
    <a class="result__snippet" href="https://example.com/raft">An understandable consensus algorithm.</a>
  </div>
  <div class="result results_links web-result">
    <a class="result__a" href="https://example.org/paxos">Paxos Made Simple</a>
    <a class="result__snippet" href="https://example.org/paxos">The Paxos algorithm, explained.</a>
  </div>
  <div class="result results_links web-result">
    <a class="result__a" href="https://example.net/zab">ZAB Protocol</a>
  </div>
</div>
</body></html>`

func TestParseSearchResults(t *testing.T) {
	results, err := parseSearchResults(sampleResultsPage, 10)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d: %#v", len(results), results)
	}
	if results[0].URL != "https://example.com/raft" {
		t.Fatalf("expected redirect to be unwrapped, got %q", results[0].URL)
	}
	if results[0].Title != "Raft Consensus" {
		t.Fatalf("unexpected title: %q", results[0].Title)
	}
	if results[0].Snippet != "An understandable consensus algorithm." {
		t.Fatalf("unexpected snippet: %q", results[0].Snippet)
	}
	if results[1].URL != "https://example.org/paxos" {
		t.Fatalf("unexpected second URL: %q", results[1].URL)
	}
	if results[2].Snippet != "" {
		t.Fatalf("expected empty snippet for third result, got %q", results[2].Snippet)
	}
}

func TestParseSearchResults_MaxResults(t *testing.T) {
	results, err := parseSearchResults(sampleResultsPage, 1)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestParseSearchResults_NoResults(t *testing.T) {
	results, err := parseSearchResults("<html><body><p>nothing here</p></body></html>", 5)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %#v", results)
	}
}

func TestResolveRedirect(t *testing.T) {
	got := resolveRedirect("//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fa%20b&rut=xyz")
	if got != "https://example.com/a b" {
		t.Fatalf("unexpected unwrapped URL: %q", got)
	}
	direct := resolveRedirect("https://example.com/direct")
	if direct != "https://example.com/direct" {
		t.Fatalf("direct URL should pass through, got %q", direct)
	}
}

func TestWebSearch_RequiresQuery(t *testing.T) {
	resp, err := executeWebSearchTool(map[string]interface{}{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Success {
		t.Fatalf("expected failure without query")
	}
}
