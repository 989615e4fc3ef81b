package tools

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	searchTimeout    = 30 * time.Second
	searchBodyLimit  = 1 << 20 // 1MB
	defaultMaxHits   = 5
	maxAllowedHits   = 10
	searchEndpoint   = "https://html.duckduckgo.com/html/?q="
	searchUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	ddgRedirectStub  = "//duckduckgo.com/l/?uddg="
)

// SearchResult is one link scraped from the search results page.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

func executeWebSearchTool(args map[string]interface{}) (*ToolResponse, error) {
	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return &ToolResponse{Success: false, Error: "query parameter is required"}, nil
	}
	maxResults := defaultMaxHits
	if v, ok := args["max_results"].(float64); ok && int(v) > 0 {
		maxResults = int(v)
	}
	if maxResults > maxAllowedHits {
		maxResults = maxAllowedHits
	}

	client := &http.Client{Timeout: searchTimeout}
	req, err := http.NewRequest("GET", searchEndpoint+url.QueryEscape(query), nil)
	if err != nil {
		return &ToolResponse{Success: false, Error: fmt.Sprintf("Failed to build request: %v", err)}, nil
	}
	req.Header.Set("User-Agent", searchUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := client.Do(req)
	if err != nil {
		return &ToolResponse{Success: false, Error: fmt.Sprintf("Search request failed: %v", err)}, nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &ToolResponse{Success: false, Error: fmt.Sprintf("Search returned status %d", resp.StatusCode)}, nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, searchBodyLimit))
	if err != nil {
		return &ToolResponse{Success: false, Error: fmt.Sprintf("Failed to read response: %v", err)}, nil
	}

	results, err := parseSearchResults(string(body), maxResults)
	if err != nil {
		return &ToolResponse{Success: false, Error: fmt.Sprintf("Failed to parse results: %v", err)}, nil
	}
	return &ToolResponse{
		Success: true,
		Data: map[string]interface{}{
			"query":   query,
			"results": results,
		},
	}, nil
}

// parseSearchResults extracts result links from the DuckDuckGo HTML page.
// Result anchors carry class "result__a"; snippets carry "result__snippet".
func parseSearchResults(htmlContent string, maxResults int) ([]SearchResult, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	results := []SearchResult{}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= maxResults {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			class := nodeAttr(n, "class")
			switch {
			case strings.Contains(class, "result__a"):
				r := SearchResult{
					Title: nodeText(n),
					URL:   resolveRedirect(nodeAttr(n, "href")),
				}
				if r.URL != "" && r.Title != "" {
					results = append(results, r)
				}
			case strings.Contains(class, "result__snippet"):
				// Snippets follow their result anchor in document order.
				if last := len(results) - 1; last >= 0 && results[last].Snippet == "" {
					results[last].Snippet = nodeText(n)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return results, nil
}

// resolveRedirect unwraps the uddg redirect wrapper around result URLs.
func resolveRedirect(href string) string {
	if !strings.HasPrefix(href, ddgRedirectStub) {
		return href
	}
	decoded, err := url.QueryUnescape(strings.TrimPrefix(href, ddgRedirectStub))
	if err != nil {
		return href
	}
	if idx := strings.Index(decoded, "&"); idx > 0 {
		decoded = decoded[:idx]
	}
	return decoded
}

func nodeAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(strings.TrimSpace(n.Data))
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.TrimSpace(sb.String())
}

func init() {
	tools["web_search"] = Tool{
		Name:        "web_search",
		Description: "Search the web and return result links with titles and snippets",
		Help: `Usage: /tool web_search --query <terms> [--max_results <n>]

Parameters:
  --query <terms>      Search query
  --max_results <n>    Maximum number of results (default: 5, max: 10)

Examples:
  /tool web_search --query "raft consensus"
  /tool web_search --help`,
		Parameters: map[string]string{
			"query":       "Search query",
			"max_results": "Maximum number of results (optional, default 5)",
		},
	}
	toolExecutors["web_search"] = executeWebSearchTool
}
