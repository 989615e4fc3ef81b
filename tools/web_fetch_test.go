package tools

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Sample</title><style>body { color: red; }</style></head>
<body>
<nav>Skip this nav</nav>
<h1>Heading</h1>
<p>First paragraph with <code>inline code</code>.</p>
<ul><li>alpha</li><li>beta</li></ul>
<script>console.log("nope")</script>
<footer>Skip this footer</footer>
</body>
</html>`

func TestExtractReadableText(t *testing.T) {
	got, err := extractReadableText(samplePage)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if !strings.Contains(got, "# Heading") {
		t.Fatalf("expected heading marker, got:\n%s", got)
	}
	if !strings.Contains(got, "`inline code`") {
		t.Fatalf("expected code span, got:\n%s", got)
	}
	if !strings.Contains(got, "- alpha") || !strings.Contains(got, "- beta") {
		t.Fatalf("expected list items, got:\n%s", got)
	}
	for _, skipped := range []string{"Skip this nav", "Skip this footer", "console.log", "color: red"} {
		if strings.Contains(got, skipped) {
			t.Fatalf("expected %q to be stripped, got:\n%s", skipped, got)
		}
	}
}

func TestWebFetch_RequiresURL(t *testing.T) {
	resp, err := executeWebFetchTool(map[string]interface{}{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Success {
		t.Fatalf("expected failure without url")
	}
}

func TestWebFetch_HTMLPage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer ts.Close()

	resp, err := executeWebFetchTool(map[string]interface{}{"url": ts.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, got: %s", resp.Error)
	}
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected data shape: %#v", resp.Data)
	}
	content, _ := data["content"].(string)
	if !strings.Contains(content, "# Heading") {
		t.Fatalf("expected extracted heading, got: %q", content)
	}
	if data["truncated"] != false {
		t.Fatalf("expected truncated=false, got %v", data["truncated"])
	}
}

func TestWebFetch_PlainTextPassedThrough(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("  plain body  "))
	}))
	defer ts.Close()

	resp, err := executeWebFetchTool(map[string]interface{}{"url": ts.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, got: %s", resp.Error)
	}
	data := resp.Data.(map[string]interface{})
	if data["content"] != "plain body" {
		t.Fatalf("expected trimmed plain body, got %q", data["content"])
	}
}

func TestWebFetch_TruncatesLongContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(strings.Repeat("x", 200)))
	}))
	defer ts.Close()

	resp, err := executeWebFetchTool(map[string]interface{}{"url": ts.URL, "max_length": float64(50)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, got: %s", resp.Error)
	}
	data := resp.Data.(map[string]interface{})
	if data["truncated"] != true {
		t.Fatalf("expected truncated=true")
	}
	content := data["content"].(string)
	if !strings.HasSuffix(content, "[...truncated...]") {
		t.Fatalf("expected truncation marker, got %q", content)
	}
}

func TestWebFetch_Non200Status(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	resp, err := executeWebFetchTool(map[string]interface{}{"url": ts.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Success {
		t.Fatalf("expected failure for 404")
	}
	if !strings.Contains(resp.Error, "404") {
		t.Fatalf("expected status in error, got %q", resp.Error)
	}
}
