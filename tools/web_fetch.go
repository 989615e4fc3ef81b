package tools

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	fetchTimeout       = 30 * time.Second
	fetchBodyLimit     = 2 << 20 // 2MB
	defaultFetchLength = 50000
	fetchUserAgent     = "Mozilla/5.0 (compatible; tech-translator/1.0)"
)

var (
	multiNewlinePattern = regexp.MustCompile(`\n{3,}`)
	multiSpacePattern   = regexp.MustCompile(`[ \t]{2,}`)
)

func executeWebFetchTool(args map[string]interface{}) (*ToolResponse, error) {
	rawURL, _ := args["url"].(string)
	if strings.TrimSpace(rawURL) == "" {
		return &ToolResponse{Success: false, Error: "url parameter is required"}, nil
	}
	maxLength := defaultFetchLength
	if v, ok := args["max_length"].(float64); ok && int(v) > 0 {
		maxLength = int(v)
	}

	client := &http.Client{Timeout: fetchTimeout}
	req, err := http.NewRequest("GET", rawURL, nil)
	if err != nil {
		return &ToolResponse{Success: false, Error: fmt.Sprintf("Invalid URL: %v", err)}, nil
	}
	req.Header.Set("User-Agent", fetchUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return &ToolResponse{Success: false, Error: fmt.Sprintf("Failed to fetch URL: %v", err)}, nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &ToolResponse{Success: false, Error: fmt.Sprintf("Failed to fetch URL, status %d", resp.StatusCode)}, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, fetchBodyLimit))
	if err != nil {
		return &ToolResponse{Success: false, Error: fmt.Sprintf("Failed to read response: %v", err)}, nil
	}

	var text string
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/plain") || strings.Contains(contentType, "text/markdown") {
		text = strings.TrimSpace(string(body))
	} else {
		text, err = extractReadableText(string(body))
		if err != nil {
			return &ToolResponse{Success: false, Error: fmt.Sprintf("Failed to extract page text: %v", err)}, nil
		}
	}
	truncated := false
	if len(text) > maxLength {
		text = text[:maxLength] + "\n\n[...truncated...]"
		truncated = true
	}

	return &ToolResponse{
		Success: true,
		Data: map[string]interface{}{
			"url":       rawURL,
			"content":   text,
			"truncated": truncated,
		},
	}, nil
}

// extractReadableText strips boilerplate elements from an HTML document and
// renders the remaining content as simplified markdown.
func extractReadableText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	renderNode(doc, &sb, 0)
	return cleanExtractedText(sb.String()), nil
}

func renderNode(n *html.Node, sb *strings.Builder, depth int) {
	if depth > 50 {
		return
	}
	switch n.Type {
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			sb.WriteString(text)
			sb.WriteString(" ")
		}
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "iframe", "svg", "nav", "footer", "header", "aside", "form":
			return
		case "h1", "h2", "h3", "h4", "h5", "h6":
			sb.WriteString("\n\n")
			sb.WriteString(strings.Repeat("#", int(n.Data[1]-'0')))
			sb.WriteString(" ")
		case "p", "div", "section", "article":
			sb.WriteString("\n\n")
		case "br":
			sb.WriteString("\n")
		case "li":
			sb.WriteString("\n- ")
		case "code":
			sb.WriteString("`")
		case "pre":
			sb.WriteString("\n\n```\n")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(c, sb, depth+1)
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			sb.WriteString("\n\n")
		case "code":
			sb.WriteString("`")
		case "pre":
			sb.WriteString("\n```\n\n")
		}
	}
}

func cleanExtractedText(s string) string {
	s = multiNewlinePattern.ReplaceAllString(s, "\n\n")
	s = multiSpacePattern.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func init() {
	tools["web_fetch"] = Tool{
		Name:        "web_fetch",
		Description: "Fetch a web page and extract its readable text as simplified markdown",
		Help: `Usage: /tool web_fetch --url <url> [--max_length <chars>]

Parameters:
  --url <url>            URL to fetch
  --max_length <chars>   Maximum content length in characters (default: 50000)

Examples:
  /tool web_fetch --url https://example.com
  /tool web_fetch --help`,
		Parameters: map[string]string{
			"url":        "URL to fetch",
			"max_length": "Maximum content length in characters (optional, default 50000)",
		},
	}
	toolExecutors["web_fetch"] = executeWebFetchTool
}
