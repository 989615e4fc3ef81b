package tools

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"tech-translator/internal/llm"
	"tech-translator/internal/sections"
)

// completionTimeout bounds the single upstream round trip per invocation.
const completionTimeout = 30 * time.Second

// ContentItem is one labeled text block returned to the caller, in canonical
// section order.
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// BuildContentItems converts emitted sections into the wire shape.
func BuildContentItems(secs []sections.Section) []ContentItem {
	items := make([]ContentItem, 0, len(secs))
	for _, s := range secs {
		items = append(items, ContentItem{Type: "text", Text: s.Text})
	}
	return items
}

func executeTechTranslatorTool(args map[string]interface{}) (*ToolResponse, error) {
	text, _ := args["text"].(string)
	if strings.TrimSpace(text) == "" {
		return &ToolResponse{Success: false, Error: "text parameter is required"}, nil
	}
	log.Printf("[TechTranslator] input: %s", text)

	provider, err := llm.Active()
	if err != nil {
		return &ToolResponse{Success: false, Error: fmt.Sprintf("LLM provider unavailable: %v", err)}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), completionTimeout)
	defer cancel()
	reply, err := provider.Complete(ctx, llm.TranslatorSystemPrompt(), text)
	if err != nil {
		return &ToolResponse{Success: false, Error: fmt.Sprintf("completion failed: %v", err)}, nil
	}
	log.Printf("[TechTranslator] output: %s", reply)

	secs := sections.Split(reply)
	return &ToolResponse{
		Success: true,
		Data: map[string]interface{}{
			"content":  BuildContentItems(secs),
			"sections": len(secs),
		},
	}, nil
}

func init() {
	tools["tech_translator"] = Tool{
		Name:        "tech_translator",
		Description: "Explains any technical or non-technical term in multiple ways: plain English, TL;DR, ELI5, and a diagram",
		Help: `Usage: /tool tech_translator --text <term or sentence>

Parameters:
  --text <string>    Any term, phrase, or sentence to explain

The reply is split into up to four labeled sections in fixed order:
plain English, TL;DR, ELI5, and a text diagram.

Examples:
  /tool tech_translator --text "eventual consistency"
  /tool tech_translator --help`,
		Parameters: map[string]string{
			"text": "Any term, phrase, or sentence to explain",
		},
	}
	toolExecutors["tech_translator"] = executeTechTranslatorTool
}
