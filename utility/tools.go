package utility

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	tools "tech-translator/tools"
)

// GetToolsAddr returns the tools server address from config or a default.
func GetToolsAddr() string {
	cfg, err := LoadConfig()
	if err != nil {
		return ":8080"
	}
	if v, ok := cfg["TOOLS_ADDR"]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return ":8080"
}

// GetAvailableTools fetches the list of tools from the tool server.
func GetAvailableTools() ([]tools.Tool, error) {
	addr := GetToolsAddr()
	url := "http://127.0.0.1" + addr + "/api/tools"
	log.Printf("[API->Tools] GET %s", url)
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("tool server returned %s", resp.Status)
	}
	var tr tools.ToolResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, err
	}
	if !tr.Success {
		return nil, fmt.Errorf("tool server error: %s", tr.Error)
	}
	b, err := json.Marshal(tr.Data)
	if err != nil {
		return nil, err
	}
	var list []tools.Tool
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ExecuteTool posts a tool execution request to the tool server.
func ExecuteTool(toolName string, args map[string]interface{}) (*tools.ToolResponse, error) {
	addr := GetToolsAddr()
	url := "http://127.0.0.1" + addr + "/api/tools"
	payload := map[string]interface{}{"tool": toolName, "args": args}
	body, _ := json.Marshal(payload)
	log.Printf("[API->Tools] POST %s tool=%s", url, toolName)
	req, err := http.NewRequest("POST", url, strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	rb, _ := io.ReadAll(resp.Body)
	log.Printf("[API->Tools] Response %s", resp.Status)
	var tr tools.ToolResponse
	if err := json.Unmarshal(rb, &tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

// TranslateText runs the tech_translator tool and returns its content items.
func TranslateText(text string) ([]tools.ContentItem, error) {
	resp, err := ExecuteTool("tech_translator", map[string]interface{}{"text": text})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("tech_translator failed: %s", resp.Error)
	}
	b, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, err
	}
	var data struct {
		Content []tools.ContentItem `json:"content"`
	}
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, err
	}
	return data.Content, nil
}
