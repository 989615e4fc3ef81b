package tools

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/ini.v1"

	"tech-translator/internal/config"
)

// executeValidateTool returns the phone number the hosting platform uses to
// tie this server to its owner. The platform calls it on connect.
func executeValidateTool(args map[string]interface{}) (*ToolResponse, error) {
	cfg, err := ini.Load(os.ExpandEnv(config.ConfigFilePath))
	if err != nil {
		return &ToolResponse{Success: false, Error: fmt.Sprintf("Config file error: %v", err)}, nil
	}
	number := strings.TrimSpace(cfg.Section("default").Key("MY_NUMBER").String())
	if number == "" {
		number = strings.TrimSpace(os.Getenv("MY_NUMBER"))
	}
	if number == "" {
		return &ToolResponse{Success: false, Error: "MY_NUMBER not configured in [default] section"}, nil
	}
	return &ToolResponse{Success: true, Data: number}, nil
}

func init() {
	tools["validate"] = Tool{
		Name:        "validate",
		Description: "Return the owner phone number for the liveness/identity check",
		Help: `Usage: /tool validate

Returns the MY_NUMBER value from the config. Takes no parameters.

Examples:
  /tool validate
  /tool validate --help`,
	}
	toolExecutors["validate"] = executeValidateTool
}
