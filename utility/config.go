package utility

import (
	"os"
	"strings"
	"sync"

	"gopkg.in/ini.v1"

	"tech-translator/internal/config"
)

var (
	configOnce sync.Once
	configData map[string]string
	configErr  error
)

// LoadConfig reads the INI config at config.ConfigFilePath and caches values.
func LoadConfig() (map[string]string, error) {
	configOnce.Do(func() {
		path := os.ExpandEnv(config.ConfigFilePath)
		cfg, err := ini.Load(path)
		if err != nil {
			configErr = err
			return
		}
		// Load from [default] section
		defaultSection := cfg.Section("default")
		configData = make(map[string]string)
		for _, key := range defaultSection.Keys() {
			configData[key.Name()] = key.String()
		}
	})
	return configData, configErr
}

// ConfigValue returns a trimmed value from the [default] section, with an
// environment variable of the same name as fallback.
func ConfigValue(name string) string {
	if cfg, err := LoadConfig(); err == nil {
		if v := strings.TrimSpace(cfg[name]); v != "" {
			return v
		}
	}
	return strings.TrimSpace(os.Getenv(name))
}
