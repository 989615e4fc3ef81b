package config

// ConfigFilePath is the INI config location. Environment variables are
// expanded by callers via os.ExpandEnv before loading.
const ConfigFilePath = "$HOME/.config/tech-translator/config.ini"
