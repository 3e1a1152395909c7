package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultGeminiModel  = "gemini-1.5-flash"
	DefaultMaxTokens    = 2048
	DefaultTemperature  = 0.7
	DefaultHost         = "0.0.0.0"
	DefaultPort         = 18890
	DefaultBufSize      = 100
	DefaultHistoryLimit = 10
	DefaultProcessLimit = 10
)

type Config struct {
	Assistant  AssistantConfig  `json:"assistant"`
	Provider   ProviderConfig   `json:"provider"`
	Channels   ChannelsConfig   `json:"channels"`
	Gateway    GatewayConfig    `json:"gateway"`
	Automation AutomationConfig `json:"automation"`
	Macros     MacrosConfig     `json:"macros"`
	Memory     MemoryConfig     `json:"memory"`
}

type AssistantConfig struct {
	Name         string  `json:"name"`
	Workspace    string  `json:"workspace"`
	Model        string  `json:"model"`
	MaxTokens    int     `json:"maxTokens"`
	Temperature  float64 `json:"temperature"`
	HistoryLimit int     `json:"historyLimit"`
}

type ProviderConfig struct {
	Type    string `json:"type,omitempty"` // "gemini" (default) or "openai"
	APIKey  string `json:"apiKey"`
	BaseURL string `json:"baseUrl,omitempty"`
}

type ChannelsConfig struct {
	Telegram TelegramConfig `json:"telegram"`
	WebUI    WebUIConfig    `json:"webui"`
}

type TelegramConfig struct {
	Enabled   bool     `json:"enabled"`
	Token     string   `json:"token"`
	AllowFrom []string `json:"allowFrom"`
	Proxy     string   `json:"proxy,omitempty"`
}

type WebUIConfig struct {
	Enabled   bool     `json:"enabled"`
	AllowFrom []string `json:"allowFrom"`
}

type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// AutomationConfig controls where the automation layer touches the machine.
// Empty directory fields fall back to the conventional locations under the
// user's home directory.
type AutomationConfig struct {
	ContextPath   string `json:"contextPath,omitempty"`
	Desktop       string `json:"desktop,omitempty"`
	Documents     string `json:"documents,omitempty"`
	Downloads     string `json:"downloads,omitempty"`
	ScreenshotDir string `json:"screenshotDir,omitempty"`
	ProcessLimit  int    `json:"processLimit,omitempty"`
}

type MacrosConfig struct {
	Enabled bool   `json:"enabled"`
	Dir     string `json:"dir,omitempty"`
}

type MemoryConfig struct {
	DBPath string `json:"dbPath,omitempty"`
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Assistant: AssistantConfig{
			Name:         "ANAY",
			Workspace:    filepath.Join(home, ".anay", "workspace"),
			Model:        DefaultGeminiModel,
			MaxTokens:    DefaultMaxTokens,
			Temperature:  DefaultTemperature,
			HistoryLimit: DefaultHistoryLimit,
		},
		Provider: ProviderConfig{},
		Channels: ChannelsConfig{},
		Gateway: GatewayConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Automation: AutomationConfig{
			ProcessLimit: DefaultProcessLimit,
		},
		Macros: MacrosConfig{Enabled: true},
	}
}

func ConfigDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, ".anay")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// ContextPath is where the persisted execution context lives.
func (c *Config) ContextPath() string {
	if c.Automation.ContextPath != "" {
		return c.Automation.ContextPath
	}
	return filepath.Join(ConfigDir(), "data", "execution_context.json")
}

func (c *Config) MemoryDBPath() string {
	if c.Memory.DBPath != "" {
		return c.Memory.DBPath
	}
	return filepath.Join(ConfigDir(), "data", "conversations.db")
}

func (c *Config) MacrosDir() string {
	if c.Macros.Dir != "" {
		return c.Macros.Dir
	}
	return filepath.Join(c.Assistant.Workspace, "macros")
}

func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if key := os.Getenv("ANAY_API_KEY"); key != "" {
		cfg.Provider.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" && cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = key
		if cfg.Provider.Type == "" {
			cfg.Provider.Type = "openai"
		}
	}
	if url := os.Getenv("ANAY_BASE_URL"); url != "" {
		cfg.Provider.BaseURL = url
	}
	if model := os.Getenv("ANAY_MODEL"); model != "" {
		cfg.Assistant.Model = model
	}
	if token := os.Getenv("ANAY_TELEGRAM_TOKEN"); token != "" {
		cfg.Channels.Telegram.Token = token
	}
	if path := os.Getenv("ANAY_CONTEXT_PATH"); path != "" {
		cfg.Automation.ContextPath = path
	}
	if path := os.Getenv("ANAY_MEMORY_DB_PATH"); path != "" {
		cfg.Memory.DBPath = path
	}
	if limit := os.Getenv("ANAY_HISTORY_LIMIT"); limit != "" {
		if parsed, err := strconv.Atoi(limit); err == nil {
			cfg.Assistant.HistoryLimit = parsed
		}
	}

	if cfg.Assistant.Workspace == "" {
		cfg.Assistant.Workspace = DefaultConfig().Assistant.Workspace
	}
	if cfg.Assistant.Model == "" {
		cfg.Assistant.Model = DefaultGeminiModel
	}
	if cfg.Assistant.HistoryLimit <= 0 {
		cfg.Assistant.HistoryLimit = DefaultHistoryLimit
	}
	if cfg.Automation.ProcessLimit <= 0 {
		cfg.Automation.ProcessLimit = DefaultProcessLimit
	}

	return cfg, nil
}

func SaveConfig(cfg *Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(ConfigPath(), data, 0644)
}
