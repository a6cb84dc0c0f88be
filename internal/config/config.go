package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// ErrNoProvider is returned by ResolveProvider when neither provider has credentials.
var ErrNoProvider = errors.New("No AI provider configured. Set GEMINI_API_KEY (recommended) or OPENAI_API_KEY in your .env file.")

type Config struct {
	Server   ServerConfig
	Provider string
	OpenAI   OpenAIConfig
	Gemini   GeminiConfig
	LLM      LLMConfig
	Log      LogConfig

	missingEnvFile string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type OpenAIConfig struct {
	APIKey        string
	APIEndpoint   string
	ReportModel   string
	AnalysisModel string
	MaxRetries    int
}

type GeminiConfig struct {
	APIKey        string
	APIEndpoint   string
	ReportModel   string
	AnalysisModel string
	MaxRetries    int
}

type LLMConfig struct {
	Timeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// ProviderConfig is the provider selected for this process, with its credentials and models.
type ProviderConfig struct {
	Name          string
	APIKey        string
	Endpoint      string
	ReportModel   string
	AnalysisModel string
	MaxRetries    int
	Timeout       time.Duration
}

var defaults = map[string]any{
	"server_host":             "0.0.0.0",
	"server_port":             "3001",
	"server_read_timeout":     "30s",
	"server_write_timeout":    "150s",
	"server_request_timeout":  "120s",
	"server_shutdown_timeout": "30s",
	"ai_provider":             "",
	"openai_api_key":          "",
	"openai_endpoint":         "https://api.openai.com/v1",
	"openai_report_model":     "gpt-4o",
	"openai_analysis_model":   "gpt-4o-mini",
	"openai_max_retries":      2,
	"gemini_api_key":          "",
	"gemini_endpoint":         "https://generativelanguage.googleapis.com/v1beta",
	"gemini_report_model":     "gemini-2.5-flash",
	"gemini_analysis_model":   "gemini-2.5-flash-lite",
	"gemini_max_retries":      0,
	"llm_timeout":             "60s",
	"log_level":               "info",
	"log_format":              "text",
}

// LoadConfig reads configuration from the environment, layered over an optional
// dotenv file. An empty envFile or a missing file is not an error. Nothing is
// logged here; call LogSummary once the logger reflects Log.
func LoadConfig(envFile string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	if err := v.BindEnv("server_port", "SERVER_PORT", "PORT"); err != nil {
		return nil, err
	}

	var missingEnvFile string
	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("reading %s: %w", envFile, err)
			}
			missingEnvFile = envFile
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("server_host"),
			Port:            v.GetString("server_port"),
			ReadTimeout:     v.GetDuration("server_read_timeout"),
			WriteTimeout:    v.GetDuration("server_write_timeout"),
			RequestTimeout:  v.GetDuration("server_request_timeout"),
			ShutdownTimeout: v.GetDuration("server_shutdown_timeout"),
		},
		Provider: strings.ToLower(strings.TrimSpace(v.GetString("ai_provider"))),
		OpenAI: OpenAIConfig{
			APIKey:        strings.TrimSpace(v.GetString("openai_api_key")),
			APIEndpoint:   v.GetString("openai_endpoint"),
			ReportModel:   v.GetString("openai_report_model"),
			AnalysisModel: v.GetString("openai_analysis_model"),
			MaxRetries:    max(0, v.GetInt("openai_max_retries")),
		},
		Gemini: GeminiConfig{
			APIKey:        strings.TrimSpace(v.GetString("gemini_api_key")),
			APIEndpoint:   v.GetString("gemini_endpoint"),
			ReportModel:   v.GetString("gemini_report_model"),
			AnalysisModel: v.GetString("gemini_analysis_model"),
			MaxRetries:    max(0, v.GetInt("gemini_max_retries")),
		},
		LLM: LLMConfig{
			Timeout: v.GetDuration("llm_timeout"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log_level")),
			Format: strings.ToLower(v.GetString("log_format")),
		},
		missingEnvFile: missingEnvFile,
	}
	return cfg, nil
}

// LogSummary reports the start-up notes gathered while loading: a missing env
// file and unset API keys.
func (c *Config) LogSummary(logger *slog.Logger) {
	if c.missingEnvFile != "" {
		logger.Debug("env file not found, using process environment only", "path", c.missingEnvFile)
	}
	if c.OpenAI.APIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set")
	}
	if c.Gemini.APIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set")
	}
	logger.Info("configuration loaded successfully")
}

// ResolveProvider picks the provider for this process: an explicit AI_PROVIDER
// wins, then a Gemini key, then an OpenAI key.
func (c *Config) ResolveProvider() (ProviderConfig, error) {
	name := c.Provider
	if name == "" {
		switch {
		case c.Gemini.APIKey != "":
			name = ProviderGemini
		case c.OpenAI.APIKey != "":
			name = ProviderOpenAI
		default:
			return ProviderConfig{}, ErrNoProvider
		}
	}

	switch name {
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return ProviderConfig{}, errors.New("AI_PROVIDER is openai but OPENAI_API_KEY is not set.")
		}
		return ProviderConfig{
			Name:          ProviderOpenAI,
			APIKey:        c.OpenAI.APIKey,
			Endpoint:      c.OpenAI.APIEndpoint,
			ReportModel:   c.OpenAI.ReportModel,
			AnalysisModel: c.OpenAI.AnalysisModel,
			MaxRetries:    c.OpenAI.MaxRetries,
			Timeout:       c.LLM.Timeout,
		}, nil
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return ProviderConfig{}, errors.New("AI_PROVIDER is gemini but GEMINI_API_KEY is not set.")
		}
		return ProviderConfig{
			Name:          ProviderGemini,
			APIKey:        c.Gemini.APIKey,
			Endpoint:      c.Gemini.APIEndpoint,
			ReportModel:   c.Gemini.ReportModel,
			AnalysisModel: c.Gemini.AnalysisModel,
			MaxRetries:    c.Gemini.MaxRetries,
			Timeout:       c.LLM.Timeout,
		}, nil
	default:
		return ProviderConfig{}, fmt.Errorf("Unsupported AI_PROVIDER %q (supported: openai, gemini).", name)
	}
}

// ProviderName is the provider errors should be attributed to, even when none is configured.
func (c *Config) ProviderName() string {
	if pc, err := c.ResolveProvider(); err == nil {
		return pc.Name
	}
	if c.Provider == ProviderGemini {
		return ProviderGemini
	}
	return ProviderOpenAI
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
