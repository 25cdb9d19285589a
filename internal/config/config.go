package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	DefaultModel    = "gpt-4o-mini"
	DefaultProvider = "openai"
	DefaultBaseURL  = "https://api.openai.com/v1"
	DefaultTimeout  = 60 * time.Second
	MaxTopLogProbs  = 20
)

// Config holds runtime configuration values.
type Config struct {
	Model        string
	Provider     string
	BaseURL      string
	APIKey       string
	Organization string
	Project      string
	Headers      map[string]string
	Timeout      time.Duration
	RetryMax     int
	LogProbs     bool
	TopLogProbs  int
	System       string
	Stream       bool
	JSON         bool
	Verbose      bool
}

type rawConfig struct {
	Model        string            `mapstructure:"model"`
	Provider     string            `mapstructure:"provider"`
	BaseURL      string            `mapstructure:"base_url"`
	Organization string            `mapstructure:"organization"`
	Project      string            `mapstructure:"project"`
	Headers      map[string]string `mapstructure:"headers"`
	Timeout      string            `mapstructure:"timeout"`
	RetryMax     int               `mapstructure:"retry_max"`
	LogProbs     bool              `mapstructure:"logprobs"`
	TopLogProbs  int               `mapstructure:"top_logprobs"`
	System       string            `mapstructure:"system"`
	Stream       bool              `mapstructure:"stream"`
	JSON         bool              `mapstructure:"json"`
	Verbose      bool              `mapstructure:"verbose"`
}

// Load resolves configuration from defaults, config files, env, and flags.
func Load(cmd *cobra.Command) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LMCHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("model", DefaultModel)
	v.SetDefault("provider", DefaultProvider)
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("organization", "")
	v.SetDefault("project", "")
	v.SetDefault("timeout", DefaultTimeout.String())
	v.SetDefault("retry_max", 0)
	v.SetDefault("logprobs", false)
	v.SetDefault("top_logprobs", 0)
	v.SetDefault("system", "")
	v.SetDefault("stream", false)
	v.SetDefault("json", false)
	v.SetDefault("verbose", false)

	if cmd != nil {
		_ = v.BindPFlag("model", cmd.Flags().Lookup("model"))
		_ = v.BindPFlag("base_url", cmd.Flags().Lookup("base-url"))
		_ = v.BindPFlag("timeout", cmd.Flags().Lookup("timeout"))
		_ = v.BindPFlag("retry_max", cmd.Flags().Lookup("retry-max"))
		_ = v.BindPFlag("logprobs", cmd.Flags().Lookup("logprobs"))
		_ = v.BindPFlag("top_logprobs", cmd.Flags().Lookup("top-logprobs"))
		_ = v.BindPFlag("system", cmd.Flags().Lookup("system"))
		_ = v.BindPFlag("stream", cmd.Flags().Lookup("stream"))
		_ = v.BindPFlag("json", cmd.Flags().Lookup("json"))
		_ = v.BindPFlag("verbose", cmd.Flags().Lookup("verbose"))
	}

	if model := os.Getenv("OPENAI_MODEL"); model != "" && os.Getenv("LMCHAT_MODEL") == "" {
		v.Set("model", model)
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" && os.Getenv("LMCHAT_BASE_URL") == "" {
		v.Set("base_url", baseURL)
	}
	if org := os.Getenv("OPENAI_ORG_ID"); org != "" && os.Getenv("LMCHAT_ORGANIZATION") == "" {
		v.Set("organization", org)
	}
	if project := os.Getenv("OPENAI_PROJECT_ID"); project != "" && os.Getenv("LMCHAT_PROJECT") == "" {
		v.Set("project", project)
	}

	if err := loadConfigFile(v); err != nil {
		return Config{}, err
	}

	var raw rawConfig
	decoder, _ := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		Result:           &raw,
		WeaklyTypedInput: true,
	})
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return Config{}, err
	}

	timeout := DefaultTimeout
	if raw.Timeout != "" {
		parsed, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("invalid timeout duration: %w", err)
		}
		timeout = parsed
	}

	apiKey := os.Getenv("LMCHAT_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	cfg := Config{
		Model:        raw.Model,
		Provider:     raw.Provider,
		BaseURL:      raw.BaseURL,
		APIKey:       apiKey,
		Organization: raw.Organization,
		Project:      raw.Project,
		Headers:      raw.Headers,
		Timeout:      timeout,
		RetryMax:     raw.RetryMax,
		LogProbs:     raw.LogProbs,
		TopLogProbs:  raw.TopLogProbs,
		System:       raw.System,
		Stream:       raw.Stream,
		JSON:         raw.JSON,
		Verbose:      raw.Verbose,
	}
	normalize(&cfg)
	return cfg, nil
}

func normalize(cfg *Config) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}
	if cfg.TopLogProbs < 0 {
		cfg.TopLogProbs = 0
	}
	if cfg.TopLogProbs > MaxTopLogProbs {
		cfg.TopLogProbs = MaxTopLogProbs
	}
	if cfg.TopLogProbs > 0 {
		cfg.LogProbs = true
	}
}

func loadConfigFile(v *viper.Viper) error {
	if path := os.Getenv("LMCHAT_CONFIG"); path != "" {
		v.SetConfigFile(path)
		return v.ReadInConfig()
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	base := filepath.Join(configDir, "lmchat")
	candidates := []string{
		filepath.Join(base, "config.yaml"),
		filepath.Join(base, "config.yml"),
		filepath.Join(base, "config.json"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			return v.ReadInConfig()
		}
	}
	return nil
}
