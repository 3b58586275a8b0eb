// internal/common/config/loader.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like GROQ_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific config merged over the base
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	// Local override file wins over everything else for AI credentials.
	if err := applyLocalAIOverrides(&cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries .env from multiple locations so the service can start
// from the repo root, a cmd directory, or a test directory.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig fills credentials directly from the environment when
// placeholder expansion left them empty.
func overrideEmptyConfig(cfg *Config) {
	envKeys := map[string]string{
		"groq":   "GROQ_API_KEY",
		"openai": "OPENAI_API_KEY",
		"gemini": "GEMINI_API_KEY",
	}
	for name, envKey := range envKeys {
		p := cfg.AI.Providers[name]
		if p.APIKey == "" {
			if val := os.Getenv(envKey); val != "" {
				p.APIKey = val
				cfg.AI.Providers[name] = p
			}
		}
	}

	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// localAIOverride is the shape of the locally persisted key override file.
type localAIOverride struct {
	Providers map[string]struct {
		APIKey  string `json:"apiKey"`
		BaseURL string `json:"baseUrl"`
		Model   string `json:"model"`
	} `json:"providers"`
}

// applyLocalAIOverrides merges the locally persisted override file on top of
// the resolved config. A missing file is not an error; a malformed one is.
func applyLocalAIOverrides(cfg *Config) error {
	path := cfg.AI.OverrideFile
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read AI override file: %w", err)
	}

	var override localAIOverride
	if err := json.Unmarshal(data, &override); err != nil {
		return fmt.Errorf("parse AI override file %s: %w", path, err)
	}

	for name, o := range override.Providers {
		p := cfg.AI.Providers[name]
		if o.APIKey != "" {
			p.APIKey = o.APIKey
		}
		if o.BaseURL != "" {
			p.BaseURL = o.BaseURL
		}
		if o.Model != "" {
			p.Model = o.Model
		}
		cfg.AI.Providers[name] = p
	}

	return nil
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "fleet-backoffice"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30000
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 20
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Postgres.ChangeChannel == "" {
		cfg.Database.Postgres.ChangeChannel = "row_changed"
	}

	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = "localhost:6379"
	}

	if cfg.Database.Elasticsearch.RiderIndex == "" {
		cfg.Database.Elasticsearch.RiderIndex = "riders"
	}
	if cfg.Database.Elasticsearch.LeadIndex == "" {
		cfg.Database.Elasticsearch.LeadIndex = "leads"
	}

	if cfg.AI.Providers == nil {
		cfg.AI.Providers = map[string]ProviderConfig{}
	}
	providerDefaults := map[string]ProviderConfig{
		"groq":   {BaseURL: "https://api.groq.com/openai/v1", Model: "llama-3.1-8b-instant"},
		"openai": {BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini"},
		"gemini": {BaseURL: "https://generativelanguage.googleapis.com/v1beta", Model: "gemini-1.5-flash"},
	}
	for name, def := range providerDefaults {
		p := cfg.AI.Providers[name]
		if p.BaseURL == "" {
			p.BaseURL = def.BaseURL
		}
		if p.Model == "" {
			p.Model = def.Model
		}
		cfg.AI.Providers[name] = p
	}

	// Task routing and fallback pairing are configuration, not computed.
	if len(cfg.AI.TaskRouting) == 0 {
		cfg.AI.TaskRouting = map[string]string{
			"speed":    "groq",
			"analysis": "openai",
			"creative": "gemini",
		}
	}
	if len(cfg.AI.Fallbacks) == 0 {
		cfg.AI.Fallbacks = map[string]string{
			"groq":   "openai",
			"openai": "groq",
			"gemini": "openai",
		}
	}
	if cfg.AI.MaxTokens == 0 {
		cfg.AI.MaxTokens = 1024
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = 0.7
	}

	if cfg.Leaderboard.RefreshInterval == 0 {
		cfg.Leaderboard.RefreshInterval = 60
	}
	if cfg.Leaderboard.CacheTTL == 0 {
		cfg.Leaderboard.CacheTTL = 120
	}
	if cfg.Leaderboard.TopN == 0 {
		cfg.Leaderboard.TopN = 10
	}

	if cfg.Import.MaxRows == 0 {
		cfg.Import.MaxRows = 5000
	}

	if cfg.Notifications.AWS.Region == "" {
		cfg.Notifications.AWS.Region = "ap-south-1"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}

	for task, provider := range cfg.AI.TaskRouting {
		if _, ok := cfg.AI.Providers[provider]; !ok {
			return fmt.Errorf("ai.task_routing: task %q routes to unknown provider %q", task, provider)
		}
	}
	for primary, fallback := range cfg.AI.Fallbacks {
		if _, ok := cfg.AI.Providers[fallback]; !ok {
			return fmt.Errorf("ai.fallbacks: provider %q falls back to unknown provider %q", primary, fallback)
		}
	}

	return nil
}
