// Package config loads the application configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Groq     GroqConfig     `mapstructure:"groq"`
	Detector DetectorConfig `mapstructure:"detector"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type PostgresConfig struct {
	// URL enables the durable backend when set; empty keeps the in-memory
	// repository.
	URL            string `mapstructure:"url"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

type GroqConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	UseMock bool   `mapstructure:"use_mock"`
}

type DetectorConfig struct {
	// ServiceURL points to the BiomedCLIP embedding sidecar. Empty disables
	// image classification.
	ServiceURL string `mapstructure:"service_url"`
}

type AuthConfig struct {
	UserDBPath string `mapstructure:"user_db_path"`
}

// Load reads config.yaml from configPath (if present) and applies environment
// overrides and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindEnvVariables(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Missing file is fine: defaults + env vars still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func bindEnvVariables(v *viper.Viper) {
	v.BindEnv("server.port", "PORT")
	v.BindEnv("postgres.url", "DATABASE_URL")
	v.BindEnv("groq.api_key", "GROQ_API_KEY")
	v.BindEnv("groq.use_mock", "GROQ_USE_MOCK")
	v.BindEnv("detector.service_url", "DETECTOR_SERVICE_URL")
	v.BindEnv("auth.user_db_path", "USER_DB_PATH")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("postgres.migrations_path", "file://migrations")
	v.SetDefault("groq.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("groq.model", "meta-llama/llama-4-scout-17b-16e-instruct")
	v.SetDefault("groq.use_mock", false)
	v.SetDefault("detector.service_url", "http://detector:8000")
	v.SetDefault("auth.user_db_path", "user_db.json")
}
