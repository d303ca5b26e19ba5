// Package config loads the non-secret bootstrap configuration and resolves the
// secret-backed settings bundles shared by every component.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Bootstrap is the process configuration read from the environment (and an
// optional .env file). Credentials never live here; see Settings.
type Bootstrap struct {
	SecretSource string `mapstructure:"secret_source" validate:"oneof=keyvault vault env"`
	KeyVaultURL  string `mapstructure:"key_vault_url" validate:"required_if=SecretSource keyvault"`
	VaultAddress string `mapstructure:"vault_address" validate:"required_if=SecretSource vault"`
	VaultToken   string `mapstructure:"vault_token" validate:"required_if=SecretSource vault"`
	VaultMount   string `mapstructure:"vault_mount"`
	VaultPrefix  string `mapstructure:"vault_prefix"`

	SearchBackend    string `mapstructure:"search_backend" validate:"oneof=azure qdrant"`
	SearchAPIVersion string `mapstructure:"search_api_version" validate:"required"`
	QdrantHost       string `mapstructure:"qdrant_host"`
	QdrantPort       int    `mapstructure:"qdrant_port"`

	EmbeddingAPIVersion            string        `mapstructure:"embedding_api_version" validate:"required"`
	DocumentIntelligenceAPIVersion string        `mapstructure:"document_intelligence_api_version" validate:"required"`
	AnalysisTimeout                time.Duration `mapstructure:"analysis_timeout" validate:"gt=0"`

	BlobUseSSL    bool   `mapstructure:"blob_use_ssl"`
	BlobContainer string `mapstructure:"blob_container" validate:"required"`

	PreVectorizedIndex string        `mapstructure:"prevectorized_index" validate:"required"`
	PullPipelineIndex  string        `mapstructure:"pull_pipeline_index" validate:"required"`
	SettleDelay        time.Duration `mapstructure:"settle_delay" validate:"gte=0"`
	DeployEnabled      bool          `mapstructure:"deploy_enabled"` // Off in shared environments

	GraphRequestsPerSecond float64 `mapstructure:"graph_requests_per_second" validate:"gt=0"`

	Port       string `mapstructure:"port"`
	ServerMode bool   `mapstructure:"server_mode"`
	LogLevel   string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat  string `mapstructure:"log_format" validate:"oneof=text json"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("secret_source", "vault")
	v.SetDefault("key_vault_url", "")
	v.SetDefault("vault_address", "http://localhost:8200")
	v.SetDefault("vault_token", "")
	v.SetDefault("vault_mount", "secret")
	v.SetDefault("vault_prefix", "foundry-sharepoint")

	v.SetDefault("search_backend", "azure")
	v.SetDefault("search_api_version", "2025-09-01")
	v.SetDefault("qdrant_host", "localhost")
	v.SetDefault("qdrant_port", 6334)

	v.SetDefault("embedding_api_version", "2023-05-15")
	v.SetDefault("document_intelligence_api_version", "2024-11-30")
	v.SetDefault("analysis_timeout", "5m")

	v.SetDefault("blob_use_ssl", true)
	v.SetDefault("blob_container", "sharepoint-ingestion")

	v.SetDefault("prevectorized_index", "sharepoint-foundry-vectorized")
	v.SetDefault("pull_pipeline_index", "sharepoint-foundry")
	v.SetDefault("settle_delay", "30s")
	v.SetDefault("deploy_enabled", true)

	v.SetDefault("graph_requests_per_second", 10)

	v.SetDefault("port", "8080")
	v.SetDefault("server_mode", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// LoadBootstrap reads .env if present, then the environment, applies defaults
// and validates the result.
func LoadBootstrap() (*Bootstrap, error) {
	// .env is optional (local development)
	_ = godotenv.Load()
	return loadBootstrap(viper.New())
}

func loadBootstrap(v *viper.Viper) (*Bootstrap, error) {
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Bootstrap
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
