package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/vaishrk/pcos-care/internal/common"
)

// Settings holds the resolved runtime configuration for the server.
type Settings struct {
	DatabasePath   string
	ModelPath      string
	SchemaPath     string
	DatasetPath    string
	JWTSecret      string
	AllowedOrigins []string
	Port           int
	TokenTTL       time.Duration
}

// Defaults applied when neither config file nor environment provide a value.
const (
	DefaultDatabasePath = "$HOME/.local/share/pcoscare/pcoscare.db"
	DefaultModelPath    = "pcos_model.json"
	DefaultSchemaPath   = "pcos_features.json"
	DefaultDatasetPath  = "pcos_data.csv"
	DefaultPort         = 5000
	DefaultTokenTTL     = 5 * time.Hour
)

// LoadSettings reads configuration from viper (config file plus PCOSCARE_
// environment variables) and expands any path values.
func LoadSettings() Settings {
	viper.SetDefault("database.path", DefaultDatabasePath)
	viper.SetDefault("model.path", DefaultModelPath)
	viper.SetDefault("model.schema_path", DefaultSchemaPath)
	viper.SetDefault("training.dataset", DefaultDatasetPath)
	viper.SetDefault("server.port", DefaultPort)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	viper.SetDefault("auth.token_ttl", DefaultTokenTTL.String())

	ttl, err := time.ParseDuration(viper.GetString("auth.token_ttl"))
	if err != nil || ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return Settings{
		DatabasePath:   ExpandPath(viper.GetString("database.path")),
		ModelPath:      ExpandPath(viper.GetString("model.path")),
		SchemaPath:     ExpandPath(viper.GetString("model.schema_path")),
		DatasetPath:    ExpandPath(viper.GetString("training.dataset")),
		JWTSecret:      viper.GetString("auth.jwt_secret"),
		AllowedOrigins: viper.GetStringSlice("server.allowed_origins"),
		Port:           viper.GetInt("server.port"),
		TokenTTL:       ttl,
	}
}

// ValidateForServe checks that everything the HTTP server needs is present.
// There is deliberately no fallback for the signing secret: a missing secret
// must stop startup, not degrade into an insecure default.
func (s Settings) ValidateForServe() error {
	if s.JWTSecret == "" {
		return fmt.Errorf("%w: auth.jwt_secret (PCOSCARE_AUTH_JWT_SECRET) is required", common.ErrMissingConfig)
	}
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", common.ErrInvalidConfig, s.Port)
	}
	return nil
}
