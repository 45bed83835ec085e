package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr string `mapstructure:"http_addr" validate:"required"`

	DBDriver string `mapstructure:"db_driver" validate:"required,oneof=sqlite postgres"`
	DBDSN    string `mapstructure:"db_dsn"`

	// HMAC secret for signing access tokens.
	AuthSecret  string `mapstructure:"auth_secret" validate:"required"`
	TokenTTLHrs int    `mapstructure:"token_ttl_hrs" validate:"gt=0"`
	BcryptCost  int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`

	CORSOrigins []string `mapstructure:"-"`
}

// FromEnv loads configuration from environment variables (EXAM_ prefix),
// optionally merged from a file named by EXAM_CONFIG_FILE.
func FromEnv() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("EXAM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("db_dsn", "")
	v.SetDefault("auth_secret", "supersecret-dev-key")
	v.SetDefault("token_ttl_hrs", 8)
	v.SetDefault("bcrypt_cost", 12)
	v.SetDefault("cors_origins", "http://localhost:3000")

	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.CORSOrigins = splitCSV(v.GetString("cors_origins"))

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
