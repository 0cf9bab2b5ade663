package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/iancoleman/strcase"
)

// Config is the top-level configuration, loaded from an HCL file.
type Config struct {
	// Addr is the listen address of the HTTP server.
	Addr string `hcl:"addr,optional"`

	// Debug relaxes the delivery-ID correlation check on report uploads so
	// platform test reports can be replayed.
	Debug bool `hcl:"debug,optional"`

	Database *Database `hcl:"database,block"`
	Renderer *Renderer `hcl:"renderer,block"`
	Identity *Identity `hcl:"identity,block"`
}

// Database configures the postgres connection.
type Database struct {
	Host     string `hcl:"host"`
	Port     int    `hcl:"port,optional"`
	User     string `hcl:"user"`
	Password string `hcl:"password,optional"`
	DBName   string `hcl:"dbname"`
	SSLMode  string `hcl:"sslmode,optional"`
}

// Renderer configures the external render service.
type Renderer struct {
	BaseURL        string `hcl:"base_url"`
	TimeoutSeconds int    `hcl:"timeout_seconds,optional"`
	MaxRetries     int    `hcl:"max_retries,optional"`
}

// Timeout returns the configured request timeout.
func (r *Renderer) Timeout() time.Duration {
	if r.TimeoutSeconds == 0 {
		return 0
	}
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// Identity carries the provincial authority identifiers used in FRBR work
// identifiers and delivery metadata.
type Identity struct {
	ProvinceID   string `hcl:"province_id"`
	AuthorityID  string `hcl:"authority_id"`
	SubmitterID  string `hcl:"submitter_id"`
	FrbrCountry  string `hcl:"frbr_country,optional"`
	FrbrLanguage string `hcl:"frbr_language,optional"`
}

// NewConfig parses the HCL config file at path, applies defaults and
// environment overrides, and validates required blocks.
func NewConfig(path string) (*Config, error) {
	var cfg Config
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.Database == nil {
		return nil, fmt.Errorf("config file is missing a database block")
	}
	if cfg.Renderer == nil {
		return nil, fmt.Errorf("config file is missing a renderer block")
	}
	if cfg.Identity == nil {
		return nil, fmt.Errorf("config file is missing an identity block")
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8000"
	}
	if cfg.Database != nil {
		if cfg.Database.Port == 0 {
			cfg.Database.Port = 5432
		}
		if cfg.Database.SSLMode == "" {
			cfg.Database.SSLMode = "disable"
		}
	}
	if cfg.Identity != nil {
		if cfg.Identity.FrbrCountry == "" {
			cfg.Identity.FrbrCountry = "nl"
		}
		if cfg.Identity.FrbrLanguage == "" {
			cfg.Identity.FrbrLanguage = "nld"
		}
	}
}

// applyEnvOverrides lets deployment secrets override file values. The variable
// name is PUBLICATIE_ plus the screaming-snake field path, for example
// PUBLICATIE_DATABASE_PASSWORD.
func applyEnvOverrides(cfg *Config) {
	if cfg.Database != nil {
		if v := envOverride("database_password"); v != "" {
			cfg.Database.Password = v
		}
		if v := envOverride("database_host"); v != "" {
			cfg.Database.Host = v
		}
	}
	if cfg.Renderer != nil {
		if v := envOverride("renderer_base_url"); v != "" {
			cfg.Renderer.BaseURL = v
		}
	}
}

func envOverride(field string) string {
	return os.Getenv("PUBLICATIE_" + strcase.ToScreamingSnake(field))
}
