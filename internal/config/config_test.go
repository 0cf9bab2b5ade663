package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const fullConfig = `
addr  = "0.0.0.0:9000"
debug = true

database {
  host   = "db.internal"
  user   = "publicatie"
  dbname = "publicatie"
}

renderer {
  base_url        = "https://render.example.test"
  timeout_seconds = 30
}

identity {
  province_id  = "pv28"
  authority_id = "0001"
  submitter_id = "0001"
}
`

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, fullConfig))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Addr)
	assert.True(t, cfg.Debug)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	assert.Equal(t, 30*time.Second, cfg.Renderer.Timeout())

	assert.Equal(t, "pv28", cfg.Identity.ProvinceID)
	assert.Equal(t, "nl", cfg.Identity.FrbrCountry)
	assert.Equal(t, "nld", cfg.Identity.FrbrLanguage)
}

const (
	databaseBlock = `
database {
  host   = "h"
  user   = "u"
  dbname = "d"
}
`
	rendererBlock = `
renderer {
  base_url = "x"
}
`
	identityBlock = `
identity {
  province_id  = "pv28"
  authority_id = "0001"
  submitter_id = "0001"
}
`
)

func TestNewConfigMissingBlocks(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{
			name:    "missing database",
			content: rendererBlock + identityBlock,
			message: "database",
		},
		{
			name:    "missing renderer",
			content: databaseBlock + identityBlock,
			message: "renderer",
		},
		{
			name:    "missing identity",
			content: databaseBlock + rendererBlock,
			message: "identity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestNewConfigEnvOverrides(t *testing.T) {
	t.Setenv("PUBLICATIE_DATABASE_PASSWORD", "s3cret")
	t.Setenv("PUBLICATIE_RENDERER_BASE_URL", "https://render.override.test")

	cfg, err := NewConfig(writeConfig(t, fullConfig))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "https://render.override.test", cfg.Renderer.BaseURL)
}
