package server

import (
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/provincie-forge/publicatie/internal/config"
	"github.com/provincie-forge/publicatie/pkg/renderer"
)

// Server bundles the shared dependencies of the HTTP handlers.
type Server struct {
	// Config is the parsed configuration file.
	Config *config.Config

	// DB is the database handle for the server.
	DB *gorm.DB

	// Renderer is the external render service used by package builds.
	Renderer renderer.Renderer

	// Logger is the logger for the server.
	Logger hclog.Logger
}
