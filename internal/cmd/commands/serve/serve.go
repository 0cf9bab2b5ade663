package serve

import (
	"flag"
	"fmt"
	"net/http"

	apiv2 "github.com/provincie-forge/publicatie/internal/api/v2"
	"github.com/provincie-forge/publicatie/internal/cmd/base"
	"github.com/provincie-forge/publicatie/internal/config"
	"github.com/provincie-forge/publicatie/internal/server"
	"github.com/provincie-forge/publicatie/pkg/database"
	"github.com/provincie-forge/publicatie/pkg/renderer/dso"
)

type Command struct {
	*base.Command

	flagConfig string
}

func (c *Command) Synopsis() string {
	return "Run the publication API server"
}

func (c *Command) Help() string {
	return `Usage: publicatie serve -config=config.hcl

  Run the publication package server. The database must be migrated first
  with "publicatie migrate".` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(
		flag.NewFlagSet("serve", flag.ExitOnError))

	f.StringVar(
		&c.flagConfig, "config", "", "(Required) Path to config file",
	)

	return f
}

func (c *Command) Run(args []string) int {
	logger, ui := c.Log, c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if c.flagConfig == "" {
		ui.Error("config flag is required")
		return 1
	}

	cfg, err := config.NewConfig(c.flagConfig)
	if err != nil {
		ui.Error(fmt.Sprintf("error parsing config file: %v", err))
		return 1
	}

	db, err := database.Connect(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	}, logger)
	if err != nil {
		ui.Error(fmt.Sprintf("error initializing database: %v", err))
		return 1
	}

	rend, err := dso.NewClient(dso.Config{
		BaseURL:    cfg.Renderer.BaseURL,
		Timeout:    cfg.Renderer.Timeout(),
		MaxRetries: uint64(cfg.Renderer.MaxRetries),
		Logger:     logger,
	})
	if err != nil {
		ui.Error(fmt.Sprintf("error initializing renderer client: %v", err))
		return 1
	}

	srv := server.Server{
		Config:   cfg,
		DB:       db,
		Renderer: rend,
		Logger:   logger,
	}

	mux := apiv2.New(srv)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	logger.Info("starting server",
		"addr", cfg.Addr,
		"renderer", rend.Name(),
		"debug", cfg.Debug,
	)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		ui.Error(fmt.Sprintf("server error: %v", err))
		return 1
	}
	return 0
}
