package migrate

import (
	"flag"
	"fmt"

	"github.com/provincie-forge/publicatie/internal/cmd/base"
	"github.com/provincie-forge/publicatie/internal/config"
	"github.com/provincie-forge/publicatie/internal/migrate"
	"github.com/provincie-forge/publicatie/pkg/database"
)

type Command struct {
	*base.Command

	flagConfig string
	flagStatus bool
}

func (c *Command) Synopsis() string {
	return "Apply pending database migrations"
}

func (c *Command) Help() string {
	return `Usage: publicatie migrate -config=config.hcl

  Apply all pending schema migrations to the configured database. With
  -status, print the current migration version instead.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(
		flag.NewFlagSet("migrate", flag.ExitOnError))

	f.StringVar(
		&c.flagConfig, "config", "", "(Required) Path to config file",
	)
	f.BoolVar(
		&c.flagStatus, "status", false,
		"Print the current migration version without applying anything.",
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

	sqlDB, err := db.DB()
	if err != nil {
		ui.Error(fmt.Sprintf("error getting SQL handle: %v", err))
		return 1
	}

	if c.flagStatus {
		version, dirty, err := migrate.GetMigrationVersion(sqlDB, "postgres")
		if err != nil {
			ui.Error(fmt.Sprintf("error reading migration version: %v", err))
			return 1
		}
		ui.Output(fmt.Sprintf("version: %d, dirty: %t", version, dirty))
		return 0
	}

	if err := migrate.RunMigrations(sqlDB, "postgres"); err != nil {
		ui.Error(fmt.Sprintf("migration failed: %v", err))
		return 1
	}

	ui.Info("migrations applied")
	return 0
}
