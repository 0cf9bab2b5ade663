package operator

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/provincie-forge/publicatie/internal/cmd/base"
	"github.com/provincie-forge/publicatie/internal/config"
	"github.com/provincie-forge/publicatie/pkg/database"
	"github.com/provincie-forge/publicatie/pkg/models"
)

// ExportZipCommand writes a stored delivery zip to disk, for manual upload
// when the platform's automated intake is unavailable.
type ExportZipCommand struct {
	*base.Command

	fs afero.Fs

	flagConfig string
	flagZip    string
	flagOut    string
}

func (c *ExportZipCommand) Synopsis() string {
	return "Export a stored delivery zip to a local file"
}

func (c *ExportZipCommand) Help() string {
	return `Usage: publicatie operator export-zip -config=config.hcl -zip=<uuid>

  Fetch a delivery zip from the database by UUID and write it to disk. The
  download is recorded against the zip like an API download would be.` + c.Flags().Help()
}

func (c *ExportZipCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(
		flag.NewFlagSet("operator export-zip", flag.ExitOnError))

	f.StringVar(
		&c.flagConfig, "config", "", "(Required) Path to config file",
	)
	f.StringVar(
		&c.flagZip, "zip", "", "(Required) UUID of the package zip to export",
	)
	f.StringVar(
		&c.flagOut, "out", "",
		"Output path. Defaults to the zip's stored filename in the current directory.",
	)

	return f
}

func (c *ExportZipCommand) Run(args []string) int {
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
	if c.flagZip == "" {
		ui.Error("zip flag is required")
		return 1
	}

	zipUUID, err := uuid.Parse(c.flagZip)
	if err != nil {
		ui.Error(fmt.Sprintf("invalid zip UUID: %v", err))
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

	zip, err := models.GetPackageZipByUUID(db, zipUUID)
	if err != nil {
		ui.Error(fmt.Sprintf("error fetching zip: %v", err))
		return 1
	}

	out := c.flagOut
	if out == "" {
		out = zip.Filename
	}

	fs := c.fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			ui.Error(fmt.Sprintf("error creating output directory: %v", err))
			return 1
		}
	}
	if err := afero.WriteFile(fs, out, zip.Binary, 0o644); err != nil {
		ui.Error(fmt.Sprintf("error writing zip: %v", err))
		return 1
	}

	by := "operator"
	if hostname, err := os.Hostname(); err == nil {
		by = "operator@" + hostname
	}
	if err := zip.MarkDownloaded(db, by, time.Now().UTC()); err != nil {
		ui.Error(fmt.Sprintf("error recording download: %v", err))
		return 1
	}

	ui.Info(fmt.Sprintf("wrote %s (%d bytes, sha256 %s)", out, len(zip.Binary), zip.Checksum))
	return 0
}
