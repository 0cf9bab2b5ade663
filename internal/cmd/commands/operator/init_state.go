package operator

import (
	"flag"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"gorm.io/gorm"

	"github.com/provincie-forge/publicatie/internal/cmd/base"
	"github.com/provincie-forge/publicatie/internal/config"
	"github.com/provincie-forge/publicatie/pkg/database"
	"github.com/provincie-forge/publicatie/pkg/models"
	"github.com/provincie-forge/publicatie/pkg/state"
)

// InitStateCommand seeds an empty activated snapshot for every stateful
// environment that does not have one yet. Environments created before state
// provisioning moved into the create transaction can be repaired with this.
type InitStateCommand struct {
	*base.Command

	flagConfig string
	flagDryRun bool
}

func (c *InitStateCommand) Synopsis() string {
	return "Provision initial state for stateful environments missing one"
}

func (c *InitStateCommand) Help() string {
	return `Usage: publicatie operator init-state -config=config.hcl

  Find stateful environments without an active state snapshot and seed an
  empty activated snapshot for each. With -dry-run, only report which
  environments would be touched.` + c.Flags().Help()
}

func (c *InitStateCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(
		flag.NewFlagSet("operator init-state", flag.ExitOnError))

	f.StringVar(
		&c.flagConfig, "config", "", "(Required) Path to config file",
	)
	f.BoolVar(
		&c.flagDryRun, "dry-run", false,
		"Report environments that would be provisioned without writing anything.",
	)

	return f
}

func (c *InitStateCommand) Run(args []string) int {
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

	environments, err := models.ListEnvironments(db)
	if err != nil {
		ui.Error(fmt.Sprintf("error listing environments: %v", err))
		return 1
	}

	var result *multierror.Error
	provisioned := 0
	for _, env := range environments {
		if !env.HasState || env.ActiveStateUUID != nil {
			continue
		}

		if c.flagDryRun {
			ui.Output(fmt.Sprintf("would provision: %s (%s)", env.Title, env.UUID))
			provisioned++
			continue
		}

		env := env
		err := db.Transaction(func(tx *gorm.DB) error {
			return seedInitialState(tx, &env)
		})
		if err != nil {
			result = multierror.Append(result,
				fmt.Errorf("environment %s: %w", env.UUID, err))
			continue
		}

		logger.Info("provisioned initial state",
			"environment_uuid", env.UUID,
			"state_uuid", env.ActiveStateUUID)
		provisioned++
	}

	if err := result.ErrorOrNil(); err != nil {
		ui.Error(fmt.Sprintf("some environments failed:\n%v", err))
		return 1
	}

	if c.flagDryRun {
		ui.Output(fmt.Sprintf("%d environment(s) would be provisioned", provisioned))
	} else {
		ui.Info(fmt.Sprintf("%d environment(s) provisioned", provisioned))
	}
	return 0
}

func seedInitialState(tx *gorm.DB, env *models.Environment) error {
	raw, err := state.Marshal(state.NewInitialState())
	if err != nil {
		return fmt.Errorf("marshaling initial state: %w", err)
	}

	stateRow := &models.EnvironmentState{
		UUID:            uuid.New(),
		EnvironmentUUID: env.UUID,
		State:           raw,
		IsActivated:     true,
	}
	if err := tx.Create(stateRow).Error; err != nil {
		return fmt.Errorf("creating initial state: %w", err)
	}

	env.ActiveStateUUID = &stateRow.UUID
	return tx.Model(env).Update("active_state_uuid", stateRow.UUID).Error
}
