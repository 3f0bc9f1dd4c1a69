// Package config parses the process configuration from the environment and
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/public-forge/go-tower-api/api"
	"github.com/public-forge/go-tower-api/database"
	"github.com/public-forge/go-tower-api/logging"
)

// ErrInvalidConfig wraps every configuration failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// DataConfig locates the data served by the API.
type DataConfig struct {
	Dir          string `long:"dir" env:"DIR" default:"data" description:"Directory holding the chart JSON documents"`
	ClosureTable string `long:"closure-table" env:"CLOSURE_TABLE" default:"tmsv_360_project_closure" description:"Table served by /closureData"`
}

// Config is the top-level configuration of the service.
type Config struct {
	Database database.Config `group:"Database" namespace:"db" env-namespace:"DB"`
	Log      logging.Config  `group:"Logging" namespace:"log" env-namespace:"LOG"`
	API      api.Config      `group:"API" namespace:"api" env-namespace:"API"`
	Data     DataConfig      `group:"Data" namespace:"data" env-namespace:"DATA"`
}

// Load parses args and the environment into a validated Config.
// A request for help is returned as a *flags.Error of type flags.ErrHelp.
func Load(args []string) (Config, error) {
	var cfg Config
	var parser = flags.NewParser(&cfg, flags.HelpFlag|flags.PassDoubleDash)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return cfg, err
		}
		return cfg, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Validate checks every section of the configuration.
func (c Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.API.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Data.Dir) == "" {
		return fmt.Errorf("data directory is required")
	}
	if strings.TrimSpace(c.Data.ClosureTable) == "" {
		return fmt.Errorf("closure table is required")
	}
	return nil
}
