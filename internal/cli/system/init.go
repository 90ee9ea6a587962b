package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/studylog/internal/cli"
	"github.com/julianstephens/studylog/internal/config"
	"github.com/julianstephens/studylog/internal/storage"
)

// InitCmd writes a config file and reports the schema. Pending migrations
// have already run by the time any command starts.
type InitCmd struct {
	Force bool `help:"Overwrite an existing config file."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	path := filepath.Join(ctx.ConfigDir, config.FileName)
	_, err := os.Stat(path)
	switch {
	case err == nil && !c.Force:
		ctx.Printf("Config already exists at: %s\n", path)
	case err == nil || os.IsNotExist(err):
		if err := ctx.Config.Save(ctx.ConfigDir); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		ctx.Success("Wrote config to %s", path)
	default:
		return fmt.Errorf("failed to access config: %w", err)
	}

	status, err := ctx.Store.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	location := ctx.Store.Path()
	if ctx.Store.Backend() == storage.BackendPostgres {
		location = "PostgreSQL"
	}
	ctx.Printf("Initialized studylog storage at: %s (schema version %d)\n", location, status.Current)
	return nil
}
