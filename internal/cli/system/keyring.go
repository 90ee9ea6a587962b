package system

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/julianstephens/studylog/internal/cli"
	"github.com/julianstephens/studylog/internal/keyring"
	"github.com/julianstephens/studylog/internal/storage"
)

type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in the keyring."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if _, err := storage.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, storage.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		ctx.Warn("Connection string contains embedded credentials.")
		ctx.Println("  It will be stored as-is in the encrypted OS keyring.")
	}

	if err := keyring.Default.Set(cmd.ConnectionString); err != nil {
		if errors.Is(err, keyring.ErrNotPostgres) {
			return errors.New("connection string must be a valid PostgreSQL connection string")
		}
		return err
	}

	ctx.Success("Connection string stored in OS keyring")
	ctx.Printf("  Set db: %s in config.yaml to use it\n", keyring.Sentinel)
	return nil
}

type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.Default.Delete(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return err
	}
	ctx.Success("Connection string deleted from OS keyring")
	return nil
}

type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.Default.Available() {
		ctx.Println("❌ OS keyring is not available on this system")
		return keyring.ErrUnavailable
	}
	ctx.Println("✓ OS keyring is available")

	connStr, err := keyring.Default.Get()
	switch {
	case err == nil:
		ctx.Printf("✓ Connection string stored: %s\n", maskPassword(connStr))
	case errors.Is(err, keyring.ErrNotFound):
		ctx.Println("ℹ No connection string stored in keyring")
	default:
		return err
	}
	return nil
}

func maskPassword(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil {
		return "(unparseable connection string)"
	}
	return u.Redacted()
}
