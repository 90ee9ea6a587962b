// Package keyring keeps the PostgreSQL connection string in the OS keyring.
package keyring

import (
	"errors"
	"fmt"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/studylog/internal/constants"
	"github.com/julianstephens/studylog/internal/utils"
)

// Sentinel is the --db value that means "read the connection string from
// the keyring".
const Sentinel = "keyring"

var (
	ErrNotFound    = errors.New("credentials not found in keyring")
	ErrUnavailable = errors.New("OS keyring is not available")
	ErrNotPostgres = errors.New("only PostgreSQL connection strings can be stored in the keyring")
)

// Store addresses one keyring entry.
type Store struct {
	Service string
	User    string
}

// Default is the entry used by the CLI.
var Default = Store{Service: constants.AppName, User: constants.DefaultKeyringUser}

func (s Store) Get() (string, error) {
	v, err := gokeyring.Get(s.Service, s.User)
	if errors.Is(err, gokeyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return v, nil
}

func (s Store) Set(connStr string) error {
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	if !utils.IsPostgresDSN(connStr) {
		return ErrNotPostgres
	}
	if err := gokeyring.Set(s.Service, s.User, connStr); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

func (s Store) Delete() error {
	err := gokeyring.Delete(s.Service, s.User)
	if errors.Is(err, gokeyring.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// Available probes the keyring with a read. Not finding the probe entry
// still counts as available.
func (s Store) Available() bool {
	_, err := gokeyring.Get(s.Service, "availability-probe")
	return err == nil || errors.Is(err, gokeyring.ErrNotFound)
}

// ResolveDSN swaps the keyring sentinel for the stored connection string and
// returns any other value unchanged.
func (s Store) ResolveDSN(dsn string) (string, error) {
	if dsn != Sentinel {
		return dsn, nil
	}
	v, err := s.Get()
	if err != nil {
		return "", fmt.Errorf("failed to read database connection from keyring: %w", err)
	}
	return v, nil
}
