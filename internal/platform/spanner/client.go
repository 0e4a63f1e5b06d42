// Package spanner provides the Cloud Spanner client and transaction scopes used by
// the mapping store, the sync ledger and the tracking records.
package spanner

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
)

// Config holds Spanner connection configuration.
type Config struct {
	ProjectID  string
	InstanceID string
	DatabaseID string
	// MinSessions and MaxSessions size the session pool; zero keeps the library default.
	MinSessions uint64
	MaxSessions uint64
}

// DSN returns the Spanner database connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("projects/%s/instances/%s/databases/%s",
		c.ProjectID, c.InstanceID, c.DatabaseID)
}

// NewClient creates a client and checks that the database answers.
// SPANNER_EMULATOR_HOST is honoured by the client library itself.
// The caller is responsible for closing the client when done.
func NewClient(ctx context.Context, cfg Config) (*spanner.Client, error) {
	clientCfg := spanner.ClientConfig{SessionPoolConfig: spanner.DefaultSessionPoolConfig}
	if cfg.MinSessions > 0 {
		clientCfg.SessionPoolConfig.MinOpened = cfg.MinSessions
	}
	if cfg.MaxSessions > 0 {
		clientCfg.SessionPoolConfig.MaxOpened = cfg.MaxSessions
	}

	client, err := spanner.NewClientWithConfig(ctx, cfg.DSN(), clientCfg)
	if err != nil {
		return nil, fmt.Errorf("creating spanner client: %w", err)
	}
	if err := Ping(ctx, client); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// Ping runs a trivial query. Used at startup and by the readiness check.
func Ping(ctx context.Context, client *spanner.Client) error {
	iter := client.Single().Query(ctx, spanner.Statement{SQL: "SELECT 1"})
	defer iter.Stop()
	if _, err := iter.Next(); err != nil {
		return fmt.Errorf("pinging spanner: %w", err)
	}
	return nil
}
