// Package pgcontainer runs a throwaway postgres in docker for integration tests.
package pgcontainer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"github.com/talx-hub/gopher-cashback/internal/model"
)

const (
	defaultTag = "16-alpine"
	pgPort     = "5432/tcp"
	dbName     = "cashback"
	userName   = "cashback"
	password   = "cashback"
	maxWait    = 30 * time.Second
)

type PGContainer struct {
	log       *slog.Logger
	pool      *dockertest.Pool
	container *dockertest.Resource
	hostPort  string
}

func New(log *slog.Logger) *PGContainer {
	return &PGContainer{log: log}
}

func imageTag() string {
	if tag := os.Getenv("POSTGRES_TAG"); tag != "" {
		return tag
	}
	return defaultTag
}

func (c *PGContainer) RunContainer() error {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return fmt.Errorf("failed to initialize a docker pool: %w", err)
	}
	c.pool = pool

	container, err := pool.RunWithOptions(
		&dockertest.RunOptions{
			Repository: "postgres",
			Tag:        imageTag(),
			Env: []string{
				"POSTGRES_USER=" + userName,
				"POSTGRES_PASSWORD=" + password,
				"POSTGRES_DB=" + dbName,
			},
			ExposedPorts: []string{pgPort},
		},
		func(config *docker.HostConfig) {
			config.AutoRemove = true
			config.RestartPolicy = docker.RestartPolicy{Name: "no"}
		},
	)
	if err != nil {
		return fmt.Errorf("failed to run postgres container: %w", err)
	}
	c.container = container
	c.hostPort = container.GetHostPort(pgPort)

	pool.MaxWait = maxWait
	if err = pool.Retry(func() error {
		conn, err := pgx.Connect(context.Background(), c.GetDSN())
		if err != nil {
			return fmt.Errorf("failed to connect to the DB: %w", err)
		}
		return conn.Close(context.Background())
	}); err != nil {
		return fmt.Errorf("postgres is not ready: %w", err)
	}

	return nil
}

func (c *PGContainer) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=disable",
		userName,
		password,
		c.hostPort,
		dbName,
	)
}

func (c *PGContainer) Close() {
	if c.pool == nil || c.container == nil {
		return
	}
	if err := c.pool.Purge(c.container); err != nil {
		c.log.LogAttrs(context.TODO(),
			slog.LevelError,
			"failed to purge the postgres container",
			slog.Any(model.KeyLoggerError, err),
		)
	}
}
