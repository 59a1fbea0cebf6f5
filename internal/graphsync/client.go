// Package graphsync mirrors the co-authorship graph into Neo4j.
package graphsync

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/capesgraph/authormerge/internal/logging"
)

// Config holds the connection settings read from the environment.
type Config struct {
	URI      string
	User     string
	Password string
	Database string
	Timeout  time.Duration
}

// ConfigFromEnv reads NEO4J_URI, NEO4J_USER, NEO4J_PASSWORD, NEO4J_DATABASE
// and NEO4J_TIMEOUT_SECONDS. ok is false when NEO4J_URI is unset, which
// disables syncing.
func ConfigFromEnv() (cfg Config, ok bool) {
	cfg.URI = strings.TrimSpace(os.Getenv("NEO4J_URI"))
	if cfg.URI == "" {
		return Config{}, false
	}
	cfg.User = strings.TrimSpace(os.Getenv("NEO4J_USER"))
	if cfg.User == "" {
		cfg.User = "neo4j"
	}
	cfg.Password = strings.TrimSpace(os.Getenv("NEO4J_PASSWORD"))
	cfg.Database = strings.TrimSpace(os.Getenv("NEO4J_DATABASE"))

	cfg.Timeout = 10 * time.Second
	if v := strings.TrimSpace(os.Getenv("NEO4J_TIMEOUT_SECONDS")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.Timeout = time.Duration(parsed) * time.Second
		}
	}
	return cfg, true
}

// Client is a connected Neo4j driver.
type Client struct {
	Driver   neo4j.DriverWithContext
	Database string
	log      *logging.Logger
}

// Connect opens a driver and verifies the server is reachable.
func Connect(ctx context.Context, cfg Config, log *logging.Logger) (*Client, error) {
	if log == nil {
		log = logging.Nop()
	}
	auth := neo4j.BasicAuth(cfg.User, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		c.SocketConnectTimeout = cfg.Timeout
	})
	if err != nil {
		return nil, fmt.Errorf("graphsync: init driver: %w", err)
	}

	vctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(vctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("graphsync: verify connectivity: %w", err)
	}

	log.Debug("connected to neo4j", "uri", cfg.URI, "database", cfg.Database)
	return &Client{Driver: driver, Database: cfg.Database, log: log.With("client", "neo4j")}, nil
}

// NewFromEnv connects using ConfigFromEnv. It returns nil, nil when Neo4j is
// not configured.
func NewFromEnv(ctx context.Context, log *logging.Logger) (*Client, error) {
	cfg, ok := ConfigFromEnv()
	if !ok {
		return nil, nil
	}
	return Connect(ctx, cfg, log)
}

func (c *Client) logger() *logging.Logger {
	if c.log == nil {
		return logging.Nop()
	}
	return c.log
}

// Close releases the driver.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.Driver == nil {
		return nil
	}
	err := c.Driver.Close(ctx)
	c.Driver = nil
	return err
}
