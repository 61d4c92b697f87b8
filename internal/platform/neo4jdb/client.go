package neo4jdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	pkgerrors "github.com/yungbote/moviegraph/internal/pkg/errors"
	"github.com/yungbote/moviegraph/internal/pkg/retry"
	"github.com/yungbote/moviegraph/internal/platform/logger"
)

type Config struct {
	URI         string        `yaml:"uri"`
	User        string        `yaml:"user"`
	Password    string        `yaml:"password"`
	Database    string        `yaml:"database"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxPoolSize int           `yaml:"max_pool_size"`
	// ConnectAttempts bounds the connectivity checks made by New; <= 0 means 5.
	ConnectAttempts int `yaml:"connect_attempts"`
}

// Validate requires every connection parameter; an empty password is rejected too.
func (c Config) Validate() error {
	for name, v := range map[string]string{
		"uri":      c.URI,
		"user":     c.User,
		"password": c.Password,
		"database": c.Database,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("neo4jdb: %w: %s must be a non-empty string", pkgerrors.ErrInvalidArgument, name)
		}
	}
	return nil
}

// Client owns the driver for the lifetime of the process. Pass it explicitly; close
// it once on shutdown.
type Client struct {
	Driver   neo4j.DriverWithContext
	Database string
	log      *logger.Logger
}

func New(ctx context.Context, cfg Config, log *logger.Logger) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("neo4jdb: logger required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxPool := cfg.MaxPoolSize
	if maxPool <= 0 {
		maxPool = 50
	}

	auth := neo4j.BasicAuth(cfg.User, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		c.MaxConnectionPoolSize = maxPool
		c.SocketConnectTimeout = timeout
	})
	if err != nil {
		return nil, fmt.Errorf("neo4jdb: init driver: %w", err)
	}

	attempts := cfg.ConnectAttempts
	if attempts <= 0 {
		attempts = 5
	}
	err = retry.Do(ctx, retry.Policy{
		Attempts:  attempts,
		Base:      500 * time.Millisecond,
		Max:       5 * time.Second,
		Retryable: retryable,
	}, func(ctx context.Context) error {
		vctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		err := driver.VerifyConnectivity(vctx)
		if err != nil {
			log.Warn("neo4j not reachable yet", "uri", cfg.URI, "error", err)
		}
		return err
	})
	if err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4jdb: %w: verify connectivity: %v", pkgerrors.ErrStoreUnavailable, err)
	}

	log.Info("neo4j connected", "uri", cfg.URI, "database", cfg.Database)
	return &Client{
		Driver:   driver,
		Database: cfg.Database,
		log:      log.With("client", "Neo4jDB"),
	}, nil
}

// retryable treats connectivity failures as transient; auth and config errors are not.
func retryable(err error) bool {
	return neo4j.IsConnectivityError(err) || retry.IsRetryable(err)
}

func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.Driver == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := c.Driver.Close(ctx)
	c.Driver = nil
	if c.log != nil {
		c.log.Debug("neo4j driver closed")
	}
	return err
}
