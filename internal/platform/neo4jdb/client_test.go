package neo4jdb

import (
	"context"
	"errors"
	"testing"

	pkgerrors "github.com/yungbote/moviegraph/internal/pkg/errors"
	"github.com/yungbote/moviegraph/internal/platform/logger"
)

func TestConfigValidate(t *testing.T) {
	ok := Config{URI: "bolt://localhost:7687", User: "neo4j", Password: "secret", Database: "movies"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	for _, mutate := range []func(*Config){
		func(c *Config) { c.URI = "" },
		func(c *Config) { c.User = " " },
		func(c *Config) { c.Password = "" },
		func(c *Config) { c.Database = "" },
	} {
		cfg := ok
		mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
			t.Fatalf("Validate(%+v): want ErrInvalidArgument, got=%v", cfg, err)
		}
	}
}

func TestNewRequiresLogger(t *testing.T) {
	if _, err := New(context.Background(), Config{}, nil); err == nil {
		t.Fatalf("expected error without logger")
	}
	if _, err := New(context.Background(), Config{}, logger.NewNop()); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got=%v", err)
	}
}

func TestCloseNil(t *testing.T) {
	var c *Client
	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("Close on nil client: %v", err)
	}
}
