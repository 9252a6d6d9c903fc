// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into strongly-typed
Go structs, providing early validation and default values. Each binary has its
own schema: [Admin] for the back-office server and [Catalog] for the reference
catalog API.

Usage:

	cfg, err := config.LoadAdmin()
	if err != nil {
	    log.Fatal(err)
	}
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Shared Settings

// Server holds the settings common to every Shopdesk HTTP binary.
type Server struct {
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// JWTPubKeyPath verifies operator tokens issued by the identity provider.
	JWTPubKeyPath string `env:"JWT_PUBLIC_KEY_PATH,required,notEmpty"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Server) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Server) IsProduction() bool {
	return c.Environment == "production"
}

// # Configuration Schema

// Admin holds all runtime configuration for the back-office server.
type Admin struct {
	Server

	// Upstream catalog REST API
	CatalogAPIURL string        `env:"CATALOG_API_URL,required,notEmpty"`
	APITimeout    time.Duration `env:"API_TIMEOUT"          envDefault:"10s"`
	APIRateRPS    float64       `env:"API_RATE_LIMIT_RPS"   envDefault:"50"`
	APIRateBurst  int           `env:"API_RATE_LIMIT_BURST" envDefault:"50"`

	// Key-Value Cache (Redis) for the parent-selection list
	RedisURL       string        `env:"REDIS_URL,required,notEmpty"`
	RedisPoolSize  int           `env:"REDIS_POOL_SIZE"  envDefault:"5"`
	ParentCacheTTL time.Duration `env:"PARENT_CACHE_TTL" envDefault:"5m"`

	// TreeIdleTTL evicts per-operator tree state that has not been touched.
	TreeIdleTTL time.Duration `env:"TREE_IDLE_TTL" envDefault:"30m"`
}

// Catalog holds all runtime configuration for the reference catalog API.
type Catalog struct {
	Server

	// Relational Database (PostgreSQL)
	DatabaseURL        string        `env:"DATABASE_URL,required,notEmpty"`
	DBMaxConns         int32         `env:"DB_MAX_CONNS"         envDefault:"20"`
	DBStatementTimeout time.Duration `env:"DB_STATEMENT_TIMEOUT" envDefault:"10s"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`
}

// # Configuration Loading

// LoadAdmin parses environment variables into an [Admin] struct.
func LoadAdmin() (*Admin, error) {
	cfg := &Admin{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.APIRateRPS <= 0 || cfg.APIRateBurst < 1 {
		return nil, fmt.Errorf("config: API_RATE_LIMIT_RPS and API_RATE_LIMIT_BURST must be positive")
	}

	return cfg, nil
}

// LoadCatalog parses environment variables into a [Catalog] struct.
func LoadCatalog() (*Catalog, error) {
	cfg := &Catalog{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}
