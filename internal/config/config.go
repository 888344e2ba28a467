// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the sync
// agent. It aggregates all sub-configurations and is populated by merging
// values from a .env file, environment variables, command-line flags, and an
// optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds process-level switches.
	App App `envPrefix:"APP_"`

	// Storage holds the durable queue database settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds the listen addresses of the local control API and the
	// gRPC health endpoint.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the remote finance API connection settings.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds configuration for background worker processes.
	Workers Workers `envPrefix:"WORKERS_"`

	// Sync holds queue replay and reachability settings.
	Sync Sync `envPrefix:"SYNC_"`

	// Log holds log output settings.
	Log Log `envPrefix:"LOG_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged below the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds process-level switches.
type App struct {
	// TUI enables the terminal status badge.
	// Env: APP_TUI
	TUI bool `env:"TUI"`
}

// Storage groups the configuration for the durable queue store.
type Storage struct {
	// DB holds the queue database connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the queue database.
type DB struct {
	// DSN is either a SQLite file path (e.g. "./finsync.db") or a PostgreSQL
	// connection string starting with "postgres://".
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Server holds the local listen addresses.
type Server struct {
	// HTTPAddress is the address of the local control API in "host:port"
	// format (e.g. "127.0.0.1:8787").
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// GRPCAddress is the address of the gRPC health endpoint. The endpoint is
	// disabled when empty.
	// Env: SERVER_GRPC_ADDRESS
	GRPCAddress string `env:"GRPC_ADDRESS"`

	// AllowedOrigins lists browser origins (e.g. "https://app.finance.example")
	// that may call the control API besides loopback ones.
	// Env: SERVER_ALLOWED_ORIGINS (comma-separated)
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

// Adapter holds configuration for the remote finance API.
type Adapter struct {
	// HTTPAddress is the base URL of the remote API
	// (e.g. "https://api.finance.example").
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds a single call to the remote API (e.g. "15s").
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// Token is the bearer token sent with every call.
	// Env: ADAPTER_TOKEN
	Token string `env:"TOKEN"`
}

// Workers holds configuration for background worker processes.
type Workers struct {
	// SyncInterval is the period of the drain trigger while online.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`
}

// Sync holds queue replay and reachability settings.
type Sync struct {
	// GraceDelay is how long a SYNCED operation is kept before it is purged.
	// Env: SYNC_GRACE_DELAY
	GraceDelay time.Duration `env:"GRACE_DELAY"`

	// MaxRetries is the default replay ceiling for queued operations.
	// Env: SYNC_MAX_RETRIES
	MaxRetries int `env:"MAX_RETRIES"`

	// ProbeAddress is the "host:port" dialled to detect connectivity.
	// Defaults to the host of Adapter.HTTPAddress.
	// Env: SYNC_PROBE_ADDRESS
	ProbeAddress string `env:"PROBE_ADDRESS"`

	// ProbeInterval is the reachability probe period while online.
	// Env: SYNC_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`
}

// Log holds log output settings.
type Log struct {
	// File is the path of the rotated log file. Logs go to stdout when empty.
	// Env: LOG_FILE
	File string `env:"FILE"`
}

// GetStructuredConfig loads and merges the agent configuration from all
// available sources. For every field the first source that sets it wins:
//  1. Environment variables (a .env file is loaded into the environment
//     first, without overriding variables that are already set)
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withDotEnv().
		withEnv().
		withFlags().
		withJSON().
		build()
}
