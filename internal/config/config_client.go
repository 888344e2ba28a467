package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// Defaults applied by [GetClientConfig] to fields left unset by every source.
const (
	DefaultRequestTimeout = 15 * time.Second
	DefaultSyncInterval   = 30 * time.Second
	DefaultGraceDelay     = 5 * time.Second
	DefaultMaxRetries     = 3
	DefaultProbeInterval  = 10 * time.Second
	DefaultHTTPAddress    = "127.0.0.1:8787"
)

// ClientApp holds process-level switches.
type ClientApp struct {
	// TUI enables the terminal status badge.
	TUI bool
}

// ClientAdapter holds the remote API connection settings.
type ClientAdapter struct {
	// HTTPAddress is the base URL of the remote API.
	HTTPAddress string
	// RequestTimeout is the timeout of one outbound call.
	RequestTimeout time.Duration
	// Token is the bearer token sent with every call.
	Token string
}

// ClientDB contains queue database connection settings.
type ClientDB struct {
	// DSN is a SQLite file path or a postgres:// connection string.
	DSN string
}

// ClientStorage groups queue storage settings.
type ClientStorage struct {
	// DB holds queue database settings.
	DB ClientDB
}

// ClientWorkers contains background worker settings.
type ClientWorkers struct {
	// SyncInterval defines how often the periodic drain trigger fires.
	SyncInterval time.Duration
}

// ClientSync contains queue replay and reachability settings.
type ClientSync struct {
	GraceDelay    time.Duration
	MaxRetries    int
	ProbeAddress  string
	ProbeInterval time.Duration
}

// ClientServer contains the local listen addresses.
type ClientServer struct {
	HTTPAddress    string
	GRPCAddress    string
	AllowedOrigins []string
}

// ClientLog contains log output settings.
type ClientLog struct {
	File string
}

// ClientConfig is the runtime configuration of the sync agent assembled from
// [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Workers ClientWorkers
	Sync    ClientSync
	Server  ClientServer
	Log     ClientLog
}

// GetClientConfig builds and validates the agent configuration.
//
// It loads the base config via [GetStructuredConfig], maps the fields into a
// [ClientConfig], fills defaults for anything left unset and validates the
// result.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := newClientConfig(cfg)
	return clientCfg, clientCfg.validate()
}

func newClientConfig(cfg *StructuredConfig) *ClientConfig {
	clientCfg := &ClientConfig{
		App: ClientApp{TUI: cfg.App.TUI},
		Adapter: ClientAdapter{
			HTTPAddress:    strings.TrimSpace(cfg.Adapter.HTTPAddress),
			RequestTimeout: cfg.Adapter.RequestTimeout,
			Token:          strings.TrimSpace(cfg.Adapter.Token),
		},
		Storage: ClientStorage{
			DB: ClientDB{
				DSN: cfg.Storage.DB.DSN,
			},
		},
		Workers: ClientWorkers{SyncInterval: cfg.Workers.SyncInterval},
		Sync: ClientSync{
			GraceDelay:    cfg.Sync.GraceDelay,
			MaxRetries:    cfg.Sync.MaxRetries,
			ProbeAddress:  cfg.Sync.ProbeAddress,
			ProbeInterval: cfg.Sync.ProbeInterval,
		},
		Server: ClientServer{
			HTTPAddress:    cfg.Server.HTTPAddress,
			GRPCAddress:    cfg.Server.GRPCAddress,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		},
		Log: ClientLog{File: cfg.Log.File},
	}

	clientCfg.applyDefaults()
	return clientCfg
}

func (cfg *ClientConfig) applyDefaults() {
	if cfg.Adapter.RequestTimeout == 0 {
		cfg.Adapter.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Workers.SyncInterval == 0 {
		cfg.Workers.SyncInterval = DefaultSyncInterval
	}
	if cfg.Sync.GraceDelay == 0 {
		cfg.Sync.GraceDelay = DefaultGraceDelay
	}
	if cfg.Sync.MaxRetries == 0 {
		cfg.Sync.MaxRetries = DefaultMaxRetries
	}
	if cfg.Sync.ProbeInterval == 0 {
		cfg.Sync.ProbeInterval = DefaultProbeInterval
	}
	if cfg.Sync.ProbeAddress == "" {
		cfg.Sync.ProbeAddress = probeAddressFromURL(cfg.Adapter.HTTPAddress)
	}
	if cfg.Server.HTTPAddress == "" {
		cfg.Server.HTTPAddress = DefaultHTTPAddress
	}
}

// probeAddressFromURL turns a base URL into the "host:port" the prober dials.
// It returns "" when raw cannot be parsed.
func probeAddressFromURL(raw string) string {
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}

	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}

	return net.JoinHostPort(u.Hostname(), port)
}
