package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a local control API address in format [host]:[port]
//	-grpc-address gRPC health endpoint address in format [host]:[port]
//	-allowed-origins comma-separated browser origins allowed to call the control API
//	-d queue database DSN (SQLite path or postgres:// URL)
//	-c/-config json file path with configs
//	-api remote API base URL
//	-request-timeout remote API request timeout (e.g., "15s")
//	-token remote API bearer token
//	-sync-interval periodic sync interval (e.g., "30s")
//	-grace-delay retention of synced operations (e.g., "5s")
//	-max-retries default replay ceiling per operation
//	-probe-address reachability probe target in format [host]:[port]
//	-probe-interval reachability probe period (e.g., "10s")
//	-log-file rotated log file path
//	-tui run the terminal status badge
func ParseFlags() *StructuredConfig {
	var serverAddress, grpcServerAddress NetAddress
	var databaseDSN string
	var jsonConfigPath string
	var apiAddress string
	var requestTimeout time.Duration
	var token string
	var syncInterval time.Duration
	var graceDelay time.Duration
	var maxRetries int
	var probeAddress string
	var probeInterval time.Duration
	var logFile string
	var tui bool
	var allowedOrigins string

	flag.Var(&serverAddress, "a", "Local control API address host:port")
	flag.Var(&grpcServerAddress, "grpc-address", "gRPC health endpoint address host:port")
	flag.StringVar(&allowedOrigins, "allowed-origins", "", "Comma-separated browser origins allowed to call the control API")
	flag.StringVar(&databaseDSN, "d", "", "Queue database DSN")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&apiAddress, "api", "", "Remote API base URL")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Remote API request timeout (e.g., 15s)")
	flag.StringVar(&token, "token", "", "Remote API bearer token")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Periodic sync interval (e.g., 30s)")
	flag.DurationVar(&graceDelay, "grace-delay", 0, "Retention of synced operations (e.g., 5s)")
	flag.IntVar(&maxRetries, "max-retries", 0, "Default replay ceiling per operation")
	flag.StringVar(&probeAddress, "probe-address", "", "Reachability probe target host:port")
	flag.DurationVar(&probeInterval, "probe-interval", 0, "Reachability probe period (e.g., 10s)")
	flag.StringVar(&logFile, "log-file", "", "Rotated log file path")
	flag.BoolVar(&tui, "tui", false, "Run the terminal status badge")

	flag.Parse()

	return &StructuredConfig{
		App: App{TUI: tui},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			GRPCAddress:    grpcServerAddress.String(),
			AllowedOrigins: splitList(allowedOrigins),
		},
		Adapter: Adapter{
			HTTPAddress:    apiAddress,
			RequestTimeout: requestTimeout,
			Token:          token,
		},
		Workers: Workers{SyncInterval: syncInterval},
		Sync: Sync{
			GraceDelay:    graceDelay,
			MaxRetries:    maxRetries,
			ProbeAddress:  probeAddress,
			ProbeInterval: probeInterval,
		},
		Log:          Log{File: logFile},
		JSONFilePath: jsonConfigPath,
	}
}

// splitList turns "a, b,,c" into [a b c]. An empty input gives nil so the
// value does not override other sources when merged.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns the default server address.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
