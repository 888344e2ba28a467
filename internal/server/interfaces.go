package server

import "context"

// Server defines the lifecycle contract for the transport servers managed
// by this package.
type Server interface {
	// RunServer binds every enabled listener and serves in the background.
	// A bind failure is returned and nothing is left running.
	RunServer() error

	// Shutdown gracefully stops every transport. Connections still open
	// when ctx expires are closed forcibly.
	Shutdown(ctx context.Context) error
}
