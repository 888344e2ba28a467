// Package server runs the agent's local transports.
//
// It binds the control API and the optional gRPC health listener, serves
// them in the background and shuts both down gracefully.
package server
