// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

// Client defines the minimal lifecycle contract for the runnable agent.
type Client interface {
	// Run starts the agent and blocks until a stop signal or the user quits
	// the status badge.
	Run() error
}
