// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "strings"

// validate checks that the final [ClientConfig] satisfies all runtime
// invariants before the agent starts. Defaults must already be applied.
func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, ":memory:") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout < 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Workers.SyncInterval < 0 {
		return ErrInvalidWorkerConfigs
	}

	if cfg.Sync.GraceDelay < 0 || cfg.Sync.MaxRetries < 1 ||
		cfg.Sync.ProbeInterval < 0 || cfg.Sync.ProbeAddress == "" {
		return ErrInvalidSyncConfigs
	}

	return nil
}
