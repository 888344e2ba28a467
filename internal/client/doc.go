// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the sync agent process runtime.
//
// It wires the durable queue, the remote API gateway, the reachability
// prober, the sync services, the local transports and the optional terminal
// status badge into a single process lifecycle.
package client
