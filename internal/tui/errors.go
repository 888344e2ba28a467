// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"errors"

	"github.com/MKhiriev/go-finance-sync/internal/app"
	"github.com/MKhiriev/go-finance-sync/internal/service"
)

func humanizeSyncError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, service.ErrAuthentication):
		return app.MsgReloginRequired
	case errors.Is(err, service.ErrPersistenceFailure):
		return "Local queue is unavailable, sync stopped"
	}
	return err.Error()
}
