package tui

import (
	"github.com/MKhiriev/go-finance-sync/models"
)

type stateMsg models.SyncState

type syncDoneMsg struct {
	result models.DrainResult
	err    error
}

type queueClearedMsg struct {
	deleted int64
	err     error
}
