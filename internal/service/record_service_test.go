// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/MKhiriev/go-finance-sync/internal/adapter"
	"github.com/MKhiriev/go-finance-sync/internal/logger"
	"github.com/MKhiriev/go-finance-sync/internal/mock"
	"github.com/MKhiriev/go-finance-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestRecordSvc — сервис записи поверх настоящей очереди; монитор и шлюз — моки
func newTestRecordSvc(t *testing.T, online bool) (RecordService, *engineFixture, *mock.MockGateway) {
	t.Helper()

	f := newEngineFixture(t, online, longGrace())
	mon := mock.NewMockMonitor(gomock.NewController(t))
	mon.EXPECT().Online().Return(online).AnyTimes()
	f.engine.monitor = mon

	return NewRecordService(f.engine, f.gateway, mon, logger.Nop()), f, f.gateway
}

// ── online ───────────────────────────────────────────────────────────────────

func TestRecordService_Create_OnlineSendsDirectly(t *testing.T) {
	svc, f, gw := newTestRecordSvc(t, true)

	gw.EXPECT().Send(gomock.Any(), models.MethodCreate, "/items", json.RawMessage(`{"name":"Rice"}`)).
		Return(json.RawMessage(`{"id":42}`), nil)

	res, err := svc.Create(context.Background(), "/items", json.RawMessage(`{"name":"Rice"}`))

	require.NoError(t, err)
	assert.False(t, res.Queued)
	assert.Empty(t, res.OperationID)
	assert.JSONEq(t, `{"id":42}`, string(res.Response))

	all, err := f.queue.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRecordService_ConnectivityFailureQueues(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"network", fmt.Errorf("%w: connection refused", adapter.ErrNetwork)},
		{"timeout", fmt.Errorf("%w: deadline", adapter.ErrTimeout)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, f, gw := newTestRecordSvc(t, true)
			gw.EXPECT().Send(gomock.Any(), models.MethodUpdate, "/items/42", gomock.Any()).Return(nil, tt.err)

			res, err := svc.Update(context.Background(), "/items/42", json.RawMessage(`{"name":"Buckwheat"}`))

			require.NoError(t, err)
			assert.True(t, res.Queued)
			require.NotEmpty(t, res.OperationID)

			op, err := f.queue.Get(context.Background(), res.OperationID)
			require.NoError(t, err)
			assert.Equal(t, models.MethodUpdate, op.Method)
			assert.Equal(t, "/items/42", op.Endpoint)
		})
	}
}

// TestRecordService_OtherFailuresAreReturned: 401/4xx/5xx не ставятся в очередь
func TestRecordService_OtherFailuresAreReturned(t *testing.T) {
	for _, sendErr := range []error{adapter.ErrUnauthorized, adapter.ErrBadRequest, adapter.ErrServer, adapter.ErrConflict} {
		t.Run(sendErr.Error(), func(t *testing.T) {
			svc, f, gw := newTestRecordSvc(t, true)
			gw.EXPECT().Send(gomock.Any(), models.MethodDelete, "/items/42", gomock.Nil()).Return(nil, sendErr)

			res, err := svc.Delete(context.Background(), "/items/42")

			assert.ErrorIs(t, err, sendErr)
			assert.False(t, res.Queued)

			all, err := f.queue.GetAll(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestRecordService_CancelledContextIsNotQueued(t *testing.T) {
	svc, f, gw := newTestRecordSvc(t, true)
	ctx, cancel := context.WithCancel(context.Background())

	gw.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, models.Method, string, json.RawMessage) (json.RawMessage, error) {
			cancel()
			return nil, adapter.ErrNetwork
		})

	_, err := svc.Create(ctx, "/items", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, adapter.ErrNetwork)

	all, err := f.queue.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

// ── offline ──────────────────────────────────────────────────────────────────

// TestRecordService_OfflineQueuesWithoutNetwork: шлюз не вызывается вовсе
func TestRecordService_OfflineQueuesWithoutNetwork(t *testing.T) {
	svc, f, _ := newTestRecordSvc(t, false)
	ctx := context.Background()

	created, err := svc.Create(ctx, "/items", json.RawMessage(`{"name":"Rice"}`))
	require.NoError(t, err)
	deleted, err := svc.Delete(ctx, "/items/42")
	require.NoError(t, err)

	assert.True(t, created.Queued)
	assert.True(t, deleted.Queued)

	pending, err := f.queue.GetPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, created.OperationID, pending[0].ID)
	assert.Equal(t, models.MethodCreate, pending[0].Method)
	assert.Equal(t, deleted.OperationID, pending[1].ID)
	assert.Equal(t, models.MethodDelete, pending[1].Method)
	assert.Nil(t, pending[1].Payload)
}

func TestRecordService_Validation(t *testing.T) {
	svc, _, _ := newTestRecordSvc(t, false)

	_, err := svc.Create(context.Background(), "", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrValidationNoEndpoint)

	_, err = svc.Update(context.Background(), "/items/1", json.RawMessage(`{nope`))
	assert.ErrorIs(t, err, ErrValidationInvalidPayload)

	// эндпоинт — только путь относительно базового URL
	_, err = svc.Delete(context.Background(), "https://elsewhere.example/items/1")
	assert.ErrorIs(t, err, ErrValidationInvalidEndpoint)
}
