package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/MKhiriev/go-finance-sync/internal/logger"
	"github.com/MKhiriev/go-finance-sync/models"
	"github.com/coder/websocket"
)

const wsWriteTimeout = 5 * time.Second

// streamSyncStatus upgrades to a websocket and pushes every SyncState change.
// The first message is the state at the moment of connection.
func (h *Handler) streamSyncStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	// same-origin is always accepted; configured shell origins on top
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins.patterns(),
	})
	if err != nil {
		log.Err(err).Str("func", "*Handler.streamSyncStatus").Msg("websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// only the newest state matters; a slow reader skips intermediate ones
	states := make(chan models.SyncState, 1)
	unsubscribe := h.services.SyncEngine.Subscribe(func(state models.SyncState) {
		select {
		case states <- state:
		default:
			select {
			case <-states:
			default:
			}
			select {
			case states <- state:
			default:
			}
		}
	})
	defer unsubscribe()

	// the client never sends anything; CloseRead cancels ctx when it goes away
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			return
		case state := <-states:
			if err := writeState(ctx, conn, state); err != nil {
				log.Debug().Err(err).Str("func", "*Handler.streamSyncStatus").Msg("websocket client gone")
				return
			}
		}
	}
}

func writeState(ctx context.Context, conn *websocket.Conn, state models.SyncState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()

	return conn.Write(writeCtx, websocket.MessageText, data)
}
