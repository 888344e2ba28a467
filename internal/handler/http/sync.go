package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/MKhiriev/go-finance-sync/internal/app"
	"github.com/MKhiriev/go-finance-sync/internal/logger"
	"github.com/MKhiriev/go-finance-sync/internal/utils"
	"github.com/MKhiriev/go-finance-sync/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) getSyncStatus(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, h.services.SyncEngine.State(r.Context()), http.StatusOK)
}

func (h *Handler) syncNow(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	result, err := h.services.SyncEngine.ForceSyncNow(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.syncNow").Msg("sync pass was aborted")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, result, http.StatusOK)
}

func (h *Handler) listQueue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	ops, err := h.services.SyncEngine.ListOperations(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.listQueue").Msg("error listing queued operations")
		utils.WriteError(w, app.MsgErrorListingQueue, statusFromError(err))
		return
	}
	if ops == nil {
		ops = []models.QueuedOperation{}
	}

	utils.WriteJSON(w, models.QueueResponse{Operations: ops, Length: len(ops)}, http.StatusOK)
}

func (h *Handler) clearQueue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	deleted, err := h.services.SyncEngine.ClearAllQueued(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.clearQueue").Msg("error clearing queue")
		utils.WriteError(w, app.MsgErrorClearingQueue, statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.ClearQueueResponse{Deleted: deleted}, http.StatusOK)
}

func (h *Handler) discardOperation(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	id := chi.URLParam(r, "id")

	if err := h.services.SyncEngine.Discard(r.Context(), id); err != nil {
		log.Err(err).Str("func", "*Handler.discardOperation").Str("operation_id", id).Msg("error discarding operation")
		utils.WriteError(w, app.MsgErrorDiscardingOperation, statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) resubmitOperation(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	id := chi.URLParam(r, "id")

	newID, err := h.services.SyncEngine.Resubmit(r.Context(), id)
	if err != nil {
		log.Err(err).Str("func", "*Handler.resubmitOperation").Str("operation_id", id).Msg("error resubmitting operation")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.ResubmitResponse{OperationID: newID}, http.StatusCreated)
}

func (h *Handler) setToken(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	token, err := tokenFromRequest(r)
	if err != nil {
		log.Warn().Err(err).Str("func", "*Handler.setToken").Msg("invalid token request")
		utils.WriteError(w, app.MsgInvalidToken, http.StatusBadRequest)
		return
	}

	h.services.SyncEngine.SetToken(token)
	utils.WriteJSON(w, h.services.SyncEngine.State(r.Context()), http.StatusOK)
}

// tokenFromRequest reads {"token": ...} from the body and falls back to the
// Authorization header when the body is empty.
func tokenFromRequest(r *http.Request) (string, error) {
	var req models.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if token := strings.TrimSpace(req.Token); token != "" {
		return token, nil
	}
	if header := r.Header.Get("Authorization"); header != "" {
		return utils.ParseBearerToken(header)
	}
	return "", errEmptyToken
}
