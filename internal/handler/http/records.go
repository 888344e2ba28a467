// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/MKhiriev/go-finance-sync/internal/app"
	"github.com/MKhiriev/go-finance-sync/internal/logger"
	"github.com/MKhiriev/go-finance-sync/internal/utils"
	"github.com/MKhiriev/go-finance-sync/models"
	"github.com/go-chi/chi/v5"
)

// maxRecordBodyBytes caps the payload accepted by the write path.
const maxRecordBodyBytes = 1 << 20

// writeRecord forwards a shell write to the offline-first write path.
// The remote endpoint is everything after /api/records, query included.
// The response is 200 with the server body when the write went through and
// 202 with the operation id when it was queued for replay.
func (h *Handler) writeRecord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()
	endpoint := recordEndpoint(r)

	var (
		result models.WriteResult
		err    error
	)
	switch r.Method {
	case http.MethodDelete:
		result, err = h.services.RecordService.Delete(ctx, endpoint)
	default:
		if !isJSON(r) {
			log.Warn().Str("func", "*Handler.writeRecord").Str("content_type", r.Header.Get("Content-Type")).Msg("write body is not JSON")
			utils.WriteError(w, app.MsgUnsupportedMediaType, http.StatusUnsupportedMediaType)
			return
		}

		payload, readErr := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRecordBodyBytes))
		if readErr != nil {
			status := http.StatusBadRequest
			var tooLarge *http.MaxBytesError
			if errors.As(readErr, &tooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			log.Err(readErr).Str("func", "*Handler.writeRecord").Msg("error reading request body")
			utils.WriteError(w, app.MsgErrorReadingBody, status)
			return
		}

		if r.Method == http.MethodPost {
			result, err = h.services.RecordService.Create(ctx, endpoint, json.RawMessage(payload))
		} else {
			result, err = h.services.RecordService.Update(ctx, endpoint, json.RawMessage(payload))
		}
	}
	if err != nil {
		log.Err(err).Str("func", "*Handler.writeRecord").Str("endpoint", endpoint).Msg("write was rejected")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	status := http.StatusOK
	if result.Queued {
		status = http.StatusAccepted
	}
	utils.WriteJSON(w, result, status)
}

func recordEndpoint(r *http.Request) string {
	endpoint := "/" + strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if r.URL.RawQuery != "" {
		endpoint += "?" + r.URL.RawQuery
	}
	return endpoint
}

// isJSON reports whether the request declares a JSON body. Browsers can only
// send such a body cross-site after a CORS preflight, which this API never
// answers.
func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
