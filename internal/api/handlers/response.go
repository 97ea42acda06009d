package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/realtorspace/realtor-space/internal/api/middleware"
	"github.com/realtorspace/realtor-space/internal/application/services"
	"github.com/realtorspace/realtor-space/internal/infrastructure/observability"
	apperrors "github.com/realtorspace/realtor-space/pkg/errors"
)

const maxJSONBody = 1 << 20

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps a failed action to a status and its user message
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	message := apperrors.UserMessage(err)

	var fieldErrs apperrors.ValidationErrors
	if stderrors.As(err, &fieldErrs) {
		respondWithJSON(w, http.StatusBadRequest, map[string]any{"error": message, "fields": fieldErrs})
		return
	}

	var status int
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation:
		var appErr *apperrors.AppError
		fields := map[string]string{}
		if stderrors.As(err, &appErr) && appErr.Field != "" {
			fields[appErr.Field] = appErr.Message
		}
		respondWithJSON(w, http.StatusBadRequest, map[string]any{"error": message, "fields": fields})
		return
	case apperrors.ErrorTypeUnauthorized:
		respondWithJSON(w, http.StatusUnauthorized, map[string]string{"error": message, "redirect": "/login"})
		return
	case apperrors.ErrorTypeForbidden:
		status = http.StatusForbidden
	case apperrors.ErrorTypeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrorTypeHTTP:
		status = apperrors.StatusOf(err)
		if status < 400 || status >= 500 {
			status = http.StatusBadGateway
		}
	case apperrors.ErrorTypeNetwork:
		status = http.StatusServiceUnavailable
	case apperrors.ErrorTypeMalformed:
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("request failed")
	}
	respondWithError(w, status, message)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(out); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return false
	}
	return true
}

// sessionStore returns the request's session or answers 500 when the
// session middleware is missing from the chain
func sessionStore(w http.ResponseWriter, r *http.Request) (*services.SessionStore, bool) {
	store := middleware.SessionFromContext(r.Context())
	if store == nil {
		respondWithError(w, http.StatusInternalServerError, "session unavailable")
		return nil, false
	}
	return store, true
}

func queryInt(r *http.Request, key string) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// splitList splits a comma separated query value, dropping blanks and duplicates
func splitList(raw string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}
