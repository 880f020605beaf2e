// Package api exposes the token service over HTTP. Handlers decode a
// request, call one service operation, and map the service error taxonomy
// onto status codes; failure detail goes to the log, never to the client.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/mediclogger/auth-service/internal/service"
)

type API struct {
	service *service.Service

	// defaultClient names the catalog entry used when a login request
	// doesn't say which client it is for.
	defaultClient string
}

func New(svc *service.Service, defaultClient string) *API {
	return &API{service: svc, defaultClient: defaultClient}
}

func decodeRequest[T any](req *T, w http.ResponseWriter, r *http.Request) bool {
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logApiErr(r, "bad json request")
		writeErrorBody(w, http.StatusBadRequest, "bad request")
		return false
	}
	return true
}

func returnJson(data any, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
}

func logApiErr(r *http.Request, msg string) {
	log.Printf("%s %s: %s\n", r.Method, r.RequestURI, msg)
}

// extractBearer returns the token from an Authorization header, or "".
func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeErrorBody(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}

// writeError translates service errors into responses. Clients get the
// generic taxonomy; the wrapped detail is only logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	logApiErr(r, fmt.Sprintf("%v", err))

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		writeErrorBody(w, http.StatusUnauthorized, "invalid_credentials")
	case errors.Is(err, service.ErrInvalidRefreshToken):
		writeErrorBody(w, http.StatusUnauthorized, "invalid_refresh_token")
	case errors.Is(err, service.ErrUnauthorized):
		writeErrorBody(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, service.ErrEmailExists):
		writeErrorBody(w, http.StatusConflict, "user_exists")
	case errors.Is(err, service.ErrClientNotFound):
		writeErrorBody(w, http.StatusBadRequest, "unknown_client")
	default:
		writeErrorBody(w, http.StatusInternalServerError, "internal_error")
	}
}
