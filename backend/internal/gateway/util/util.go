package util

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"schedule_web/backend/internal/backendapi"
	"schedule_web/backend/internal/entity"
	"schedule_web/backend/internal/localstore"
)

// JSONResponse structure for successful responses
type JSONResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// JSONError structure for error responses
type JSONError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// WriteJSON is a helper to write JSON responses
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	var response interface{}

	// If payload is already a map with a "success" key, use it directly (custom format)
	if responseMap, ok := payload.(map[string]interface{}); ok && responseMap["success"] != nil {
		response = payload
	} else if status >= 200 && status < 300 {
		response = JSONResponse{Success: true, Data: payload}
	} else {
		response = JSONError{Success: false, Message: "Unknown error"}
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("ERROR: writing JSON response: %v", err)
	}
}

// WriteJSONError is a helper to write standardized error JSON responses
func WriteJSONError(w http.ResponseWriter, status int, message string) {
	log.Printf("WARN: HTTP %d: %s", status, message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errorResponse := JSONError{
		Success: false,
		Message: message,
	}

	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		log.Printf("ERROR: writing JSON error response: %v", err)
	}
}

// HandleBackendError maps the error taxonomy of the admin and timetable
// operations onto HTTP responses.
func HandleBackendError(w http.ResponseWriter, err error) {
	var validationErr *entity.ValidationError
	var apiErr *backendapi.APIError

	switch {
	case errors.As(err, &validationErr):
		WriteJSONError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, entity.ErrIndexOutOfRange), errors.Is(err, localstore.ErrNoRecord):
		WriteJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, localstore.ErrDuplicateID):
		WriteJSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		WriteJSONError(w, http.StatusGatewayTimeout, "Backend Timeout: The scheduling backend took too long to respond.")
	case errors.Is(err, backendapi.ErrTransport):
		WriteJSONError(w, http.StatusServiceUnavailable, "Backend Unavailable: The scheduling backend is unreachable.")
	case errors.As(err, &apiErr):
		// The backend answered but refused; pass client errors through as-is
		status := http.StatusBadGateway
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			status = apiErr.StatusCode
		}
		WriteJSONError(w, status, apiErr.Message)
	default:
		WriteJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

// WantsJSON reports whether the caller asked for JSON instead of a page.
func WantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

type adminClaimsKey struct{}

// WithAdminClaims stores the verified admin token claims on ctx.
func WithAdminClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, adminClaimsKey{}, claims)
}

// AdminSubject returns the "sub" claim of the verified admin token, or "" when
// the request passed no guard.
func AdminSubject(ctx context.Context) string {
	claims, ok := ctx.Value(adminClaimsKey{}).(jwt.MapClaims)
	if !ok {
		return ""
	}
	sub, _ := claims.GetSubject()
	return sub
}

// ExtractToken extracts the token from the Authorization header (Bearer <token>)
func ExtractToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}

	// Expect header: "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", errors.New("invalid authorization header format")
	}

	return parts[1], nil
}
