package api

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/DropBy-app/dropby/api/middleware"
	"github.com/DropBy-app/dropby/errors"
	"github.com/DropBy-app/dropby/logger"
)

const maxBodySize = 1024 * 1024 // 1 MB

// ErrorResponse defines the JSON structure for error responses
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    string         `json:"type,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// decodeJSON reads a size-limited JSON body into dst. When optional is
// set an empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, optional bool) *errors.TaskError {
	// Limit request body size - this will cause Decode to fail if exceeded
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}
	if optional && stderrors.Is(err, io.EOF) {
		return nil
	}

	var maxErr *http.MaxBytesError
	if stderrors.As(err, &maxErr) {
		return errors.NewValidationError("request body too large", map[string]any{
			"max_size_bytes": maxBodySize,
		})
	}

	return errors.NewValidationError("invalid JSON payload", map[string]any{
		"error": err.Error(),
	})
}

// respondWithJSON writes v with the given status code.
func respondWithJSON(w http.ResponseWriter, r *http.Request, status int, v any, lg *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already out; all we can do is record it.
		lg.Error("failed to encode response", map[string]any{
			"error":      err.Error(),
			"request_id": middleware.RequestIDFromContext(r.Context()),
		})
	}
}

// respondWithFailure sends err as a structured error response, treating
// anything that is not a TaskError as internal.
func respondWithFailure(w http.ResponseWriter, r *http.Request, err error, lg *logger.Logger) {
	taskErr, ok := errors.IsTaskError(err)
	if !ok {
		taskErr = errors.NewInternalError(err.Error())
	}
	respondWithError(w, r, taskErr, lg)
}

// respondWithError sends a structured error response
func respondWithError(w http.ResponseWriter, r *http.Request, taskErr *errors.TaskError, lg *logger.Logger) {
	fields := map[string]any{
		"error_type":    string(taskErr.Type),
		"error_message": taskErr.Message,
		"status_code":   taskErr.Code,
		"request_id":    middleware.RequestIDFromContext(r.Context()),
	}
	if len(taskErr.Details) > 0 {
		fields["error_details"] = taskErr.Details
	}
	if taskErr.Code >= http.StatusInternalServerError {
		lg.Error("HTTP error response", fields)
	} else {
		lg.Warn("HTTP error response", fields)
	}

	respondWithJSON(w, r, taskErr.Code, ErrorResponse{
		Error:   taskErr.Message,
		Type:    string(taskErr.Type),
		Details: taskErr.Details,
	}, lg)
}
