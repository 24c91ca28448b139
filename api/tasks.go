package api

import (
	"net/http"

	"github.com/DropBy-app/dropby/errors"
	"github.com/DropBy-app/dropby/logger"
	"github.com/DropBy-app/dropby/tasks"
	"github.com/DropBy-app/dropby/tasks/board"
)

// CreateTaskResponse is returned after a task is created.
type CreateTaskResponse struct {
	ID string `json:"id"`
}

// CompleteTaskRequest is the optional body of a completion call.
type CompleteTaskRequest struct {
	Notes string `json:"notes"`
}

// NewListTasksHandler returns every task on the board.
func NewListTasksHandler(b board.Board, lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := b.ListAll(r.Context())
		if err != nil {
			respondWithFailure(w, r, err, lg)
			return
		}
		respondWithJSON(w, r, http.StatusOK, all, lg)
	}
}

// NewListCompletedHandler returns the completed tasks.
func NewListCompletedHandler(b board.Board, lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		done, err := b.ListCompleted(r.Context())
		if err != nil {
			respondWithFailure(w, r, err, lg)
			return
		}
		respondWithJSON(w, r, http.StatusOK, done, lg)
	}
}

// NewCreateTaskHandler validates and stores a new task, answering 201
// with its id.
func NewCreateTaskHandler(b board.Board, lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tasks.CreateRequest
		if taskErr := decodeJSON(w, r, &req, false); taskErr != nil {
			respondWithError(w, r, taskErr, lg)
			return
		}

		id, err := b.Create(r.Context(), req)
		if err != nil {
			respondWithFailure(w, r, err, lg)
			return
		}

		w.Header().Set("Location", "/tasks/"+id)
		respondWithJSON(w, r, http.StatusCreated, CreateTaskResponse{ID: id}, lg)
	}
}

// NewCompleteTaskHandler marks the task named in the path as completed.
// The body is optional and may carry completion notes.
func NewCompleteTaskHandler(b board.Board, lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID := r.PathValue("id")
		if taskID == "" {
			respondWithError(w, r, errors.NewValidationError("task ID is required"), lg)
			return
		}

		var req CompleteTaskRequest
		if taskErr := decodeJSON(w, r, &req, true); taskErr != nil {
			respondWithError(w, r, taskErr, lg)
			return
		}

		if err := b.MarkComplete(r.Context(), taskID, req.Notes); err != nil {
			respondWithFailure(w, r, err, lg)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
