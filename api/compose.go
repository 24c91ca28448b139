package api

import (
	"net/http"

	"github.com/DropBy-app/dropby/logger"
	"github.com/DropBy-app/dropby/tasks/board"
)

// ComposeRequest carries the description to draft a task from.
type ComposeRequest struct {
	Description string `json:"description"`
}

// NewComposeHandler drafts a title and estimate for a description. The
// response body is a compose.Suggestion.
func NewComposeHandler(b board.Board, lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ComposeRequest
		if taskErr := decodeJSON(w, r, &req, false); taskErr != nil {
			respondWithError(w, r, taskErr, lg)
			return
		}

		suggestion, err := b.Compose(r.Context(), req.Description)
		if err != nil {
			respondWithFailure(w, r, err, lg)
			return
		}

		respondWithJSON(w, r, http.StatusOK, suggestion, lg)
	}
}
