package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/regeshengen/water-quality-api/internal/common"
)

// uuidParam reads a UUID path parameter, answering 400 itself when it is
// malformed.
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Validation failed (uuid is expected)")
		return "", false
	}
	return id.String(), true
}
