package httpx

import (
	"errors"
	"net/http"

	"github.com/permitdesk/permitdesk/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrConstraintViolation):
		Problem(w, http.StatusConflict, "Constraint Violation", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrInvalidStatus):
		Problem(w, http.StatusConflict, "Invalid Status", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrDocumentGeneration):
		Problem(w, http.StatusInternalServerError, "Document Generation Failed", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrDelivery):
		Problem(w, http.StatusBadGateway, "Delivery Failed", shared.UserSafeMessage(err))
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
