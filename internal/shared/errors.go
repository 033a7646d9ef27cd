package shared

import "errors"

var (
	// ErrNotFound indicates a missing record or cache entry.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates a rejected request payload.
	ErrValidation = errors.New("validation failed")
	// ErrConstraintViolation indicates a delete blocked by a referential rule.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrInvalidStatus indicates a disallowed status transition.
	ErrInvalidStatus = errors.New("invalid status transition")
	// ErrDocumentGeneration indicates a PDF layout failure.
	ErrDocumentGeneration = errors.New("document generation failed")
	// ErrDelivery indicates a mail relay failure.
	ErrDelivery = errors.New("delivery failed")
)

// UserSafeMessage returns a message suitable for surfacing to the caller.
// Internal failures collapse to a generic line; taxonomy errors pass through.
func UserSafeMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrConstraintViolation),
		errors.Is(err, ErrInvalidStatus):
		return err.Error()
	case errors.Is(err, ErrDocumentGeneration):
		return "document could not be generated, please retry"
	case errors.Is(err, ErrDelivery):
		return "email could not be sent, please retry"
	default:
		return "internal error"
	}
}
