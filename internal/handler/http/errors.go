package http

import (
	"errors"

	"github.com/tsvetelinpenkovv/obms-stocksync/internal/domain"
	apperrors "github.com/tsvetelinpenkovv/obms-stocksync/pkg/errors"
)

// toAppError translates domain sentinel errors into transport errors so the
// shared response writer can map them to status codes. Unknown errors pass
// through and surface as 500s.
func toAppError(err error, resource, id string) error {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrProductNotFound):
		return apperrors.NotFound(resource, id)
	case errors.Is(err, domain.ErrStoreUnavailable):
		return apperrors.Unavailable("backing store unreachable", err)
	case errors.Is(err, domain.ErrInvalidConfiguration):
		return apperrors.InvalidInput(err.Error())
	case errors.Is(err, domain.ErrConcurrentUpdateConflict):
		return apperrors.Conflict("stock changed concurrently, please retry")
	default:
		return err
	}
}
