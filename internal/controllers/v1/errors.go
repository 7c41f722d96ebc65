package v1

import (
	"errors"
	"net/http"

	"github.com/familos/backend/internal/ledger"
	"github.com/familos/backend/internal/period"
	"github.com/familos/backend/internal/remote"
)

type httpError struct {
	Error string `json:"error" example:"the request body must not be empty"`
}

// status returns the appropriate HTTP status for a service error.
func status(err error) int {
	if errors.Is(err, ledger.ErrNotFound) || errors.Is(err, period.ErrNotFound) || errors.Is(err, remote.ErrNotFound) {
		return http.StatusNotFound
	}

	if errors.Is(err, ledger.ErrContributionInUse) || errors.Is(err, period.ErrAlreadyClosed) {
		return http.StatusConflict
	}

	if errors.Is(err, remote.ErrRemoteUnavailable) {
		return http.StatusBadGateway
	}

	var rollover period.RolloverError
	if errors.As(err, &rollover) {
		return http.StatusBadGateway
	}

	return http.StatusBadRequest
}
