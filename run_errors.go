package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/sheetprompt/internal/batch"
	"github.com/charmbracelet/sheetprompt/internal/proto"
)

// describeRunError turns an error returned by a batch run into a appError
// with a reason the user can act on.
func describeRunError(err error, api batch.API) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return appError{err: err, reason: "Run canceled."}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return appError{err: err, reason: fmt.Sprintf("The %s API took too long to answer.", api.Name)}
	}
	if errors.Is(err, proto.ErrMalformedResponse) {
		return appError{err: err, reason: fmt.Sprintf("Unexpected response from the %s API.", api.Name)}
	}

	var herr *proto.HTTPError
	if !errors.As(err, &herr) {
		return appError{err: err, reason: fmt.Sprintf(
			"There was a problem with the %s API request.",
			api.Name,
		)}
	}

	switch code := herr.StatusCode; {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		// invalid auth or key
		return appError{err: err, reason: fmt.Sprintf("Invalid %s API key.", api.Name)}
	case code == http.StatusNotFound:
		return appError{err: err, reason: fmt.Sprintf(
			"Missing model '%s' for API '%s'.",
			api.SelectedModel,
			api.Name,
		)}
	case code == http.StatusTooManyRequests:
		// rate limiting or engine overload
		return appError{err: err, reason: fmt.Sprintf("You’ve hit your %s API rate limit.", api.Name)}
	case code >= http.StatusInternalServerError:
		return appError{err: err, reason: fmt.Sprintf("%s API server error.", api.Name)}
	case code >= http.StatusBadRequest:
		return appError{err: err, reason: fmt.Sprintf("%s API request error.", api.Name)}
	default:
		return appError{err: err, reason: "Unknown API error."}
	}
}
