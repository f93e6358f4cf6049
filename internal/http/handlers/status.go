package handlers

import (
	"net/http"

	"github.com/tbourn/go-error-catalog/internal/errcat"
)

// StatusFor maps a failure kind to its HTTP status. Anything outside the
// four kinds is a server fault.
func StatusFor(k errcat.Kind) int {
	switch k {
	case errcat.KindBadRequest:
		return http.StatusBadRequest
	case errcat.KindNotFound:
		return http.StatusNotFound
	case errcat.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// kindForStatus is the inverse used for transport-only errors. Statuses
// without a kind return "".
func kindForStatus(status int) string {
	switch {
	case status == http.StatusBadRequest:
		return errcat.KindBadRequest.String()
	case status == http.StatusUnauthorized:
		return errcat.KindUnauthorized.String()
	case status == http.StatusNotFound:
		return errcat.KindNotFound.String()
	case status >= http.StatusInternalServerError:
		return errcat.KindInternalServer.String()
	}
	return ""
}
