package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stationers/internal/admin"
	"stationers/internal/checkout"
	"stationers/internal/domain"
	"stationers/internal/query"
	"stationers/internal/remote"
)

var (
	errProductNotFound = errors.New("product not found")
	errOutOfStock      = errors.New("product is out of stock")
)

func mapErrorToStatus(err error) int {
	var verr *checkout.ValidationError
	switch {
	case errors.Is(err, query.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.As(err, &verr),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, domain.ErrUnknownCategory),
		errors.Is(err, domain.ErrUnknownStatus):
		return http.StatusBadRequest
	case errors.Is(err, errProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, errOutOfStock),
		errors.Is(err, admin.ErrUpdateInFlight),
		errors.Is(err, checkout.ErrCheckoutInFlight):
		return http.StatusConflict
	case errors.Is(err, remote.ErrRejected),
		errors.Is(err, remote.ErrUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error body. Not-ready responses say "connecting";
// backend failures carry a retry hint.
func respondError(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	body := gin.H{"error": err.Error()}
	switch status {
	case http.StatusServiceUnavailable:
		body["error"] = "connecting"
		body["retry"] = true
	case http.StatusBadGateway:
		body["retry"] = errors.Is(err, remote.ErrUnavailable)
	case http.StatusBadRequest:
		var verr *checkout.ValidationError
		if errors.As(err, &verr) {
			body["fields"] = verr.Fields
		}
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, body)
}
