package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	eventdomain "github.com/smallbiznis/gatepass/internal/event/domain"
	invdomain "github.com/smallbiznis/gatepass/internal/inventory/domain"
	"github.com/smallbiznis/gatepass/internal/pricing"
	paydomain "github.com/smallbiznis/gatepass/internal/providers/payment/domain"
	purchasedomain "github.com/smallbiznis/gatepass/internal/purchase/domain"
	reportingdomain "github.com/smallbiznis/gatepass/internal/reporting/domain"
	txdomain "github.com/smallbiznis/gatepass/internal/transaction/domain"
)

var ErrInvalidRequest = errors.New("invalid_request")

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// ErrorHandlingMiddleware turns domain errors pushed onto the gin context
// into JSON error responses.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	var pricingErr *pricing.ValidationError
	if errors.As(err, &pricingErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: pricingErr.Reason,
		}
	}

	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, purchasedomain.ErrInvalidRequest),
		errors.Is(err, invdomain.ErrInvalidQuantity),
		errors.Is(err, eventdomain.ErrInvalidTitle),
		errors.Is(err, eventdomain.ErrInvalidID),
		errors.Is(err, reportingdomain.ErrInvalidStatus),
		errors.Is(err, reportingdomain.ErrInvalidEventID),
		errors.Is(err, reportingdomain.ErrInvalidBuyer),
		errors.Is(err, paydomain.ErrProviderNotFound):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}

	case errors.Is(err, eventdomain.ErrNotFound),
		errors.Is(err, eventdomain.ErrTicketTypeNotFound),
		errors.Is(err, invdomain.ErrTicketTypeNotFound),
		errors.Is(err, txdomain.ErrNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: err.Error(),
		}

	case errors.Is(err, purchasedomain.ErrPriceMismatch),
		errors.Is(err, invdomain.ErrInsufficient),
		errors.Is(err, eventdomain.ErrAlreadyExists),
		errors.Is(err, txdomain.ErrReceiptUnavailable):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}

	// The event behind a pending transaction vanished; the transaction is
	// already downgraded to FAILED when this surfaces.
	case errors.Is(err, purchasedomain.ErrConsistency):
		return http.StatusConflict, errorPayload{
			Type:    "consistency_error",
			Message: "referenced event no longer exists",
		}

	case errors.Is(err, purchasedomain.ErrProvider):
		return http.StatusBadGateway, errorPayload{
			Type:    "provider_error",
			Message: "payment provider error",
		}

	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}
