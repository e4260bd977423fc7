package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	HeaderBuyer        = "X-Buyer-ID"
	contextBuyerIDKey  = "buyer_id"
	purchaseBucketName = "purchase:create:"
)

// BuyerRequired extracts the buyer identity from the request header.
// Authentication is an upstream gateway's job; the engine only needs a
// stable identifier.
func BuyerRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		buyerID := strings.TrimSpace(c.GetHeader(HeaderBuyer))
		if buyerID == "" {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		c.Set(contextBuyerIDKey, buyerID)
		c.Next()
	}
}

func buyerID(c *gin.Context) string {
	return c.GetString(contextBuyerIDKey)
}

// PurchaseRateLimit throttles purchase creation per buyer. Without Redis
// the limiter is nil and requests pass through.
func (s *Server) PurchaseRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil {
			c.Next()
			return
		}

		result, err := s.limiter.Allow(
			c.Request.Context(),
			purchaseBucketName+buyerID(c),
			s.cfg.PurchaseRate,
			s.cfg.PurchaseBurst,
		)
		if err != nil {
			// Fail open; losing Redis must not stop sales.
			s.log.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !result.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: errorPayload{
				Type:    "rate_limited",
				Message: "too many purchase attempts",
			}})
			return
		}
		c.Next()
	}
}
