package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/gatepass/internal/pricing"
	purchasedomain "github.com/smallbiznis/gatepass/internal/purchase/domain"
)

type createPurchaseRequest struct {
	EventID        string `json:"event_id"`
	TicketTypeCode string `json:"ticket_type_code"`
	Quantity       int64  `json:"quantity"`
	// ClientPrice is the unit price the buyer saw, as a number or a
	// decimal string; legacy clients send either.
	ClientPrice any    `json:"client_price"`
	Provider    string `json:"provider"`
}

func (s *Server) CreatePurchase(c *gin.Context) {
	var req createPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	eventID, err := snowflake.ParseString(strings.TrimSpace(req.EventID))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	clientPrice, err := pricing.ParseAmount(req.ClientPrice)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.purchaseSvc.Create(c.Request.Context(), purchasedomain.CreateRequest{
		BuyerID:          buyerID(c),
		EventID:          eventID,
		TicketTypeCode:   req.TicketTypeCode,
		Quantity:         req.Quantity,
		ClientPriceMinor: clientPrice,
		Provider:         req.Provider,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

type settlePurchaseRequest struct {
	OrderRef string `json:"order_ref"`
}

func (s *Server) CompletePurchase(c *gin.Context) {
	var req settlePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.OrderRef) == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.purchaseSvc.Complete(c.Request.Context(), req.OrderRef)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelPurchase(c *gin.Context) {
	// The order reference is optional on cancellation; an empty body is a
	// valid "nothing to cancel" request.
	var req settlePurchaseRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
	}

	resp, err := s.purchaseSvc.Cancel(c.Request.Context(), req.OrderRef)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
