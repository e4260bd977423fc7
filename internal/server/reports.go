package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	reportingdomain "github.com/smallbiznis/gatepass/internal/reporting/domain"
	"github.com/smallbiznis/gatepass/pkg/db/pagination"
)

func (s *Server) PurchaseHistory(c *gin.Context) {
	var query struct {
		pagination.Params
		EventID string `form:"event_id"`
		Status  string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.reportingSvc.History(c.Request.Context(), reportingdomain.HistoryRequest{
		BuyerID: buyerID(c),
		EventID: query.EventID,
		Status:  query.Status,
		Page:    query.Params,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp.Items, "page_info": resp.PageInfo})
}

func (s *Server) PurchaseSummary(c *gin.Context) {
	resp, err := s.reportingSvc.Summary(c.Request.Context(), buyerID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) EventSales(c *gin.Context) {
	resp, err := s.reportingSvc.EventSales(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
