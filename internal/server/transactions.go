package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetTransaction(c *gin.Context) {
	txn, err := s.txSvc.Get(c.Request.Context(), c.Param("id"), buyerID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": txn})
}

func (s *Server) GetReceipt(c *gin.Context) {
	receipt, err := s.txSvc.Receipt(c.Request.Context(), c.Param("id"), buyerID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="receipt-`+c.Param("id")+`.pdf"`)
	c.DataFromReader(http.StatusOK, -1, "application/pdf", receipt, nil)
}
