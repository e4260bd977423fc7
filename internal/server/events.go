package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	eventdomain "github.com/smallbiznis/gatepass/internal/event/domain"
)

// CreateEvent accepts the event fields plus pricing in any of the
// supported legacy shapes, so the body is bound as a raw map and the
// pricing normalizer sorts out the rest.
func (s *Server) CreateEvent(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	req := eventdomain.CreateRequest{
		Title:       stringField(raw, "title"),
		Description: stringField(raw, "description"),
		Venue:       stringField(raw, "venue"),
		Pricing:     raw,
	}
	if startsAt := stringField(raw, "starts_at"); startsAt != "" {
		parsed, err := time.Parse(time.RFC3339, startsAt)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		req.StartsAt = &parsed
	}

	resp, err := s.eventSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		targetID := resp.ID.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), "admin", nil, "event.create", "event", &targetID, map[string]any{
			"title": resp.Title,
			"slug":  resp.Slug,
		})
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetEvent(c *gin.Context) {
	resp, err := s.eventSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReplaceEventPricing(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.eventSvc.ReplacePricing(c.Request.Context(), c.Param("id"), raw)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.auditSvc != nil {
		targetID := resp.ID.String()
		_ = s.auditSvc.AuditLog(c.Request.Context(), "admin", nil, "event.replace_pricing", "event", &targetID, map[string]any{
			"ticket_types": len(resp.TicketTypes),
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func stringField(raw map[string]any, key string) string {
	value, ok := raw[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
