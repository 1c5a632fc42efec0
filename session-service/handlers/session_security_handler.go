package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cubis-academy-backend/session-service/middleware"
	sessionmodels "cubis-academy-backend/shared/database/models/session"
	"cubis-academy-backend/shared/sessions"
	"cubis-academy-backend/shared/utils/query"
)

// SecurityEventResponse represents a security event in the response
type SecurityEventResponse struct {
	ID             uuid.UUID `json:"id"`
	SessionID      uuid.UUID `json:"session_id"`
	EventType      string    `json:"event_type"`
	Severity       string    `json:"severity"`
	BoundDevice    string    `json:"bound_device"`
	PresentedValue string    `json:"presented_value"`
	IPAddress      string    `json:"ip_address"`
	CreatedAt      time.Time `json:"created_at"`
}

// GET /api/sessions
// @Summary List user sessions
// @Description List the caller's sessions with derived device info and current-session flag
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param filters[is_active] query boolean false "Filter by active status"
// @Success 200 {object} map[string]interface{} "List of session views"
// @Failure 401 {object} map[string]string "User not authenticated"
// @Failure 500 {object} map[string]string "Failed to retrieve sessions"
// @Router /sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	sctx, ok := middleware.GetSessionContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	params := query.ParseQueryParams(c)

	views, err := h.enumerator.List(c.Request.Context(), sctx.UserID, sctx.Token, sctx.DeviceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sessions"})
		return
	}

	if active, ok := params.Filters["is_active"]; ok {
		filtered := make([]sessions.SessionView, 0, len(views))
		for _, view := range views {
			if (active == "true") == view.IsActive {
				filtered = append(filtered, view)
			}
		}
		views = filtered
	}

	total := int64(len(views))
	start := (params.Page - 1) * params.Limit
	if start > len(views) {
		start = len(views)
	}
	end := start + params.Limit
	if end > len(views) {
		end = len(views)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      views[start:end],
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
		},
	})
}

// DELETE /api/sessions/:id
// @Summary Revoke session
// @Description Revoke a specific session owned by the caller
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID to revoke"
// @Success 200 {object} map[string]string "Session revoked successfully"
// @Failure 400 {object} map[string]string "Invalid session ID format"
// @Failure 401 {object} map[string]string "User not authenticated"
// @Failure 403 {object} map[string]string "Session belongs to another user"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 500 {object} map[string]string "Failed to revoke session"
// @Router /sessions/{id} [delete]
func (h *SessionHandler) RevokeSession(c *gin.Context) {
	sctx, ok := middleware.GetSessionContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID format"})
		return
	}

	err = h.revoker.Revoke(c.Request.Context(), sctx.UserID, sessionID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Session revoked successfully"})
	case errors.Is(err, sessions.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, sessions.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Session does not belong to the current user"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke session"})
	}
}

// POST /api/sessions/revoke-all
// @Summary Revoke all sessions
// @Description Revoke every active session of the caller, including the current one
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Count of revoked sessions"
// @Failure 401 {object} map[string]string "User not authenticated"
// @Failure 500 {object} map[string]string "Failed to revoke sessions"
// @Router /sessions/revoke-all [post]
func (h *SessionHandler) RevokeAllSessions(c *gin.Context) {
	sctx, ok := middleware.GetSessionContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	count, err := h.revoker.RevokeAll(c.Request.Context(), sctx.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "All sessions revoked successfully",
		"revoked_count": count,
	})
}

// POST /api/sessions/revoke-others
// @Summary Revoke other sessions
// @Description Revoke every active session of the caller except the current one (used after password change)
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Count of revoked sessions"
// @Failure 401 {object} map[string]string "User not authenticated"
// @Failure 500 {object} map[string]string "Failed to revoke sessions"
// @Router /sessions/revoke-others [post]
func (h *SessionHandler) RevokeOtherSessions(c *gin.Context) {
	sctx, ok := middleware.GetSessionContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	count, err := h.revoker.RevokeAllExceptCurrent(c.Request.Context(), sctx.UserID, sctx.Token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Signed out of other devices",
		"revoked_count": count,
	})
}

// GET /api/sessions/security-events
// @Summary List security events
// @Description List device and token mismatch events recorded for the caller
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param filters[event_type] query string false "Filter by event type (device_mismatch, token_mismatch)"
// @Param filters[severity] query string false "Filter by severity"
// @Param sort[field] query string false "Sort field (created_at, event_type)"
// @Param sort[order] query string false "Sort order (asc, desc)"
// @Success 200 {object} map[string]interface{} "Security event list"
// @Failure 401 {object} map[string]string "User not authenticated"
// @Failure 500 {object} map[string]string "Failed to retrieve security events"
// @Router /sessions/security-events [get]
func (h *SessionHandler) GetSecurityEvents(c *gin.Context) {
	sctx, ok := middleware.GetSessionContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	params := query.ParseQueryParams(c)

	allowedFilters := map[string]string{
		"event_type": "event_type",
		"severity":   "severity",
	}
	allowedSortFields := map[string]string{
		"created_at": "created_at",
		"event_type": "event_type",
	}

	dbQuery := h.db.Model(&sessionmodels.SecurityEvent{}).Where("user_id = ?", sctx.UserID)
	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFilters)
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count security events"})
		return
	}

	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var events []sessionmodels.SecurityEvent
	if err := dbQuery.Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve security events"})
		return
	}

	response := make([]SecurityEventResponse, 0, len(events))
	for _, event := range events {
		response = append(response, SecurityEventResponse{
			ID:             event.ID,
			SessionID:      event.SessionID,
			EventType:      event.EventType,
			Severity:       event.Severity,
			BoundDevice:    event.BoundDevice,
			PresentedValue: event.PresentedValue,
			IPAddress:      event.IPAddress,
			CreatedAt:      event.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      response,
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
		},
	})
}
