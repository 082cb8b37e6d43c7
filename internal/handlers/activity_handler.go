package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studymate/internal/pagination"
	"studymate/internal/services"
)

// ActivityHandler serves the caller's audit trail.
type ActivityHandler struct {
	audit services.AuditServicer
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(audit services.AuditServicer) *ActivityHandler {
	return &ActivityHandler{audit: audit}
}

// ListActivity returns recent changes made by the caller
// @Summary     Activity feed
// @Tags        activity
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Page size (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.AuditLog] "Activity page"
// @Failure     400 {object} ErrorResponse "Invalid paging"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /activity [get]
func (h *ActivityHandler) ListActivity(c *gin.Context) {
	studentID, err := getStudentID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	result, err := h.audit.ListActivity(studentID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
