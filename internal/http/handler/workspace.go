package handler

import (
	"net/http"

	mw "github.com/edirooss/flowplan/internal/http/middleware"
	"github.com/edirooss/flowplan/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WorkspaceHandler serves the session's workspace as a whole.
//
// Supported operations:
//   - GET    /workspace → id, revision, counts
//   - DELETE /workspace → reset to empty (new revision)
type WorkspaceHandler struct {
	log     *zap.Logger
	svc     *service.WorkspaceService
	reports *service.ReportService
}

func NewWorkspaceHandler(log *zap.Logger, svc *service.WorkspaceService, reports *service.ReportService) *WorkspaceHandler {
	return &WorkspaceHandler{log: log.Named("workspace"), svc: svc, reports: reports}
}

// GetWorkspace handles GET /workspace.
//
// Status Codes:
//   - 200 OK → workspace meta
//   - 500 Internal Server Error
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	ws, err := h.svc.Get(c.Request.Context(), mw.GetWorkspaceID(c))
	if err != nil {
		fail(c, err)
		return
	}
	setRevision(c, ws)
	c.JSON(http.StatusOK, ws.Meta())
}

// ResetWorkspace handles DELETE /workspace.
//
// Status Codes:
//   - 200 OK → meta of the emptied workspace
//   - 400 Bad Request → malformed If-Match
//   - 409 Conflict → If-Match revision is stale
//   - 423 Locked → another mutation is in flight
//   - 500 Internal Server Error
func (h *WorkspaceHandler) ResetWorkspace(c *gin.Context) {
	rev, err := ifMatch(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	id := mw.GetWorkspaceID(c)
	ws, err := h.svc.Reset(c.Request.Context(), id, rev)
	if err != nil {
		fail(c, err)
		return
	}
	h.reports.Invalidate(id)
	setRevision(c, ws)
	c.JSON(http.StatusOK, ws.Meta())
}
