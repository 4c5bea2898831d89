package handler

import (
	"fmt"
	"net/http"
	"strings"

	mw "github.com/edirooss/flowplan/internal/http/middleware"
	"github.com/edirooss/flowplan/internal/plan"
	"github.com/edirooss/flowplan/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PlanHandler imports and exports the workspace as a plan document.
//
// Supported operations:
//   - GET /plan?format=yaml|json → download
//   - PUT /plan?format=yaml|json → replace the workspace content
type PlanHandler struct {
	log     *zap.Logger
	svc     *service.WorkspaceService
	reports *service.ReportService
}

func NewPlanHandler(log *zap.Logger, svc *service.WorkspaceService, reports *service.ReportService) *PlanHandler {
	return &PlanHandler{log: log.Named("plan"), svc: svc, reports: reports}
}

// ExportPlan handles GET /plan.
//
// Status Codes:
//   - 200 OK → document as attachment
//   - 400 Bad Request → unknown format
//   - 500 Internal Server Error
func (h *PlanHandler) ExportPlan(c *gin.Context) {
	f, err := plan.ParseFormat(c.Query("format"))
	if err != nil {
		fail(c, err)
		return
	}
	ws, err := h.svc.Get(c.Request.Context(), mw.GetWorkspaceID(c))
	if err != nil {
		fail(c, err)
		return
	}

	setRevision(c, ws)
	c.Header("Content-Type", f.ContentType())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="flowplan.%s"`, f))
	c.Status(http.StatusOK)
	if err := plan.Encode(c.Writer, f, plan.FromWorkspace(ws)); err != nil {
		c.Error(err) // headers already sent
	}
}

// ImportPlan handles PUT /plan.
//
// Behavior:
//   - Format from ?format, else from Content-Type (application/json → JSON), else YAML.
//   - All records are validated as if created one by one; any violation rejects the
//     whole document and leaves the workspace untouched.
//
// Status Codes:
//   - 200 OK → meta of the replaced workspace
//   - 400 Bad Request → undecodable document, unknown format or bad If-Match
//   - 409 Conflict → stale If-Match
//   - 422 Unprocessable Entity → invariant violation or unsupported version
//   - 423 Locked → another mutation is in flight
//   - 500 Internal Server Error
func (h *PlanHandler) ImportPlan(c *gin.Context) {
	fs := c.Query("format")
	if fs == "" && strings.HasPrefix(c.ContentType(), "application/json") {
		fs = "json"
	}
	f, err := plan.ParseFormat(fs)
	if err != nil {
		fail(c, err)
		return
	}
	rev, err := ifMatch(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	doc, err := plan.Decode(c.Request.Body, f)
	if err != nil {
		if statusOf(err) == http.StatusInternalServerError {
			badRequest(c, err) // syntax/shape errors
			return
		}
		fail(c, err)
		return
	}
	devs, conns, err := doc.Resolve()
	if err != nil {
		fail(c, err)
		return
	}

	id := mw.GetWorkspaceID(c)
	ws, err := h.svc.Replace(c.Request.Context(), id, rev, devs, conns)
	if err != nil {
		fail(c, err)
		return
	}
	h.reports.Invalidate(id)
	h.log.Debug("plan imported",
		zap.String("workspace_id", id),
		zap.Int("devices", len(ws.Devices)),
		zap.Int("connections", len(ws.Connections)),
	)
	setRevision(c, ws)
	c.JSON(http.StatusOK, ws.Meta())
}
