package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/edirooss/flowplan/internal/domain/flow/views"
	mw "github.com/edirooss/flowplan/internal/http/middleware"
	"github.com/edirooss/flowplan/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReportHandler struct {
	log     *zap.Logger
	svc     *service.WorkspaceService
	reports *service.ReportService
}

func NewReportHandler(log *zap.Logger, svc *service.WorkspaceService, reports *service.ReportService) *ReportHandler {
	return &ReportHandler{log: log.Named("report"), svc: svc, reports: reports}
}

// GetReport handles GET /report.
//
// Behavior:
//   - Per-device usage, free flows and over-capacity flags, plus totals.
//   - ?over=1 keeps only devices over capacity in either direction.
//   - X-Cache: HIT|MISS, X-Report-Revision, X-Report-Generated-At.
//
// Status Codes:
//   - 200 OK
//   - 500 Internal Server Error
func (h *ReportHandler) GetReport(c *gin.Context) {
	ws, err := h.svc.Get(c.Request.Context(), mw.GetWorkspaceID(c))
	if err != nil {
		fail(c, err)
		return
	}

	res := h.reports.Get(ws)
	if res.CacheHit {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	c.Header("X-Report-Revision", strconv.FormatInt(res.Data.Revision, 10))
	c.Header("X-Report-Generated-At", res.GeneratedAt.UTC().Format(time.RFC3339Nano))

	out := res.Data
	if c.Query("over") == "1" {
		over := make([]views.DeviceReport, 0, out.OverCapacity)
		for _, d := range out.Devices {
			if d.TxOver || d.RxOver {
				over = append(over, d)
			}
		}
		out.Devices = over
	}
	c.JSON(http.StatusOK, out)
}
