package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/edirooss/flowplan/internal/domain/flow"
	"github.com/edirooss/flowplan/internal/http/dto"
	mw "github.com/edirooss/flowplan/internal/http/middleware"
	"github.com/edirooss/flowplan/internal/service"
	"github.com/edirooss/flowplan/pkg/jsonx"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DevicesHandler provides RESTful HTTP handlers for the devices of the session workspace.
//
// Supported operations:
//   - GET    /devices       → List devices
//   - POST   /devices       → Create a device
//   - GET    /devices/{id}  → Retrieve a device
//   - PATCH  /devices/{id}  → Modify name/capacities (merge-patch)
//   - DELETE /devices/{id}  → Remove a device and cascade to its connections
//
// Mutations honour If-Match (workspace revision) and return the new revision as ETag.
type DevicesHandler struct {
	log *zap.Logger
	svc *service.WorkspaceService
}

func NewDevicesHandler(log *zap.Logger, svc *service.WorkspaceService) *DevicesHandler {
	return &DevicesHandler{log: log.Named("devices"), svc: svc}
}

// GetDeviceList handles GET /devices.
//
// Status Codes:
//   - 200 OK → JSON array of devices (X-Total-Count)
//   - 500 Internal Server Error
func (h *DevicesHandler) GetDeviceList(c *gin.Context) {
	ws, err := h.svc.Get(c.Request.Context(), mw.GetWorkspaceID(c))
	if err != nil {
		fail(c, err)
		return
	}
	setRevision(c, ws)
	c.Header("X-Total-Count", strconv.Itoa(len(ws.Devices)))
	c.JSON(http.StatusOK, ws.Devices)
}

// CreateDevice handles POST /devices.
//
// Status Codes:
//   - 201 Created → JSON of created device, Location header
//   - 400 Bad Request → Invalid JSON or schema
//   - 409 Conflict → id already used, or stale If-Match
//   - 422 Unprocessable Entity → Validation failed
//   - 423 Locked → another mutation is in flight
//   - 500 Internal Server Error
func (h *DevicesHandler) CreateDevice(c *gin.Context) {
	var req dto.DeviceCreate
	if err := jsonx.ParseStrictJSONBody(c.Request, &req); err != nil {
		badRequest(c, err)
		return
	}
	if err := dto.Validate(&req); err != nil {
		fail(c, err)
		return
	}
	rev, err := ifMatch(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	ws, d, err := h.svc.CreateDevice(c.Request.Context(), mw.GetWorkspaceID(c), rev, req.ToDevice())
	if err != nil {
		fail(c, err)
		return
	}

	setRevision(c, ws)
	c.Header("Location", fmt.Sprintf("/api/devices/%s", d.ID))
	c.JSON(http.StatusCreated, d)
}

// GetDevice handles GET /devices/{id}.
//
// Status Codes:
//   - 200 OK → JSON of device
//   - 400 Bad Request → Invalid ID format
//   - 404 Not Found → Device not found
//   - 500 Internal Server Error
func (h *DevicesHandler) GetDevice(c *gin.Context) {
	ws, err := h.svc.Get(c.Request.Context(), mw.GetWorkspaceID(c))
	if err != nil {
		fail(c, err)
		return
	}
	d, ok := flow.FindDevice(ws.Devices, c.Param("id"))
	if !ok {
		fail(c, fmt.Errorf("device %q: %w", c.Param("id"), flow.ErrDeviceNotFound))
		return
	}
	setRevision(c, ws)
	c.JSON(http.StatusOK, d)
}

// ModifyDevice handles PATCH /devices/{id}.
//
// Status Codes:
//   - 200 OK → JSON of updated device
//   - 400 Bad Request → Invalid JSON, ID format or If-Match
//   - 404 Not Found → Device not found
//   - 409 Conflict → stale If-Match
//   - 422 Unprocessable Entity → null field, empty patch or negative capacity
//   - 423 Locked → another mutation is in flight
//   - 500 Internal Server Error
func (h *DevicesHandler) ModifyDevice(c *gin.Context) {
	var req dto.DeviceModify
	if err := jsonx.ParseStrictJSONBody(c.Request, &req); err != nil {
		badRequest(c, err)
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		fail(c, err)
		return
	}
	rev, err := ifMatch(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	ws, d, err := h.svc.UpdateDevice(c.Request.Context(), mw.GetWorkspaceID(c), rev, c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	setRevision(c, ws)
	c.JSON(http.StatusOK, d)
}

// DeleteDevice handles DELETE /devices/{id}.
//
// Behavior:
//   - Detaches the device from every connection, then prunes connections left without
//     a transmitter or receivers.
//
// Status Codes:
//   - 200 OK → {id, pruned_connections}
//   - 400 Bad Request → Invalid ID format or If-Match
//   - 404 Not Found → Device not found
//   - 409 Conflict → stale If-Match
//   - 423 Locked → another mutation is in flight
//   - 500 Internal Server Error
func (h *DevicesHandler) DeleteDevice(c *gin.Context) {
	rev, err := ifMatch(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	id := c.Param("id")
	ws, pruned, err := h.svc.DeleteDevice(c.Request.Context(), mw.GetWorkspaceID(c), rev, id)
	if err != nil {
		fail(c, err)
		return
	}
	if pruned == nil {
		pruned = []string{}
	}
	setRevision(c, ws)
	c.JSON(http.StatusOK, dto.DeviceDeleted{ID: id, PrunedConnections: pruned})
}
