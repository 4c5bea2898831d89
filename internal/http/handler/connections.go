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

// ConnectionsHandler provides HTTP handlers for connections. Connections are immutable
// after creation: there is no PUT/PATCH.
//
// Supported operations:
//   - GET    /connections       → List connections
//   - POST   /connections       → Create a connection
//   - GET    /connections/{id}  → Retrieve a connection
//   - DELETE /connections/{id}  → Remove a connection
type ConnectionsHandler struct {
	log *zap.Logger
	svc *service.WorkspaceService
}

func NewConnectionsHandler(log *zap.Logger, svc *service.WorkspaceService) *ConnectionsHandler {
	return &ConnectionsHandler{log: log.Named("connections"), svc: svc}
}

// GetConnectionList handles GET /connections.
func (h *ConnectionsHandler) GetConnectionList(c *gin.Context) {
	ws, err := h.svc.Get(c.Request.Context(), mw.GetWorkspaceID(c))
	if err != nil {
		fail(c, err)
		return
	}
	setRevision(c, ws)
	c.Header("X-Total-Count", strconv.Itoa(len(ws.Connections)))
	c.JSON(http.StatusOK, ws.Connections)
}

// CreateConnection handles POST /connections.
//
// Status Codes:
//   - 201 Created → JSON of created connection, Location header
//   - 400 Bad Request → Invalid JSON or If-Match
//   - 409 Conflict → id already used, or stale If-Match
//   - 422 Unprocessable Entity → empty/duplicate receivers, unknown devices, self-receive
//   - 423 Locked → another mutation is in flight
//   - 500 Internal Server Error
func (h *ConnectionsHandler) CreateConnection(c *gin.Context) {
	var req dto.ConnectionCreate
	if err := jsonx.ParseStrictJSONBody(c.Request, &req); err != nil {
		badRequest(c, err)
		return
	}
	if err := dto.Validate(&req); err != nil {
		fail(c, err)
		return
	}
	conn, err := req.ToConnection()
	if err != nil {
		fail(c, err)
		return
	}
	rev, err := ifMatch(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	ws, conn, err := h.svc.CreateConnection(c.Request.Context(), mw.GetWorkspaceID(c), rev, conn)
	if err != nil {
		fail(c, err)
		return
	}
	setRevision(c, ws)
	c.Header("Location", fmt.Sprintf("/api/connections/%s", conn.ID))
	c.JSON(http.StatusCreated, conn)
}

// GetConnection handles GET /connections/{id}.
//
// Status Codes:
//   - 200 OK
//   - 400 Bad Request → Invalid ID format
//   - 404 Not Found
//   - 500 Internal Server Error
func (h *ConnectionsHandler) GetConnection(c *gin.Context) {
	ws, err := h.svc.Get(c.Request.Context(), mw.GetWorkspaceID(c))
	if err != nil {
		fail(c, err)
		return
	}
	conn, ok := flow.FindConnection(ws.Connections, c.Param("id"))
	if !ok {
		fail(c, fmt.Errorf("connection %q: %w", c.Param("id"), flow.ErrConnectionNotFound))
		return
	}
	setRevision(c, ws)
	c.JSON(http.StatusOK, conn)
}

// DeleteConnection handles DELETE /connections/{id}.
//
// Status Codes:
//   - 204 No Content
//   - 400 Bad Request → Invalid ID format or If-Match
//   - 404 Not Found
//   - 409 Conflict → stale If-Match
//   - 423 Locked → another mutation is in flight
//   - 500 Internal Server Error
func (h *ConnectionsHandler) DeleteConnection(c *gin.Context) {
	rev, err := ifMatch(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	ws, err := h.svc.DeleteConnection(c.Request.Context(), mw.GetWorkspaceID(c), rev, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	setRevision(c, ws)
	c.Status(http.StatusNoContent)
}
