package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/edirooss/flowplan/internal/domain/flow"
	"github.com/edirooss/flowplan/internal/domain/workspace"
	"github.com/edirooss/flowplan/internal/http/dto"
	"github.com/edirooss/flowplan/internal/plan"
	"github.com/edirooss/flowplan/internal/repo"
	"github.com/edirooss/flowplan/internal/service"
	"github.com/gin-gonic/gin"
)

// statusOf maps domain and service errors to HTTP status codes.
// Validation is checked before not-found: an unknown device referenced by a new
// connection is a 422, while an unknown path id is a 404.
func statusOf(err error) int {
	switch {
	case errors.Is(err, dto.ErrValidation),
		errors.Is(err, flow.ErrInvalidDevice),
		errors.Is(err, flow.ErrInvalidConnection),
		errors.Is(err, plan.ErrUnsupportedVersion):
		return http.StatusUnprocessableEntity
	case errors.Is(err, flow.ErrDeviceNotFound),
		errors.Is(err, flow.ErrConnectionNotFound):
		return http.StatusNotFound
	case errors.Is(err, flow.ErrDuplicateID),
		errors.Is(err, repo.ErrStaleRevision):
		return http.StatusConflict
	case errors.Is(err, service.ErrLocked):
		return http.StatusLocked
	case errors.Is(err, plan.ErrUnknownFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail records err on the context and writes the mapped status.
func fail(c *gin.Context, err error) {
	c.Error(err)
	c.JSON(statusOf(err), gin.H{"message": err.Error()})
}

// badRequest writes a 400 for malformed requests (JSON shape, headers).
func badRequest(c *gin.Context, err error) {
	c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
}

// ifMatch parses an optional If-Match revision ("3", "\"3\"" or "W/\"3\"").
// Zero means no precondition.
func ifMatch(c *gin.Context) (int64, error) {
	v := strings.TrimSpace(c.GetHeader("If-Match"))
	if v == "" || v == "*" {
		return 0, nil
	}
	v = strings.Trim(strings.TrimPrefix(v, "W/"), `"`)
	rev, err := strconv.ParseInt(v, 10, 64)
	if err != nil || rev <= 0 {
		return 0, errors.New("If-Match must be a workspace revision")
	}
	return rev, nil
}

// setRevision exposes the workspace revision as ETag and X-Workspace-Revision.
func setRevision(c *gin.Context, ws workspace.Workspace) {
	rev := strconv.FormatInt(ws.Revision, 10)
	c.Header("ETag", `"`+rev+`"`)
	c.Header("X-Workspace-Revision", rev)
}
