package middleware

import (
	"net/http"

	"github.com/edirooss/flowplan/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	WorkspaceIDKey    = "workspace_id"
	WorkspaceIDHeader = "X-Workspace-ID"
)

// ResolveWorkspace binds the request to a workspace id.
//
// Resolution order:
//  1. X-Workspace-ID header (must be a UUID; 400 otherwise). Scripted clients use this.
//  2. The workspace bound to the session cookie.
//  3. A fresh UUID, bound to the session for subsequent requests.
//
// The workspace itself is created lazily by the service. Requires the session middleware.
func ResolveWorkspace(sesssvc *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(WorkspaceIDHeader)
		if id != "" {
			if _, err := uuid.Parse(id); err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid " + WorkspaceIDHeader})
				return
			}
		} else {
			session := sessions.Default(c)
			var ok bool
			if id, ok = sesssvc.WorkspaceID(session); !ok {
				id = uuid.NewString()
				if err := sesssvc.SetWorkspaceID(session, id); err != nil {
					c.Error(err)
					c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "session unavailable"})
					return
				}
			}
		}

		c.Set(WorkspaceIDKey, id)
		c.Header(WorkspaceIDHeader, id)
		c.Next()
	}
}

// GetWorkspaceID returns the workspace bound by ResolveWorkspace.
func GetWorkspaceID(c *gin.Context) string {
	return c.GetString(WorkspaceIDKey)
}
