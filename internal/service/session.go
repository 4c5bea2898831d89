package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the workspace session.
const SessionCookieName = "fpsid"

// sessionKeyWorkspaceID is the key used to store and retrieve the workspace ID in the session.
const sessionKeyWorkspaceID = "wid"

type SessionOptions struct {
	Secret    []byte        // cookie signing key; required
	MaxAge    time.Duration // default 8h
	Secure    bool          // mark cookie Secure (false in dev)
	RedisAddr string        // when set, session data lives in Redis instead of the cookie
}

// SessionService binds browser sessions to workspaces.
type SessionService struct {
	store         sessions.Store
	cookieOptions sessions.Options
}

// NewSessionService creates a cookie-backed session store, or a Redis-backed one when
// opts.RedisAddr is set.
func NewSessionService(opts SessionOptions) (*SessionService, error) {
	if len(opts.Secret) == 0 {
		return nil, fmt.Errorf("session secret is required")
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = 8 * time.Hour
	}

	var store sessions.Store
	if opts.RedisAddr != "" {
		rs, err := redis.NewStoreWithDB(10, "tcp", opts.RedisAddr, "", "0", opts.Secret)
		if err != nil {
			return nil, fmt.Errorf("new redis store: %w", err)
		}
		store = rs
	} else {
		store = cookie.NewStore(opts.Secret)
	}

	cookieOptions := sessions.Options{
		Path:     "/api",
		MaxAge:   int(opts.MaxAge / time.Second),
		Secure:   opts.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	store.Options(cookieOptions)

	return &SessionService{store: store, cookieOptions: cookieOptions}, nil
}

// Middleware attaches session handling.
func (s *SessionService) Middleware() gin.HandlerFunc {
	return sessions.Sessions(SessionCookieName, s.store)
}

// SetWorkspaceID stores the given workspace ID in the session and persists it.
func (s *SessionService) SetWorkspaceID(session sessions.Session, id string) error {
	session.Set(sessionKeyWorkspaceID, id)

	if err := session.Save(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// ClearSession clears all session data and expires the cookie.
func (s *SessionService) ClearSession(session sessions.Session) error {
	session.Clear()

	opts := s.cookieOptions
	opts.MaxAge = -1
	session.Options(opts)

	if err := session.Save(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// WorkspaceID returns the workspace ID from the given session.
// It reports false if no workspace is bound yet.
func (s *SessionService) WorkspaceID(session sessions.Session) (string, bool) {
	id, ok := session.Get(sessionKeyWorkspaceID).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
