package router

import (
	"net/http"
	"time"

	"github.com/edirooss/flowplan/internal/http/handler"
	mw "github.com/edirooss/flowplan/internal/http/middleware"
	"github.com/edirooss/flowplan/internal/metrics"
	"github.com/edirooss/flowplan/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Services are the process-wide singletons the routes depend on.
type Services struct {
	Workspaces *service.WorkspaceService
	Reports    *service.ReportService
	Sessions   *service.SessionService
	Metrics    *metrics.Registry
}

type Options struct {
	Dev           bool     // CORS for local front-end dev instead of proxy hardening
	ProxyAddr     string   // trusted reverse proxy outside dev
	CORSOrigins   []string // dev only
	MaxConcurrent int      // 0 disables the limit
	MaxBodyBytes  int64    // default 10MB
}

// New builds the Gin engine with middlewares and every route registered.
func New(log *zap.Logger, svcs Services, opts Options) *gin.Engine {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 10 << 20
	}

	r := gin.New()

	// Apply Gin middlewares
	{
		r.Use(gin.Recovery()) // Recovery first (outermost)
		r.Use(mw.RequestID()) // early so it's available everywhere

		if opts.Dev { // Enable CORS for local Vite dev
			r.Use(cors.New(cors.Config{
				AllowOrigins:     opts.CORSOrigins,
				AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
				AllowHeaders:     []string{"X-Request-ID", "X-Workspace-ID", "Content-Type", "If-Match"},
				ExposeHeaders:    []string{"X-Request-ID", "X-Workspace-ID", "X-Workspace-Revision", "ETag", "X-Total-Count", "X-Cache", "X-Report-Revision", "X-Report-Generated-At", "Location"},
				AllowCredentials: true, // Allow cookies in dev
				MaxAge:           12 * time.Hour,
			}))
		} else { // Behind a TLS-terminating proxy
			proxies := []string{"127.0.0.1"}
			if opts.ProxyAddr != "" {
				proxies = append(proxies, opts.ProxyAddr)
			}
			r.SetTrustedProxies(proxies)
			r.Use(secure.New(secure.Config{
				FrameDeny:          true,
				ContentTypeNosniff: true,
				SSLProxyHeaders: map[string]string{
					"X-Forwarded-Proto": "https", // Fix scheme for secure cookies
				},
			}))
		}

		if svcs.Metrics != nil {
			r.Use(mw.Metrics(svcs.Metrics))
		}
		r.Use(mw.AccessLog(log.Named("access")))

		if opts.MaxConcurrent > 0 {
			r.Use(mw.LimitConcurrentRequests(opts.MaxConcurrent))
		}
		r.Use(func(c *gin.Context) {
			// Hard cap on request bodies; plan imports are the largest legitimate payload.
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, opts.MaxBodyBytes)
			c.Next()
		})
	}

	// Register route handlers
	{
		r.GET("/api/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })
		if svcs.Metrics != nil {
			r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(svcs.Metrics.Prometheus(), promhttp.HandlerOpts{})))
		}

		api := r.Group("/api", svcs.Sessions.Middleware(), mw.ResolveWorkspace(svcs.Sessions))
		requireValidID := mw.RequireValidID()

		{
			wshndlr := handler.NewWorkspaceHandler(log, svcs.Workspaces, svcs.Reports)
			api.GET("/workspace", wshndlr.GetWorkspace)
			api.DELETE("/workspace", wshndlr.ResetWorkspace)
		}

		{
			devhndlr := handler.NewDevicesHandler(log, svcs.Workspaces)
			// --- Device collection ---
			api.GET("/devices", devhndlr.GetDeviceList)
			api.POST("/devices", devhndlr.CreateDevice)

			// --- Device resource ---
			api.GET("/devices/:id", requireValidID, devhndlr.GetDevice)
			api.PATCH("/devices/:id", requireValidID, devhndlr.ModifyDevice)
			api.DELETE("/devices/:id", requireValidID, devhndlr.DeleteDevice) // cascades
		}

		{
			connhndlr := handler.NewConnectionsHandler(log, svcs.Workspaces)
			api.GET("/connections", connhndlr.GetConnectionList)
			api.POST("/connections", connhndlr.CreateConnection)
			api.GET("/connections/:id", requireValidID, connhndlr.GetConnection)
			api.DELETE("/connections/:id", requireValidID, connhndlr.DeleteConnection)
		}

		{
			api.GET("/report", handler.NewReportHandler(log, svcs.Workspaces, svcs.Reports).GetReport)

			planhndlr := handler.NewPlanHandler(log, svcs.Workspaces, svcs.Reports)
			api.GET("/plan", planhndlr.ExportPlan)
			api.PUT("/plan", planhndlr.ImportPlan)
		}
	}

	return r
}
