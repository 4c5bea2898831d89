package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edirooss/flowplan/internal/config"
	"github.com/edirooss/flowplan/internal/http/router"
	"github.com/edirooss/flowplan/internal/metrics"
	"github.com/edirooss/flowplan/internal/repo"
	"github.com/edirooss/flowplan/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

var configPath string

func init() {
	// Handle flags and version display
	handleFlags()
}

func main() {
	// Read env
	isDev := os.Getenv("ENV") == "dev"

	// Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Create Zap logger
	log := buildLogger(isDev)
	defer log.Sync()
	log = log.Named("main")

	// Create Gin router
	if !isDev {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = zap.NewStdLog(log.Named("gin")).Writer() // Configure Gin's logger to use Zap

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Services
	m := metrics.NewRegistry()

	var (
		wsrepo  repo.WorkspaceRepository
		memrepo *repo.MemoryWorkspaceRepository
	)
	if cfg.RedisAddr != "" {
		rdb := repo.NewRedisClient(ctx, log, cfg.RedisAddr, cfg.RedisDB)
		defer rdb.Close()
		wsrepo = repo.NewRedisWorkspaceRepository(log, rdb, cfg.SessionTTL)
	} else {
		memrepo = repo.NewMemoryWorkspaceRepository(log, cfg.SessionTTL)
		wsrepo = memrepo
	}

	wssvc := service.NewWorkspaceService(log, wsrepo, m)
	reportsvc := service.NewReportService(log, m, service.ReportOptions{IdleTTL: cfg.SessionTTL})
	sesssvc, err := service.NewSessionService(service.SessionOptions{
		Secret:    []byte(cfg.SessionSecret),
		MaxAge:    cfg.SessionTTL,
		Secure:    !isDev,
		RedisAddr: cfg.RedisAddr,
	})
	if err != nil {
		log.Fatal("session service creation failed", zap.Error(err))
	}

	r := router.New(log, router.Services{
		Workspaces: wssvc,
		Reports:    reportsvc,
		Sessions:   sesssvc,
		Metrics:    m,
	}, router.Options{
		Dev:           isDev,
		ProxyAddr:     cfg.ProxyAddr,
		CORSOrigins:   cfg.CORSOrigins,
		MaxConcurrent: cfg.MaxConcurrentRequests,
	})

	httpsrv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           r,
		ReadHeaderTimeout: 2 * time.Second,  // kills header-drip Slowloris
		ReadTimeout:       10 * time.Second, // full request read (incl. body)
		WriteTimeout:      15 * time.Second, // avoid forever-hangs on writes
		IdleTimeout:       60 * time.Second, // keep-alive cap
		MaxHeaderBytes:    1 << 20,          // 1MB cap
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("running HTTP server", zap.String("addr", httpsrv.Addr))
		if err := httpsrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down HTTP server")
		return httpsrv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		sweep(gctx, log, cfg.SweepInterval, memrepo, reportsvc, m)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
	log.Info("server closed")
}

// sweep periodically drops idle workspaces (memory store only; Redis expires keys itself)
// and idle cached reports.
func sweep(ctx context.Context, log *zap.Logger, every time.Duration, memrepo *repo.MemoryWorkspaceRepository,
	reportsvc *service.ReportService, m *metrics.Registry) {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		var expired []string
		if memrepo != nil {
			expired = memrepo.Sweep()
		}
		for _, id := range expired {
			reportsvc.Invalidate(id)
		}
		m.WorkspacesExpired.Add(float64(len(expired)))
		reports := reportsvc.Sweep()

		if len(expired) > 0 || reports > 0 {
			log.Debug("sweep", zap.Int("workspaces", len(expired)), zap.Int("reports", reports))
		}
	}
}

// handleFlags parses -config and prints build metadata and exits when -v/--version is provided.
func handleFlags() {
	flag.StringVar(&configPath, "config", "flowplan-server.yaml", "path to the YAML config file")
	v := flag.Bool("v", false, "print version and exit")
	flag.BoolVar(v, "version", false, "print version and exit")
	flag.Parse()

	if *v {
		fmt.Printf("flowplan-server %s (commit %s, built %s)\n", config.Version, config.GitCommit, config.BuildDate)
		os.Exit(0)
	}
}

// helpers

func buildLogger(isDev bool) *zap.Logger {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.TimeKey = ""
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.DisableStacktrace = true
	logConfig.DisableCaller = true
	if isDev {
		logConfig.Level.SetLevel(zap.DebugLevel)
	} else {
		logConfig.Level.SetLevel(zap.InfoLevel)
	}
	return zap.Must(logConfig.Build())
}
