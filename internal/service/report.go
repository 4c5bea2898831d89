package service

import (
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/edirooss/flowplan/internal/domain/flow/views"
	"github.com/edirooss/flowplan/internal/domain/workspace"
	"github.com/edirooss/flowplan/internal/infrastructure/objectstore"
	"github.com/edirooss/flowplan/internal/metrics"
	"go.uber.org/zap"
)

type ReportOptions struct {
	// IdleTTL drops cached reports of workspaces nobody has asked about for a while.
	// Default 30m.
	IdleTTL time.Duration
}

func (o *ReportOptions) setDefaults() {
	if o.IdleTTL <= 0 {
		o.IdleTTL = 30 * time.Minute
	}
}

// ReportResult lets the handler set headers/telemetry.
type ReportResult struct {
	Data        views.Report
	CacheHit    bool
	GeneratedAt time.Time // snapshot timestamp
}

type cachedReport struct {
	report views.Report
	genAt  time.Time
}

// ReportService memoizes usage reports per workspace revision.
// A revision is immutable, so a cached report is valid until the workspace moves on;
// concurrent computations for the same revision are coalesced.
type ReportService struct {
	log     *zap.Logger
	metrics *metrics.Registry

	cache *objectstore.ObjectStore[cachedReport]
	now   func() time.Time

	sg singleflight.Group
}

// NewReportService creates the cache. m may be nil.
// Reuse a single instance per process.
func NewReportService(log *zap.Logger, m *metrics.Registry, opts ReportOptions) *ReportService {
	log = log.Named("report_service")
	opts.setDefaults()

	return &ReportService{
		log:     log,
		metrics: m,
		cache:   objectstore.New[cachedReport](log, opts.IdleTTL),
		now:     time.Now,
	}
}

// Get returns the report for ws at its current revision.
func (s *ReportService) Get(ws workspace.Workspace) ReportResult {
	// Fast path: cached for this revision
	if res, ok := s.lookup(ws); ok {
		return res
	}

	// Slow path: singleflight per (workspace, revision)
	key := fmt.Sprintf("%s@%d", ws.ID, ws.Revision)
	v, _, _ := s.sg.Do(key, func() (any, error) {
		// Double-check after we won the flight
		if res, ok := s.lookup(ws); ok {
			return res, nil
		}

		start := s.now()
		r := ws.Report()
		if s.metrics != nil {
			s.metrics.RecordReport(r.OverCapacity, s.now().Sub(start))
		}

		// Publish unless a newer revision got there first
		if cur, ok := s.cache.Get(ws.ID); !ok || cur.report.Revision <= r.Revision {
			s.cache.Put(ws.ID, cachedReport{report: r, genAt: start})
		}
		return ReportResult{Data: r.Clone(), CacheHit: false, GeneratedAt: start}, nil
	})
	res := v.(ReportResult)
	s.observe(res.CacheHit)
	return res
}

func (s *ReportService) lookup(ws workspace.Workspace) (ReportResult, bool) {
	cur, ok := s.cache.Get(ws.ID)
	if !ok || cur.report.Revision != ws.Revision {
		return ReportResult{}, false
	}
	s.cache.Touch(ws.ID)
	return ReportResult{Data: cur.report.Clone(), CacheHit: true, GeneratedAt: cur.genAt}, true
}

func (s *ReportService) observe(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(hit)
	}
}

// Invalidate drops the cached report of workspace id.
func (s *ReportService) Invalidate(id string) {
	s.cache.Delete(id)
}

// Sweep drops reports idle for longer than IdleTTL.
func (s *ReportService) Sweep() int {
	return len(s.cache.Sweep())
}
