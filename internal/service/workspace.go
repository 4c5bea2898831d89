package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/edirooss/flowplan/internal/domain/flow"
	"github.com/edirooss/flowplan/internal/domain/workspace"
	"github.com/edirooss/flowplan/internal/metrics"
	"github.com/edirooss/flowplan/internal/repo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// -----------------------------------------------------------------------------
// WorkspaceService
// -----------------------------------------------------------------------------
//
// Runtime model
//   • Single process, many concurrent requests, one workspace per session.
//   • Mutations on the SAME workspace are serialized via a per-ID claim; a second
//     mutation arriving while one is in flight fails fast with ErrLocked.
//   • A claim exists only while its mutation runs.
//   • Reads are lock-free and see the last saved snapshot.
//
// Contract
//   • Every mutation loads the current snapshot, applies a pure workspace
//     transform (revision+1) and saves it compare-and-set on the revision.
//   • A caller-supplied expected revision (If-Match) that does not equal the
//     current one fails with repo.ErrStaleRevision before anything is applied.
//   • Workspaces are created lazily on first access.

// WorkspaceService coordinates workspace snapshots and their repository.
type WorkspaceService struct {
	log     *zap.Logger
	repo    repo.WorkspaceRepository
	metrics *metrics.Registry

	now   func() time.Time
	newID func() string

	// ids with a mutation in flight; an entry lives only while its mutation runs
	mu       sync.Mutex
	inflight map[string]struct{}
}

// ErrLocked signals a concurrent mutation is already in flight for this workspace.
var ErrLocked = errors.New("workspace locked")

// NewWorkspaceService wires the repository. m may be nil.
func NewWorkspaceService(log *zap.Logger, r repo.WorkspaceRepository, m *metrics.Registry) *WorkspaceService {
	return &WorkspaceService{
		log:      log.Named("workspace_service"),
		repo:     r,
		metrics:  m,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
		inflight: make(map[string]struct{}),
	}
}

// tryLock claims the workspace for one mutation without blocking.
// The returned release drops the claim, so idle workspaces hold no lock state.
func (s *WorkspaceService) tryLock(id string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inflight[id]; busy {
		return func() {}, fmt.Errorf("workspace %s: %w", id, ErrLocked)
	}
	s.inflight[id] = struct{}{}
	if s.metrics != nil {
		s.metrics.WorkspacesInProgress.Inc()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.inflight, id)
			s.mu.Unlock()
			if s.metrics != nil {
				s.metrics.WorkspacesInProgress.Dec()
			}
		})
	}, nil
}

// Get returns the workspace, creating an empty one when the session has none yet.
// Reads extend the workspace's idle window.
func (s *WorkspaceService) Get(ctx context.Context, id string) (workspace.Workspace, error) {
	ws, err := s.repo.Get(ctx, id)
	if err == nil {
		if err := s.repo.Touch(ctx, id); err != nil && !errors.Is(err, repo.ErrWorkspaceNotFound) {
			s.log.Warn("touch failed", zap.String("workspace_id", id), zap.Error(err))
		}
		return ws, nil
	}
	if !errors.Is(err, repo.ErrWorkspaceNotFound) {
		return workspace.Workspace{}, fmt.Errorf("get workspace: %w", err)
	}

	ws = workspace.New(id, s.now())
	if err := s.repo.Save(ctx, ws); err != nil {
		if errors.Is(err, repo.ErrStaleRevision) {
			// Lost a creation race; the winner's snapshot is authoritative.
			return s.repo.Get(ctx, id)
		}
		return workspace.Workspace{}, fmt.Errorf("create workspace: %w", err)
	}
	if s.metrics != nil {
		s.metrics.WorkspacesCreated.Inc()
	}
	s.log.Debug("workspace created", zap.String("workspace_id", id))
	return ws, nil
}

// Reset replaces the workspace content with empty collections under a new revision.
func (s *WorkspaceService) Reset(ctx context.Context, id string, ifMatch int64) (workspace.Workspace, error) {
	return s.mutate(ctx, "workspace.reset", id, ifMatch, func(ws workspace.Workspace) (workspace.Workspace, error) {
		return ws.Replace(nil, nil, s.now())
	})
}

// Replace swaps the workspace content for the given collections (plan import).
func (s *WorkspaceService) Replace(ctx context.Context, id string, ifMatch int64, devs []flow.Device, conns []flow.Connection) (workspace.Workspace, error) {
	return s.mutate(ctx, "workspace.replace", id, ifMatch, func(ws workspace.Workspace) (workspace.Workspace, error) {
		return ws.Replace(devs, conns, s.now())
	})
}

// CreateDevice adds d, generating an id when d has none.
func (s *WorkspaceService) CreateDevice(ctx context.Context, id string, ifMatch int64, d flow.Device) (workspace.Workspace, flow.Device, error) {
	if d.ID == "" {
		d.ID = s.newID()
	}
	ws, err := s.mutate(ctx, "device.create", id, ifMatch, func(ws workspace.Workspace) (workspace.Workspace, error) {
		return ws.AddDevice(d, s.now())
	})
	if err != nil {
		return workspace.Workspace{}, flow.Device{}, err
	}
	return ws, d, nil
}

// UpdateDevice applies patch to device devID.
func (s *WorkspaceService) UpdateDevice(ctx context.Context, id string, ifMatch int64, devID string, patch flow.DevicePatch) (workspace.Workspace, flow.Device, error) {
	ws, err := s.mutate(ctx, "device.update", id, ifMatch, func(ws workspace.Workspace) (workspace.Workspace, error) {
		return ws.UpdateDevice(devID, patch, s.now())
	})
	if err != nil {
		return workspace.Workspace{}, flow.Device{}, err
	}
	d, _ := flow.FindDevice(ws.Devices, devID)
	return ws, d, nil
}

// DeleteDevice removes device devID with cascade and returns the pruned connection ids.
func (s *WorkspaceService) DeleteDevice(ctx context.Context, id string, ifMatch int64, devID string) (workspace.Workspace, []string, error) {
	var pruned []string
	ws, err := s.mutate(ctx, "device.delete", id, ifMatch, func(ws workspace.Workspace) (workspace.Workspace, error) {
		next, p, err := ws.RemoveDevice(devID, s.now())
		pruned = p
		return next, err
	})
	if err != nil {
		return workspace.Workspace{}, nil, err
	}
	if len(pruned) > 0 {
		s.log.Debug("cascade pruned connections",
			zap.String("workspace_id", id),
			zap.String("device_id", devID),
			zap.Strings("connections", pruned),
		)
	}
	return ws, pruned, nil
}

// CreateConnection adds c, generating an id when c has none.
func (s *WorkspaceService) CreateConnection(ctx context.Context, id string, ifMatch int64, c flow.Connection) (workspace.Workspace, flow.Connection, error) {
	if c.ID == "" {
		c.ID = s.newID()
	}
	ws, err := s.mutate(ctx, "connection.create", id, ifMatch, func(ws workspace.Workspace) (workspace.Workspace, error) {
		return ws.AddConnection(c, s.now())
	})
	if err != nil {
		return workspace.Workspace{}, flow.Connection{}, err
	}
	return ws, c, nil
}

// DeleteConnection removes connection connID.
func (s *WorkspaceService) DeleteConnection(ctx context.Context, id string, ifMatch int64, connID string) (workspace.Workspace, error) {
	return s.mutate(ctx, "connection.delete", id, ifMatch, func(ws workspace.Workspace) (workspace.Workspace, error) {
		return ws.RemoveConnection(connID, s.now())
	})
}

// mutate runs fn under the workspace claim and persists its result.
// ifMatch <= 0 means "any revision".
func (s *WorkspaceService) mutate(ctx context.Context, op, id string, ifMatch int64, fn func(workspace.Workspace) (workspace.Workspace, error)) (ws workspace.Workspace, err error) {
	defer func() { s.record(op, err) }()

	unlock, err := s.tryLock(id)
	if err != nil {
		return workspace.Workspace{}, err
	}
	defer unlock()

	cur, err := s.Get(ctx, id)
	if err != nil {
		return workspace.Workspace{}, err
	}
	if ifMatch > 0 && cur.Revision != ifMatch {
		return workspace.Workspace{}, fmt.Errorf("workspace %s at rev %d, expected %d: %w", id, cur.Revision, ifMatch, repo.ErrStaleRevision)
	}

	next, err := fn(cur)
	if err != nil {
		return workspace.Workspace{}, err
	}
	if err := s.repo.Save(ctx, next); err != nil {
		return workspace.Workspace{}, fmt.Errorf("save workspace: %w", err)
	}
	return next, nil
}

func (s *WorkspaceService) record(op string, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordMutation(op, Outcome(err))
}

// Outcome classifies a mutation error for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, flow.ErrInvalidDevice),
		errors.Is(err, flow.ErrInvalidConnection),
		errors.Is(err, flow.ErrDuplicateID),
		errors.Is(err, flow.ErrDeviceNotFound),
		errors.Is(err, flow.ErrConnectionNotFound):
		return "invalid"
	case errors.Is(err, ErrLocked), errors.Is(err, repo.ErrStaleRevision):
		return "conflict"
	default:
		return "error"
	}
}
