package repo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/edirooss/flowplan/internal/domain/workspace"
	"github.com/edirooss/flowplan/internal/infrastructure/objectstore"
	"go.uber.org/zap"
)

// MemoryWorkspaceRepository keeps workspaces in process memory.
// Snapshots are immutable values, so stored entries are never aliased by callers.
type MemoryWorkspaceRepository struct {
	log   *zap.Logger
	store *objectstore.ObjectStore[workspace.Workspace]

	writeMu sync.Mutex // serializes compare-and-set in Save
}

// NewMemoryWorkspaceRepository returns a repository whose workspaces expire after ttl of
// inactivity (ttl <= 0 disables expiry).
func NewMemoryWorkspaceRepository(log *zap.Logger, ttl time.Duration) *MemoryWorkspaceRepository {
	log = log.Named("workspaces_mem")
	return &MemoryWorkspaceRepository{
		log:   log,
		store: objectstore.New[workspace.Workspace](log, ttl),
	}
}

func (r *MemoryWorkspaceRepository) Get(_ context.Context, id string) (workspace.Workspace, error) {
	ws, ok := r.store.Get(id)
	if !ok {
		return workspace.Workspace{}, ErrWorkspaceNotFound
	}
	return ws, nil
}

func (r *MemoryWorkspaceRepository) Save(_ context.Context, ws workspace.Workspace) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if cur, ok := r.store.Get(ws.ID); ok && cur.Revision >= ws.Revision {
		return fmt.Errorf("workspace %s rev %d (stored %d): %w", ws.ID, ws.Revision, cur.Revision, ErrStaleRevision)
	}
	r.store.Put(ws.ID, ws)
	return nil
}

func (r *MemoryWorkspaceRepository) Delete(_ context.Context, id string) error {
	if !r.store.Delete(id) {
		return ErrWorkspaceNotFound
	}
	return nil
}

func (r *MemoryWorkspaceRepository) Touch(_ context.Context, id string) error {
	if !r.store.Touch(id) {
		return ErrWorkspaceNotFound
	}
	return nil
}

// Sweep drops idle workspaces and returns their ids.
func (r *MemoryWorkspaceRepository) Sweep() []string {
	return r.store.Sweep()
}

// Len returns the number of stored workspaces.
func (r *MemoryWorkspaceRepository) Len() int {
	return r.store.Len()
}
