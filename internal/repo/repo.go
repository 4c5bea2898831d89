package repo

import (
	"context"
	"errors"

	"github.com/edirooss/flowplan/internal/domain/workspace"
)

var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrStaleRevision     = errors.New("stale workspace revision")
)

// WorkspaceRepository stores workspace snapshots for the lifetime of their session.
//
// Save is compare-and-set on the revision: it fails with ErrStaleRevision unless the stored
// snapshot (if any) has a lower revision than the one being written.
// Stores expire idle workspaces; Touch extends the idle window without writing.
type WorkspaceRepository interface {
	Get(ctx context.Context, id string) (workspace.Workspace, error)
	Save(ctx context.Context, ws workspace.Workspace) error
	Delete(ctx context.Context, id string) error
	Touch(ctx context.Context, id string) error
}
