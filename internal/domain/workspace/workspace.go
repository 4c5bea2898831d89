package workspace

import (
	"time"

	"github.com/edirooss/flowplan/internal/domain/flow"
	"github.com/edirooss/flowplan/internal/domain/flow/views"
)

// Workspace is the session-scoped owner of one device collection and one connection
// collection. Values are treated as immutable: every mutation returns a new Workspace with
// the revision bumped, leaving the receiver untouched.
type Workspace struct {
	ID          string            `json:"id"`
	Revision    int64             `json:"revision"`
	Devices     []flow.Device     `json:"devices"`
	Connections []flow.Connection `json:"connections"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// New returns an empty workspace at revision 1.
func New(id string, now time.Time) Workspace {
	return Workspace{
		ID:          id,
		Revision:    1,
		Devices:     []flow.Device{},
		Connections: []flow.Connection{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Meta is the summary projection of a workspace.
type Meta struct {
	ID          string    `json:"id"`
	Revision    int64     `json:"revision"`
	Devices     int       `json:"devices"`
	Connections int       `json:"connections"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (w Workspace) Meta() Meta {
	return Meta{
		ID:          w.ID,
		Revision:    w.Revision,
		Devices:     len(w.Devices),
		Connections: len(w.Connections),
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

// Report computes the usage report for the current revision.
func (w Workspace) Report() views.Report {
	r := flow.BuildReport(w.Devices, w.Connections)
	r.Revision = w.Revision
	return r
}

func (w Workspace) AddDevice(d flow.Device, now time.Time) (Workspace, error) {
	devs, err := flow.AddDevice(w.Devices, d)
	if err != nil {
		return Workspace{}, err
	}
	return w.next(devs, w.Connections, now), nil
}

func (w Workspace) UpdateDevice(id string, patch flow.DevicePatch, now time.Time) (Workspace, error) {
	devs, err := flow.UpdateDevice(w.Devices, id, patch)
	if err != nil {
		return Workspace{}, err
	}
	return w.next(devs, w.Connections, now), nil
}

// RemoveDevice deletes a device with cascade and reports the pruned connection ids.
func (w Workspace) RemoveDevice(id string, now time.Time) (Workspace, []string, error) {
	devs, conns, pruned, err := flow.RemoveDevice(w.Devices, w.Connections, id)
	if err != nil {
		return Workspace{}, nil, err
	}
	return w.next(devs, conns, now), pruned, nil
}

func (w Workspace) AddConnection(c flow.Connection, now time.Time) (Workspace, error) {
	conns, err := flow.AddConnection(w.Devices, w.Connections, c)
	if err != nil {
		return Workspace{}, err
	}
	return w.next(w.Devices, conns, now), nil
}

func (w Workspace) RemoveConnection(id string, now time.Time) (Workspace, error) {
	conns, err := flow.RemoveConnection(w.Connections, id)
	if err != nil {
		return Workspace{}, err
	}
	return w.next(w.Devices, conns, now), nil
}

// Replace swaps both collections wholesale (plan import, reset). Records are re-validated
// through the same transforms as interactive edits.
func (w Workspace) Replace(devs []flow.Device, conns []flow.Connection, now time.Time) (Workspace, error) {
	var (
		outDevs  = []flow.Device{}
		outConns = []flow.Connection{}
		err      error
	)
	for _, d := range devs {
		if outDevs, err = flow.AddDevice(outDevs, d); err != nil {
			return Workspace{}, err
		}
	}
	for _, c := range conns {
		if outConns, err = flow.AddConnection(outDevs, outConns, c); err != nil {
			return Workspace{}, err
		}
	}
	return w.next(outDevs, outConns, now), nil
}

func (w Workspace) next(devs []flow.Device, conns []flow.Connection, now time.Time) Workspace {
	return Workspace{
		ID:          w.ID,
		Revision:    w.Revision + 1,
		Devices:     devs,
		Connections: conns,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   now,
	}
}
