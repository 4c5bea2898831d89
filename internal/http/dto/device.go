package dto

import (
	"github.com/edirooss/flowplan/internal/domain/flow"
	"github.com/edirooss/flowplan/pkg/jsonx"
)

// DeviceCreate is the body of POST /api/devices.
type DeviceCreate struct {
	ID         string `json:"id" validate:"omitempty,max=64"` // optional; generated when empty
	Name       string `json:"name" validate:"max=100"`
	TxCapacity *int   `json:"tx_capacity" validate:"required,gte=0"`
	RxCapacity *int   `json:"rx_capacity" validate:"required,gte=0"`
}

func (req *DeviceCreate) ToDevice() flow.Device {
	return flow.Device{
		ID:         req.ID,
		Name:       req.Name,
		TxCapacity: *req.TxCapacity,
		RxCapacity: *req.RxCapacity,
	}
}

// DeviceModify is the body of PATCH /api/devices/{id}. Merge-patch semantics (RFC 7386):
// all fields optional, absent fields unchanged, null rejected.
type DeviceModify struct {
	Name       jsonx.Field[string] `json:"name"`        // optional; string
	TxCapacity jsonx.Field[int]    `json:"tx_capacity"` // optional; int >= 0
	RxCapacity jsonx.Field[int]    `json:"rx_capacity"` // optional; int >= 0
}

// ToPatch converts the request into a core patch. Errors wrap ErrValidation.
func (req *DeviceModify) ToPatch() (flow.DevicePatch, error) {
	var (
		p   flow.DevicePatch
		err error
	)
	if p.Name, err = req.Name.NonNull("name"); err != nil {
		return flow.DevicePatch{}, wrapValidation(err)
	}
	if p.TxCapacity, err = req.TxCapacity.NonNull("tx_capacity"); err != nil {
		return flow.DevicePatch{}, wrapValidation(err)
	}
	if p.RxCapacity, err = req.RxCapacity.NonNull("rx_capacity"); err != nil {
		return flow.DevicePatch{}, wrapValidation(err)
	}
	if p.Name == nil && p.TxCapacity == nil && p.RxCapacity == nil {
		return flow.DevicePatch{}, wrapValidation(errEmptyPatch)
	}
	return p, nil
}

// DeviceDeleted is the response of DELETE /api/devices/{id}.
type DeviceDeleted struct {
	ID                string   `json:"id"`
	PrunedConnections []string `json:"pruned_connections"`
}
