package dto

import (
	"errors"
	"fmt"

	"github.com/edirooss/flowplan/internal/domain/flow"
)

var errEmptyPatch = errors.New("patch sets no fields")

func wrapValidation(err error) error { return fmt.Errorf("%w: %w", ErrValidation, err) }

// ConnectionCreate is the body of POST /api/connections.
// Reference checks (unknown devices, self-receive) happen in the core.
type ConnectionCreate struct {
	ID          string   `json:"id" validate:"omitempty,max=64"`
	Transmitter string   `json:"transmitter" validate:"required"`
	Receivers   []string `json:"receivers" validate:"required,min=1,unique,dive,required"`
	Channels    int      `json:"channels" validate:"gte=0,lte=1024"` // flow.MaxChannels
	Mode        string   `json:"mode" validate:"omitempty,oneof=unicast multicast"` // default unicast
	GroupSize   int      `json:"group_size" validate:"omitempty,oneof=2 4 8 16"`
	Note        string   `json:"note" validate:"max=500"`
}

func (req *ConnectionCreate) ToConnection() (flow.Connection, error) {
	mode := flow.Unicast
	if req.Mode != "" {
		m, err := flow.ParseMode(req.Mode)
		if err != nil {
			return flow.Connection{}, wrapValidation(err)
		}
		mode = m
	}
	return flow.Connection{
		ID:          req.ID,
		Transmitter: req.Transmitter,
		Receivers:   append([]string(nil), req.Receivers...),
		Channels:    req.Channels,
		Mode:        mode,
		GroupSize:   req.GroupSize,
		Note:        req.Note,
	}, nil
}
