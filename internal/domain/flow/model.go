package flow

import (
	"encoding/json"
	"fmt"
)

// FlowsPerBundle is the number of audio channels carried by a single unicast flow.
const FlowsPerBundle = 4

// MaxChannels caps the channel count of a single connection.
const MaxChannels = 1024

// Mode selects how a connection consumes flows (unicast|multicast).
type Mode int

const (
	Unicast   Mode = iota // one dedicated flow bundle per receiver
	Multicast             // one shared transmit flow, one receive flow per receiver
)

func (m Mode) String() string {
	switch m {
	case Unicast:
		return "unicast"
	case Multicast:
		return "multicast"
	default:
		return "unknown"
	}
}

// ParseMode maps the wire name of a mode to its value.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "unicast":
		return Unicast, nil
	case "multicast":
		return Multicast, nil
	default:
		return 0, fmt.Errorf("invalid mode: %q", s)
	}
}

// MarshalJSON makes Mode serialize as string
func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON makes Mode deserialize from string
func (m *Mode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (m Mode) MarshalYAML() (any, error) { return m.String(), nil }

func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// GroupSizes is the fixed set of informational multicast group sizes.
// Zero means unspecified. The group size never affects flow counts.
var GroupSizes = []int{2, 4, 8, 16}

// ValidGroupSize reports whether n is zero or one of GroupSizes.
func ValidGroupSize(n int) bool {
	if n == 0 {
		return true
	}
	for _, s := range GroupSizes {
		if s == n {
			return true
		}
	}
	return false
}

// Device is a network audio endpoint with declared flow capacities.
type Device struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	TxCapacity int    `json:"tx_capacity" yaml:"tx_capacity"`
	RxCapacity int    `json:"rx_capacity" yaml:"rx_capacity"`
}

// Connection routes audio from one transmitter to one or more receivers.
type Connection struct {
	ID          string   `json:"id" yaml:"id"`
	Transmitter string   `json:"transmitter" yaml:"transmitter"`
	Receivers   []string `json:"receivers" yaml:"receivers"`
	Channels    int      `json:"channels" yaml:"channels"`     // unicast only
	Mode        Mode     `json:"mode" yaml:"mode"`             //
	GroupSize   int      `json:"group_size" yaml:"group_size"` // informational
	Note        string   `json:"note,omitempty" yaml:"note,omitempty"`
}

// Clone returns a copy of the connection that shares no memory with the receiver.
func (c Connection) Clone() Connection {
	c.Receivers = append([]string(nil), c.Receivers...)
	return c
}

// DevicePatch carries an in-place edit of a device. Nil fields are left unchanged.
type DevicePatch struct {
	Name       *string
	TxCapacity *int
	RxCapacity *int
}
