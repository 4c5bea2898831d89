package flow

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrDeviceNotFound     = errors.New("device not found")
	ErrConnectionNotFound = errors.New("connection not found")
	ErrDuplicateID        = errors.New("duplicate id")

	ErrInvalidDevice     = errors.New("invalid device")
	ErrInvalidCapacity   = errors.New("capacity must be non-negative")
	ErrInvalidConnection = errors.New("invalid connection")
)

const (
	maxNameLen = 100
	maxNoteLen = 500
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]{0,63}$`)

// ValidID reports whether s is usable as a device or connection id
// (1-64 chars, alphanumeric first, then alphanumerics or . _ : -).
func ValidID(s string) bool { return idPattern.MatchString(s) }

// Validate checks the device's own fields (id, name, capacities).
func (d *Device) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidDevice)
	}
	if !ValidID(d.ID) {
		return fmt.Errorf("%w: malformed id %q", ErrInvalidDevice, d.ID)
	}
	if len(d.Name) > maxNameLen {
		return fmt.Errorf("%w: name must be at most %d characters", ErrInvalidDevice, maxNameLen)
	}
	if d.TxCapacity < 0 {
		return fmt.Errorf("%w: tx_capacity: %w", ErrInvalidDevice, ErrInvalidCapacity)
	}
	if d.RxCapacity < 0 {
		return fmt.Errorf("%w: rx_capacity: %w", ErrInvalidDevice, ErrInvalidCapacity)
	}
	return nil
}

// Validate checks the connection against the set of known device ids.
//
// Rules:
//   - transmitter set and known
//   - at least one receiver; receivers unique, known and distinct from the transmitter
//   - unicast requires channels >= 1; channels in [0, MaxChannels]
//   - group size is 0 or one of GroupSizes
func (c *Connection) Validate(known map[string]struct{}) error {
	if c.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidConnection)
	}
	if !ValidID(c.ID) {
		return fmt.Errorf("%w: malformed id %q", ErrInvalidConnection, c.ID)
	}
	if c.Transmitter == "" {
		return fmt.Errorf("%w: transmitter is required", ErrInvalidConnection)
	}
	if _, ok := known[c.Transmitter]; !ok {
		return fmt.Errorf("%w: transmitter %q: %w", ErrInvalidConnection, c.Transmitter, ErrDeviceNotFound)
	}
	if len(c.Receivers) == 0 {
		return fmt.Errorf("%w: at least one receiver is required", ErrInvalidConnection)
	}

	seen := make(map[string]struct{}, len(c.Receivers))
	var dups []string
	for _, rx := range c.Receivers {
		if rx == c.Transmitter {
			return fmt.Errorf("%w: transmitter %q cannot receive its own connection", ErrInvalidConnection, rx)
		}
		if _, ok := known[rx]; !ok {
			return fmt.Errorf("%w: receiver %q: %w", ErrInvalidConnection, rx, ErrDeviceNotFound)
		}
		if _, ok := seen[rx]; ok {
			dups = append(dups, rx)
			continue
		}
		seen[rx] = struct{}{}
	}
	if len(dups) > 0 {
		return fmt.Errorf("%w: duplicate receivers [%s]", ErrInvalidConnection, strings.Join(dups, ", "))
	}

	if c.Channels < 0 {
		return fmt.Errorf("%w: channels must be non-negative", ErrInvalidConnection)
	}
	if c.Channels > MaxChannels {
		return fmt.Errorf("%w: channels must be at most %d", ErrInvalidConnection, MaxChannels)
	}
	if c.Mode == Unicast && c.Channels < 1 {
		return fmt.Errorf("%w: unicast connections need at least 1 channel", ErrInvalidConnection)
	}
	if c.Mode != Unicast && c.Mode != Multicast {
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidConnection, c.Mode)
	}
	if !ValidGroupSize(c.GroupSize) {
		return fmt.Errorf("%w: group_size must be one of %v", ErrInvalidConnection, GroupSizes)
	}
	if len(c.Note) > maxNoteLen {
		return fmt.Errorf("%w: note must be at most %d characters", ErrInvalidConnection, maxNoteLen)
	}
	return nil
}

// DeviceIDs indexes the ids of devs.
func DeviceIDs(devs []Device) map[string]struct{} {
	out := make(map[string]struct{}, len(devs))
	for _, d := range devs {
		out[d.ID] = struct{}{}
	}
	return out
}
