package flow

import (
	"fmt"
	"slices"
)

// Collection transforms. Every function returns fresh slices and never mutates its inputs;
// callers re-derive usage from the result.

// AddDevice appends d after validating it and checking its id is unused.
func AddDevice(devs []Device, d Device) ([]Device, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if indexDevice(devs, d.ID) >= 0 {
		return nil, fmt.Errorf("device %q: %w", d.ID, ErrDuplicateID)
	}
	out := make([]Device, 0, len(devs)+1)
	out = append(out, devs...)
	return append(out, d), nil
}

// UpdateDevice applies patch to the device with the given id.
func UpdateDevice(devs []Device, id string, patch DevicePatch) ([]Device, error) {
	i := indexDevice(devs, id)
	if i < 0 {
		return nil, fmt.Errorf("device %q: %w", id, ErrDeviceNotFound)
	}

	d := devs[i]
	if patch.Name != nil {
		d.Name = *patch.Name
	}
	if patch.TxCapacity != nil {
		d.TxCapacity = *patch.TxCapacity
	}
	if patch.RxCapacity != nil {
		d.RxCapacity = *patch.RxCapacity
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	out := slices.Clone(devs)
	out[i] = d
	return out, nil
}

// AddConnection appends c after validating it against devs.
func AddConnection(devs []Device, conns []Connection, c Connection) ([]Connection, error) {
	if err := c.Validate(DeviceIDs(devs)); err != nil {
		return nil, err
	}
	if indexConnection(conns, c.ID) >= 0 {
		return nil, fmt.Errorf("connection %q: %w", c.ID, ErrDuplicateID)
	}
	out := cloneConnections(conns, 1)
	return append(out, c.Clone()), nil
}

// RemoveConnection drops the connection with the given id.
func RemoveConnection(conns []Connection, id string) ([]Connection, error) {
	i := indexConnection(conns, id)
	if i < 0 {
		return nil, fmt.Errorf("connection %q: %w", id, ErrConnectionNotFound)
	}
	out := cloneConnections(conns, 0)
	return slices.Delete(out, i, i+1), nil
}

// DetachDevice is the first cascade step of a device removal: it clears the device as
// transmitter and drops it from every receiver set. Connections may be left inert.
func DetachDevice(conns []Connection, id string) []Connection {
	out := make([]Connection, 0, len(conns))
	for _, c := range conns {
		c = c.Clone()
		if c.Transmitter == id {
			c.Transmitter = ""
		}
		c.Receivers = slices.DeleteFunc(c.Receivers, func(rx string) bool { return rx == id })
		out = append(out, c)
	}
	return out
}

// PruneConnections is the second cascade step: it deletes connections left without a
// transmitter or without receivers, returning the survivors and the pruned ids.
func PruneConnections(conns []Connection) (kept []Connection, pruned []string) {
	kept = make([]Connection, 0, len(conns))
	for _, c := range conns {
		if c.Transmitter == "" || len(c.Receivers) == 0 {
			pruned = append(pruned, c.ID)
			continue
		}
		kept = append(kept, c.Clone())
	}
	return kept, pruned
}

// RemoveDevice deletes a device and cascades to its connections.
// It returns the new collections and the ids of connections removed by the cascade.
func RemoveDevice(devs []Device, conns []Connection, id string) ([]Device, []Connection, []string, error) {
	i := indexDevice(devs, id)
	if i < 0 {
		return nil, nil, nil, fmt.Errorf("device %q: %w", id, ErrDeviceNotFound)
	}

	outDevs := slices.Delete(slices.Clone(devs), i, i+1)
	outConns, pruned := PruneConnections(DetachDevice(conns, id))
	return outDevs, outConns, pruned, nil
}

// FindDevice returns the device with the given id.
func FindDevice(devs []Device, id string) (Device, bool) {
	if i := indexDevice(devs, id); i >= 0 {
		return devs[i], true
	}
	return Device{}, false
}

// FindConnection returns a copy of the connection with the given id.
func FindConnection(conns []Connection, id string) (Connection, bool) {
	if i := indexConnection(conns, id); i >= 0 {
		return conns[i].Clone(), true
	}
	return Connection{}, false
}

// --- helpers ---

func indexDevice(devs []Device, id string) int {
	return slices.IndexFunc(devs, func(d Device) bool { return d.ID == id })
}

func indexConnection(conns []Connection, id string) int {
	return slices.IndexFunc(conns, func(c Connection) bool { return c.ID == id })
}

func cloneConnections(conns []Connection, extra int) []Connection {
	out := make([]Connection, len(conns), len(conns)+extra)
	for i, c := range conns {
		out[i] = c.Clone()
	}
	return out
}
