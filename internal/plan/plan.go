// Package plan reads and writes plan documents: a portable YAML or JSON rendition of a
// workspace's devices and connections.
package plan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/edirooss/flowplan/internal/domain/flow"
	"github.com/edirooss/flowplan/internal/domain/workspace"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// CurrentVersion is the document schema version written by Encode.
const CurrentVersion = 1

var (
	ErrUnknownFormat      = errors.New("unknown plan format")
	ErrUnsupportedVersion = errors.New("unsupported plan version")
	ErrAmbiguousName      = errors.New("ambiguous device name")
)

// Format selects the document encoding (yaml|json).
type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
)

// ParseFormat maps a format name to its value. Empty means YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "yaml", "yml":
		return YAML, nil
	case "json":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromPath guesses the format from a file extension, defaulting to YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSON
	}
	return YAML
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == JSON {
		return "application/json"
	}
	return "application/yaml"
}

// Document is a serialized plan.
type Document struct {
	Version     int          `yaml:"version" json:"version"`
	Devices     []Device     `yaml:"devices" json:"devices"`
	Connections []Connection `yaml:"connections" json:"connections"`
}

type Device struct {
	ID         string `yaml:"id,omitempty" json:"id,omitempty"`
	Name       string `yaml:"name,omitempty" json:"name,omitempty"`
	TxCapacity int    `yaml:"tx_capacity" json:"tx_capacity"`
	RxCapacity int    `yaml:"rx_capacity" json:"rx_capacity"`
}

// Connection references devices by id or by unique name.
type Connection struct {
	ID          string   `yaml:"id,omitempty" json:"id,omitempty"`
	Transmitter string   `yaml:"transmitter" json:"transmitter"`
	Receivers   []string `yaml:"receivers" json:"receivers"`
	Channels    int      `yaml:"channels,omitempty" json:"channels,omitempty"`
	Mode        string   `yaml:"mode,omitempty" json:"mode,omitempty"` // default unicast
	GroupSize   int      `yaml:"group_size,omitempty" json:"group_size,omitempty"`
	Note        string   `yaml:"note,omitempty" json:"note,omitempty"`
}

// newID generates ids for records that arrive without one.
var newID = uuid.NewString

// Decode reads one document. Unknown fields are rejected in both formats.
func Decode(r io.Reader, f Format) (Document, error) {
	var doc Document
	switch f {
	case JSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return Document{}, fmt.Errorf("decode json: %w", err)
		}
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return Document{}, fmt.Errorf("decode yaml: empty document")
			}
			return Document{}, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return Document{}, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}

	if doc.Version == 0 {
		doc.Version = CurrentVersion
	}
	if doc.Version != CurrentVersion {
		return Document{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}
	return doc, nil
}

// Encode writes doc in format f.
func Encode(w io.Writer, f Format, doc Document) error {
	if doc.Version == 0 {
		doc.Version = CurrentVersion
	}
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Resolve turns the document into core records: it assigns missing ids, maps device
// names to ids and parses modes. Invariants are left to the core transforms.
func (doc Document) Resolve() ([]flow.Device, []flow.Connection, error) {
	devs := make([]flow.Device, 0, len(doc.Devices))
	byID := make(map[string]struct{}, len(doc.Devices))
	byName := make(map[string][]string, len(doc.Devices))

	for _, d := range doc.Devices {
		if d.ID == "" {
			d.ID = newID()
		}
		devs = append(devs, flow.Device{ID: d.ID, Name: d.Name, TxCapacity: d.TxCapacity, RxCapacity: d.RxCapacity})
		byID[d.ID] = struct{}{}
		if d.Name != "" {
			byName[d.Name] = append(byName[d.Name], d.ID)
		}
	}

	ref := func(s string) (string, error) {
		if _, ok := byID[s]; ok {
			return s, nil
		}
		switch ids := byName[s]; len(ids) {
		case 0:
			return s, nil // left for the core to reject as unknown
		case 1:
			return ids[0], nil
		default:
			return "", fmt.Errorf("%w: %w: %q matches %d devices", flow.ErrInvalidConnection, ErrAmbiguousName, s, len(ids))
		}
	}

	conns := make([]flow.Connection, 0, len(doc.Connections))
	for i, c := range doc.Connections {
		mode := flow.Unicast
		if c.Mode != "" {
			m, err := flow.ParseMode(c.Mode)
			if err != nil {
				return nil, nil, fmt.Errorf("connection #%d: %w: %w", i, flow.ErrInvalidConnection, err)
			}
			mode = m
		}

		tx, err := ref(c.Transmitter)
		if err != nil {
			return nil, nil, fmt.Errorf("connection #%d transmitter: %w", i, err)
		}
		rxs := make([]string, 0, len(c.Receivers))
		for _, r := range c.Receivers {
			id, err := ref(r)
			if err != nil {
				return nil, nil, fmt.Errorf("connection #%d receiver: %w", i, err)
			}
			rxs = append(rxs, id)
		}

		id := c.ID
		if id == "" {
			id = newID()
		}
		conns = append(conns, flow.Connection{
			ID:          id,
			Transmitter: tx,
			Receivers:   rxs,
			Channels:    c.Channels,
			Mode:        mode,
			GroupSize:   c.GroupSize,
			Note:        c.Note,
		})
	}
	return devs, conns, nil
}

// Workspace builds a validated workspace from the document.
func (doc Document) Workspace(id string, now time.Time) (workspace.Workspace, error) {
	devs, conns, err := doc.Resolve()
	if err != nil {
		return workspace.Workspace{}, err
	}
	return workspace.New(id, now).Replace(devs, conns, now)
}

// FromWorkspace exports ws. Connections reference devices by id.
func FromWorkspace(ws workspace.Workspace) Document {
	doc := Document{
		Version:     CurrentVersion,
		Devices:     make([]Device, 0, len(ws.Devices)),
		Connections: make([]Connection, 0, len(ws.Connections)),
	}
	for _, d := range ws.Devices {
		doc.Devices = append(doc.Devices, Device{ID: d.ID, Name: d.Name, TxCapacity: d.TxCapacity, RxCapacity: d.RxCapacity})
	}
	for _, c := range ws.Connections {
		doc.Connections = append(doc.Connections, Connection{
			ID:          c.ID,
			Transmitter: c.Transmitter,
			Receivers:   append([]string(nil), c.Receivers...),
			Channels:    c.Channels,
			Mode:        c.Mode.String(),
			GroupSize:   c.GroupSize,
			Note:        c.Note,
		})
	}
	return doc
}
