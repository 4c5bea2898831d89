package plan

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/edirooss/flowplan/internal/domain/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const studioYAML = `
version: 1
devices:
  - id: console
    name: FOH Console
    tx_capacity: 8
    rx_capacity: 8
  - name: Stage Box
    tx_capacity: 4
    rx_capacity: 4
  - id: amp
    tx_capacity: 0
    rx_capacity: 1
connections:
  - transmitter: console
    receivers: [Stage Box, amp]
    channels: 6
  - id: talkback
    transmitter: Stage Box
    receivers: [console]
    mode: multicast
    group_size: 4
    note: talkback bus
`

func TestDecodeYAMLAndBuildWorkspace(t *testing.T) {
	doc, err := Decode(strings.NewReader(studioYAML), YAML)
	require.NoError(t, err)
	require.Len(t, doc.Devices, 3)

	ws, err := doc.Workspace("w1", time.Now())
	require.NoError(t, err)

	stage := ws.Devices[1]
	assert.NotEmpty(t, stage.ID, "missing ids are generated")
	assert.Equal(t, "Stage Box", stage.Name)

	require.Len(t, ws.Connections, 2)
	assert.Equal(t, []string{stage.ID, "amp"}, ws.Connections[0].Receivers)
	assert.Equal(t, flow.Unicast, ws.Connections[0].Mode)
	assert.Equal(t, stage.ID, ws.Connections[1].Transmitter)
	assert.Equal(t, flow.Multicast, ws.Connections[1].Mode)

	r := ws.Report()
	// console: 6ch unicast to 2 receivers => 2 bundles each => tx 4
	assert.Equal(t, 4, r.Devices[0].TxUsed)
	assert.Equal(t, 1, r.Devices[0].RxUsed)
	assert.True(t, r.Devices[2].RxOver) // amp receives 2 of 1
	assert.Equal(t, 1, r.OverCapacity)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode(strings.NewReader("version: 2\n"), YAML)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = Decode(strings.NewReader("devices: []\nbogus: 1\n"), YAML)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader(`{"devices":[],"extra":true}`), JSON)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader(""), YAML)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("{}"), Format("toml"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestResolve_AmbiguousNameAndBadMode(t *testing.T) {
	doc := Document{
		Devices: []Device{{ID: "a", Name: "Amp"}, {ID: "b", Name: "Amp"}, {ID: "c"}},
		Connections: []Connection{
			{Transmitter: "c", Receivers: []string{"Amp"}, Channels: 1},
		},
	}
	_, _, err := doc.Resolve()
	assert.ErrorIs(t, err, ErrAmbiguousName)
	assert.ErrorIs(t, err, flow.ErrInvalidConnection)

	doc.Connections = []Connection{{Transmitter: "c", Receivers: []string{"a"}, Mode: "broadcast"}}
	_, _, err = doc.Resolve()
	assert.ErrorIs(t, err, flow.ErrInvalidConnection)
}

func TestWorkspace_UnknownReferenceRejected(t *testing.T) {
	doc := Document{
		Devices:     []Device{{ID: "a"}},
		Connections: []Connection{{Transmitter: "a", Receivers: []string{"ghost"}, Channels: 1}},
	}
	_, err := doc.Workspace("w1", time.Now())
	assert.ErrorIs(t, err, flow.ErrDeviceNotFound)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	doc, err := Decode(strings.NewReader(studioYAML), YAML)
	require.NoError(t, err)
	ws, err := doc.Workspace("w1", time.Now())
	require.NoError(t, err)
	exported := FromWorkspace(ws)

	for _, f := range []Format{YAML, JSON} {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, f, exported))

		back, err := Decode(&buf, f)
		require.NoError(t, err, f)
		assert.Equal(t, exported, back, f)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": YAML, "yml": YAML, "YAML": YAML, "json": JSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	assert.Equal(t, JSON, FormatFromPath("plan.JSON"))
	assert.Equal(t, YAML, FormatFromPath("plan.yaml"))
}
