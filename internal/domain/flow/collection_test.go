package flow

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestAddDevice(t *testing.T) {
	devs, err := AddDevice(nil, Device{ID: "a", TxCapacity: 2, RxCapacity: 2})
	require.NoError(t, err)
	require.Len(t, devs, 1)

	_, err = AddDevice(devs, Device{ID: "a"})
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = AddDevice(devs, Device{ID: "b", TxCapacity: -1})
	assert.ErrorIs(t, err, ErrInvalidDevice)
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	_, err = AddDevice(devs, Device{ID: "has space"})
	assert.ErrorIs(t, err, ErrInvalidDevice)

	_, err = AddDevice(devs, Device{})
	assert.ErrorIs(t, err, ErrInvalidDevice)
}

func TestUpdateDevice_LeavesOtherRecordsAndInputUnchanged(t *testing.T) {
	devs := devices("a", "b")

	out, err := UpdateDevice(devs, "b", DevicePatch{TxCapacity: ptr(4), Name: ptr("Amp rack")})
	require.NoError(t, err)

	assert.Equal(t, devs[0], out[0])
	assert.Equal(t, Device{ID: "b", Name: "Amp rack", TxCapacity: 4, RxCapacity: 32}, out[1])
	assert.Equal(t, 32, devs[1].TxCapacity, "input slice must not be mutated")
}

func TestUpdateDevice_Errors(t *testing.T) {
	devs := devices("a")

	_, err := UpdateDevice(devs, "missing", DevicePatch{})
	assert.ErrorIs(t, err, ErrDeviceNotFound)

	_, err = UpdateDevice(devs, "a", DevicePatch{RxCapacity: ptr(-3)})
	assert.ErrorIs(t, err, ErrInvalidDevice)
}

func TestAddConnection_Validation(t *testing.T) {
	devs := devices("a", "b", "c")

	cases := []struct {
		name string
		conn Connection
	}{
		{"no receivers", Connection{ID: "x", Transmitter: "a", Channels: 2, Mode: Unicast}},
		{"no transmitter", Connection{ID: "x", Receivers: []string{"b"}, Channels: 2, Mode: Unicast}},
		{"unknown transmitter", Connection{ID: "x", Transmitter: "z", Receivers: []string{"b"}, Channels: 2, Mode: Unicast}},
		{"unknown receiver", Connection{ID: "x", Transmitter: "a", Receivers: []string{"z"}, Channels: 2, Mode: Unicast}},
		{"duplicate receiver", Connection{ID: "x", Transmitter: "a", Receivers: []string{"b", "b"}, Channels: 2, Mode: Unicast}},
		{"self receive", Connection{ID: "x", Transmitter: "a", Receivers: []string{"a"}, Channels: 2, Mode: Unicast}},
		{"unicast zero channels", Connection{ID: "x", Transmitter: "a", Receivers: []string{"b"}, Mode: Unicast}},
		{"too many channels", Connection{ID: "x", Transmitter: "a", Receivers: []string{"b"}, Channels: MaxChannels + 1, Mode: Unicast}},
		{"huge channels", Connection{ID: "x", Transmitter: "a", Receivers: []string{"b"}, Channels: math.MaxInt - 1, Mode: Unicast}},
		{"bad group size", Connection{ID: "x", Transmitter: "a", Receivers: []string{"b"}, GroupSize: 3, Mode: Multicast}},
		{"no id", Connection{Transmitter: "a", Receivers: []string{"b"}, Channels: 2, Mode: Unicast}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := AddConnection(devs, nil, tc.conn)
			assert.ErrorIs(t, err, ErrInvalidConnection)
		})
	}

	conns, err := AddConnection(devs, nil, Connection{ID: "x", Transmitter: "a", Receivers: []string{"b", "c"}, GroupSize: 8, Mode: Multicast})
	require.NoError(t, err)
	_, err = AddConnection(devs, conns, Connection{ID: "x", Transmitter: "b", Receivers: []string{"c"}, Channels: 1, Mode: Unicast})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestRemoveConnection(t *testing.T) {
	conns := []Connection{
		{ID: "c1", Transmitter: "a", Receivers: []string{"b"}},
		{ID: "c2", Transmitter: "b", Receivers: []string{"a"}},
	}

	out, err := RemoveConnection(conns, "c1")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "c2", out[0].ID)
	assert.Len(t, conns, 2)

	_, err = RemoveConnection(conns, "nope")
	assert.ErrorIs(t, err, ErrConnectionNotFound)
}

func TestDetachThenPrune(t *testing.T) {
	conns := []Connection{
		{ID: "only-b", Transmitter: "a", Receivers: []string{"b"}},
		{ID: "b-and-c", Transmitter: "a", Receivers: []string{"b", "c"}},
		{ID: "from-b", Transmitter: "b", Receivers: []string{"c"}},
		{ID: "unrelated", Transmitter: "a", Receivers: []string{"c"}},
	}

	detached := DetachDevice(conns, "b")
	require.Len(t, detached, 4)
	assert.Empty(t, detached[0].Receivers)
	assert.Equal(t, []string{"c"}, detached[1].Receivers)
	assert.Empty(t, detached[2].Transmitter)
	assert.Equal(t, []string{"b", "c"}, conns[1].Receivers, "input must not be mutated")

	kept, pruned := PruneConnections(detached)
	assert.Equal(t, []string{"only-b", "from-b"}, pruned)
	require.Len(t, kept, 2)
	assert.Equal(t, "b-and-c", kept[0].ID)
	assert.Equal(t, "unrelated", kept[1].ID)
}

func TestRemoveDevice(t *testing.T) {
	devs := devices("a", "b", "c")
	conns := []Connection{
		{ID: "c1", Transmitter: "a", Receivers: []string{"b"}, Channels: 2, Mode: Unicast},
		{ID: "c2", Transmitter: "a", Receivers: []string{"b", "c"}, Mode: Multicast},
	}

	outDevs, outConns, pruned, err := RemoveDevice(devs, conns, "b")
	require.NoError(t, err)

	assert.Equal(t, []string{"c1"}, pruned)
	assert.Len(t, outDevs, 2)
	require.Len(t, outConns, 1)
	assert.Equal(t, []string{"c"}, outConns[0].Receivers)

	u := ComputeUsage(outDevs, outConns)
	assert.Equal(t, 1, u.TxUsed["a"])
	assert.Equal(t, 1, u.RxUsed["c"])

	_, _, _, err = RemoveDevice(devs, conns, "nope")
	assert.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestModeJSON(t *testing.T) {
	b, err := Multicast.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `"multicast"`, string(b))

	var m Mode
	require.NoError(t, m.UnmarshalJSON([]byte(`"unicast"`)))
	assert.Equal(t, Unicast, m)
	assert.Error(t, m.UnmarshalJSON([]byte(`"broadcast"`)))
}

func TestValidID(t *testing.T) {
	for _, id := range []string{"a", "dev-1", "rack.2:out_A", "0b9e3f7a-5c0d-4b8e-9d43-f1c2a9e7d001"} {
		assert.True(t, ValidID(id), id)
	}
	for _, id := range []string{"", "-lead", "with space", "a/b", string(make([]byte, 65))} {
		assert.False(t, ValidID(id), id)
	}
}
