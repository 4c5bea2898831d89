package dto

import (
	"encoding/json"
	"testing"

	"github.com/edirooss/flowplan/internal/domain/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceCreate_Validate(t *testing.T) {
	var req DeviceCreate
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Console","tx_capacity":8}`), &req))

	err := Validate(&req)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "rx_capacity: field is required")

	require.NoError(t, json.Unmarshal([]byte(`{"rx_capacity":-1}`), &req))
	err = Validate(&req)
	assert.Contains(t, err.Error(), "rx_capacity: must be >= 0")

	require.NoError(t, json.Unmarshal([]byte(`{"rx_capacity":2}`), &req))
	require.NoError(t, Validate(&req))
	assert.Equal(t, flow.Device{Name: "Console", TxCapacity: 8, RxCapacity: 2}, req.ToDevice())
}

func TestDeviceModify_ToPatch(t *testing.T) {
	var req DeviceModify
	require.NoError(t, json.Unmarshal([]byte(`{"tx_capacity":4}`), &req))
	p, err := req.ToPatch()
	require.NoError(t, err)
	assert.Nil(t, p.Name)
	assert.Equal(t, 4, *p.TxCapacity)

	req = DeviceModify{}
	require.NoError(t, json.Unmarshal([]byte(`{"name":null}`), &req))
	_, err = req.ToPatch()
	assert.ErrorIs(t, err, ErrValidation)

	req = DeviceModify{}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &req))
	_, err = req.ToPatch()
	assert.ErrorIs(t, err, ErrValidation)
}

func TestConnectionCreate(t *testing.T) {
	cases := []struct {
		name string
		body string
		ok   bool
	}{
		{"unicast", `{"transmitter":"a","receivers":["b"],"channels":2}`, true},
		{"multicast", `{"transmitter":"a","receivers":["b","c"],"mode":"multicast","group_size":8}`, true},
		{"no receivers", `{"transmitter":"a","receivers":[]}`, false},
		{"duplicate receivers", `{"transmitter":"a","receivers":["b","b"],"channels":1}`, false},
		{"empty receiver", `{"transmitter":"a","receivers":[""],"channels":1}`, false},
		{"bad mode", `{"transmitter":"a","receivers":["b"],"mode":"broadcast"}`, false},
		{"bad group", `{"transmitter":"a","receivers":["b"],"group_size":3}`, false},
		{"no transmitter", `{"receivers":["b"]}`, false},
		{"max channels", `{"transmitter":"a","receivers":["b"],"channels":1024}`, true},
		{"too many channels", `{"transmitter":"a","receivers":["b"],"channels":1025}`, false},
		{"huge channels", `{"transmitter":"a","receivers":["b"],"channels":9223372036854775806}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req ConnectionCreate
			require.NoError(t, json.Unmarshal([]byte(tc.body), &req))
			err := Validate(&req)
			if !tc.ok {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			_, err = req.ToConnection()
			assert.NoError(t, err)
		})
	}
}
