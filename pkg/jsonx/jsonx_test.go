package jsonx

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patch struct {
	Name Field[string] `json:"name"`
	Cap  Field[int]    `json:"cap"`
}

func TestField(t *testing.T) {
	var p patch
	require.NoError(t, json.Unmarshal([]byte(`{"name":null,"cap":4}`), &p))

	assert.True(t, p.Name.IsSet())
	assert.True(t, p.Name.IsNull())
	_, err := p.Name.NonNull("name")
	assert.Error(t, err)

	v, err := p.Cap.NonNull("cap")
	require.NoError(t, err)
	assert.Equal(t, 4, *v)

	var empty patch
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.False(t, empty.Cap.IsSet())
	v, err = empty.Cap.NonNull("cap")
	assert.NoError(t, err)
	assert.Nil(t, v)
}

func TestParseStrictJSONBody(t *testing.T) {
	cases := []struct {
		name string
		body string
		ok   bool
	}{
		{"valid", `{"cap":1}`, true},
		{"empty", `  `, false},
		{"trailing", `{"cap":1}{}`, false},
		{"unknown field", `{"nope":1}`, false},
		{"type mismatch", `{"cap":"x"}`, false},
		{"truncated", `{"cap":`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var p patch
			err := ParseStrictJSONBody(httptest.NewRequest("POST", "/", strings.NewReader(tc.body)), &p)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
