package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Value
		wantErr bool
	}{
		{name: "bool_true", input: `true`, want: Boolean(true)},
		{name: "bool_false", input: `false`, want: Boolean(false)},
		{name: "number", input: `0.45`, want: Number(0.45)},
		{name: "integer", input: `500`, want: Number(500)},
		{name: "string_rejected", input: `"nope"`, wantErr: true},
		{name: "object_rejected", input: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Value
			err := json.Unmarshal([]byte(tt.input), &v)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestValueTruthy(t *testing.T) {
	assert.True(t, Boolean(true).Truthy())
	assert.False(t, Boolean(false).Truthy())
	assert.True(t, Number(0.1).Truthy())
	assert.False(t, Number(0).Truthy())
}

func TestValueFloat(t *testing.T) {
	assert.Equal(t, 1.0, Boolean(true).Float())
	assert.Equal(t, 0.0, Boolean(false).Float())
	assert.Equal(t, 42.5, Number(42.5).Float())
}

func TestValueMarshalRoundTrip(t *testing.T) {
	for _, v := range []Value{Boolean(true), Boolean(false), Number(0.45), Number(1200)} {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		var back Value
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, v, back)
	}
}
