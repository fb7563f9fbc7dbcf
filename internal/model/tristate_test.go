package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriStateJSONRoundTrip(t *testing.T) {
	for _, ts := range []TriState{Unknown, True, False} {
		data, err := json.Marshal(ts)
		require.NoError(t, err)

		var got TriState
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, ts, got)
	}
}

func TestFromBoolPtr(t *testing.T) {
	assert.Equal(t, Unknown, FromBoolPtr(nil))
	tv := true
	assert.Equal(t, True, FromBoolPtr(&tv))
	fv := false
	assert.Equal(t, False, FromBoolPtr(&fv))
}
