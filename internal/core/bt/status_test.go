package bt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusSuccess.Valid())
	assert.True(t, StatusFailure.Valid())
	assert.True(t, StatusRunning.Valid())
	assert.False(t, Status(3).Valid())
	assert.False(t, Status(-1).Valid())
	assert.Equal(t, "Status(9)", Status(9).String())
}

func TestParseStatus(t *testing.T) {
	for _, st := range []Status{StatusSuccess, StatusFailure, StatusRunning} {
		got, err := ParseStatus(st.String())
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}

	got, err := ParseStatus(" RUNNING ")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, got)

	_, err = ParseStatus("maybe")
	assert.Error(t, err)
}

func TestStatusJSON(t *testing.T) {
	b, err := json.Marshal(map[string]Status{"s": StatusRunning})
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":"Running"}`, string(b))

	var out map[string]Status
	require.NoError(t, json.Unmarshal([]byte(`{"s":"failure"}`), &out))
	assert.Equal(t, StatusFailure, out["s"])

	_, err = json.Marshal(Status(42))
	assert.Error(t, err)
}
