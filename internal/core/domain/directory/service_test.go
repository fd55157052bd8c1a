package directory

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingFields(t *testing.T) {
	req := RegisterServiceRequest{Name: "Bob", Type: "Gardening", Location: "X", Cost: " ", Description: "d"}
	assert.Equal(t, []string{"cost"}, req.MissingFields())

	req.Cost = "60"
	assert.Empty(t, req.MissingFields())

	assert.Len(t, (&RegisterServiceRequest{}).MissingFields(), 5)
}

func TestRecordBlobKeepsAvailability(t *testing.T) {
	rec := &ServiceRecord{ID: "id-1", Name: "Bob", Type: "Gardening", Location: "X", Cost: "60", Description: "d"}
	blob, err := rec.Marshal()
	require.NoError(t, err)
	assert.Contains(t, blob, `"availability":0`)

	back, err := UnmarshalRecord(blob)
	require.NoError(t, err)
	assert.Equal(t, rec, back)
}

func TestProviderPayloadStatus(t *testing.T) {
	var p ProviderPayload
	require.NoError(t, json.Unmarshal([]byte(`{"status":0,"name":"Bob"}`), &p))
	st, ok := p.Status()
	assert.True(t, ok)
	assert.Equal(t, StatusFound, st)

	_, ok = ProviderPayload{"name": "Bob"}.Status()
	assert.False(t, ok)

	st, ok = ProviderPayload{"status": "0"}.Status()
	assert.False(t, ok)
	assert.Zero(t, st)
}
