package label

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateLabelID(t *testing.T) {
	id, err := GenerateLabelID()
	require.NoError(t, err)
	assert.True(t, IsValidLabelID(id))
	assert.False(t, IsValidLabelID("not_a_label_id"))
}

func TestContentHash(t *testing.T) {
	h := ComputeContentHash([]byte("hello"))
	assert.Len(t, h, 12)
	assert.True(t, IsValidContentHash(h))
}

func TestValueHashIdempotence(t *testing.T) {
	a := ComputeValueHash("123-45-6789", "SSN")
	b := ComputeValueHash("123456789", "SSN")
	assert.Equal(t, a, b)

	a = ComputeValueHash("John.Doe@Example.com", "EMAIL")
	b = ComputeValueHash(" john.doe@example.com ", "EMAIL")
	assert.Equal(t, a, b)
}

func TestLabelSetRoundTrip(t *testing.T) {
	ls, err := Create([]Label{
		{Type: "SSN", Confidence: 0.95, Detector: "checksum", ValueHash: ComputeValueHash("123-45-6789", "SSN"), Count: 1},
	}, []byte("file contents"), "openlabels:1.0.0", "")
	require.NoError(t, err)

	data, err := ls.ToJSON()
	require.NoError(t, err)

	roundTripped, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, ls.LabelID, roundTripped.LabelID)
	assert.Equal(t, ls.ContentHash, roundTripped.ContentHash)
	require.Len(t, roundTripped.Labels, 1)
	assert.Equal(t, "SSN", roundTripped.Labels[0].Type)
}

func TestFromJSONRejectsMalformed(t *testing.T) {
	_, err := FromJSON([]byte(`{"v":"1","id":"ol_abc","hash":"abc"}`))
	assert.Error(t, err)
}

func TestVirtualLabelPointer(t *testing.T) {
	p := VirtualLabelPointer{LabelID: "ol_7f3a9b2c4d5e", ContentHash: "e3b0c44298fc"}
	s := p.String()
	parsed, err := ParseVirtualLabelPointer(s)
	require.NoError(t, err)
	assert.Equal(t, p, parsed)
}
