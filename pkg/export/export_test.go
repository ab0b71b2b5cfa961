package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"student_id", "risk_level"},
		Rows: []map[string]string{
			{"student_id": "s1", "risk_level": "critical"},
			{"student_id": "s2"},
		},
	}
}

func TestDatasetRecordsFollowHeaderOrder(t *testing.T) {
	records := sampleDataset().Records()
	require.Len(t, records, 2)
	assert.Equal(t, []string{"s1", "critical"}, records[0])
	assert.Equal(t, []string{"s2", ""}, records[1])
}

func TestCSVRender(t *testing.T) {
	payload, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "student_id,risk_level\ns1,critical\ns2,\n", string(payload))
}

func TestCSVRenderRequiresColumns(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFRenderProducesDocument(t *testing.T) {
	payload, err := NewPDFExporter().Render(sampleDataset(), "At-Risk Attendance Report")
	require.NoError(t, err)
	assert.True(t, len(payload) > 4)
	assert.Equal(t, "%PDF", string(payload[:4]))
}

func TestPDFRenderRequiresColumns(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "")
	assert.Error(t, err)
}
