package asec

import (
	"testing"

	"github.com/invertedv/asec/df"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	spm := frame(t, 2, []string{"SPM_ID", "SPM_WEIGHT", "SPM_POOR", "SPM_NUMPER"}, map[string]any{
		"SPM_ID":     []int{1, 2},
		"SPM_WEIGHT": []float64{1, 3},
		"SPM_POOR":   []int{1, 0},
		"SPM_NUMPER": []int{2, 4},
	})
	tax := frame(t, 3, []string{"TAX_ID", "AGI"}, map[string]any{
		"TAX_ID": []int{1, 2, 3},
		"AGI":    []float64{100.5, 50, -0.5},
	})

	sm, e := Summarize(spm, tax)
	require.Nil(t, e)
	assert.Equal(t, 2, sm.SPMUnits)
	assert.Equal(t, 3, sm.TaxUnits)
	assert.InDelta(t, 0.25, sm.PovertyRate, 1e-12)
	assert.InDelta(t, 14.0, sm.Persons, 1e-12)
	assert.InDelta(t, 150.0, sm.TotalAGI, 1e-12)
	assert.Contains(t, sm.String(), "poverty rate: 0.2500")
}

func TestSummarize_Errors(t *testing.T) {
	tax := frame(t, 1, []string{"TAX_ID", "AGI"}, nil)

	spm := frame(t, 1, []string{"SPM_ID", "SPM_WEIGHT", "SPM_POOR"}, nil)
	_, e := Summarize(spm, tax)
	assert.True(t, df.IsMissingColumn(e))

	// all weights zero
	spm = frame(t, 2, []string{"SPM_WEIGHT", "SPM_POOR", "SPM_NUMPER"}, nil)
	_, e = Summarize(spm, tax)
	assert.NotNil(t, e)

	_, e = Summarize(nil, tax)
	assert.NotNil(t, e)
}
