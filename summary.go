package asec

import (
	"fmt"

	"github.com/invertedv/asec/df"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds headline figures of a year's unit tables.  Weighted figures use SPM_WEIGHT as stored.
type Summary struct {
	SPMUnits int
	// PovertyRate is the SPM_WEIGHT weighted mean of SPM_POOR
	PovertyRate float64
	// Persons is the SPM_WEIGHT weighted sum of SPM_NUMPER
	Persons float64

	TaxUnits int
	TotalAGI float64
}

// Summarize computes a Summary from the spm_unit and tax_unit tables.
func Summarize(spm, tax *df.DF) (*Summary, error) {
	if spm == nil || tax == nil {
		return nil, fmt.Errorf("nil table in Summarize")
	}

	var (
		weight, poor, numPer, agi []float64
		e                         error
	)

	if weight, e = floatColumn(spm, "SPM_WEIGHT"); e != nil {
		return nil, e
	}

	if poor, e = floatColumn(spm, "SPM_POOR"); e != nil {
		return nil, e
	}

	if numPer, e = floatColumn(spm, "SPM_NUMPER"); e != nil {
		return nil, e
	}

	if agi, e = floatColumn(tax, "AGI"); e != nil {
		return nil, e
	}

	sm := &Summary{SPMUnits: spm.RowCount(), TaxUnits: tax.RowCount(), TotalAGI: floats.Sum(agi)}

	if len(weight) == 0 || floats.Sum(weight) == 0 {
		return nil, fmt.Errorf("SPM_WEIGHT sums to zero")
	}

	sm.PovertyRate = stat.Mean(poor, weight)
	sm.Persons = floats.Dot(numPer, weight)

	return sm, nil
}

func (s *Summary) String() string {
	return fmt.Sprintf("spm units: %d\npoverty rate: %.4f\nweighted persons: %.0f\ntax units: %d\ntotal agi: %.0f",
		s.SPMUnits, s.PovertyRate, s.Persons, s.TaxUnits, s.TotalAGI)
}

func floatColumn(data *df.DF, name string) ([]float64, error) {
	col, e := data.Column(name)
	if e != nil {
		return nil, e
	}

	x, e := col.Data().AsFloat()
	if e != nil {
		return nil, fmt.Errorf("column %s: %w", name, e)
	}

	return x, nil
}
