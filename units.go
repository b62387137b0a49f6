// Package asec builds the tables of the Census CPS Annual Social and Economic Supplement (ASEC).
//
// The person, family and household files of a year's public-use archive are stored as they are.  Two more
// tables are derived from the person rows: tax_unit, summing the tax fields of the members of each tax unit,
// and spm_unit, taking the Supplemental Poverty Measure fields from the first member of each SPM unit.
package asec

import (
	"fmt"

	"github.com/invertedv/asec/df"
)

// UnitSpec names the key of a unit and the person columns that make up its table.
// KeyAs names the leading key column of the table; empty means Key.
type UnitSpec struct {
	Key     string
	KeyAs   string
	Columns []string
}

var taxUnitColumns = []string{
	"ACTC_CRD",
	"AGI",
	"CTC_CRD",
	"EIT_CRED",
	"FED_RET",
	"FEDTAX_AC",
	"FEDTAX_BC",
	"MARG_TAX",
	"STATETAX_A",
	"STATETAX_B",
	"TAX_INC",
	"TAX_ID",
}

// SPM fields without their SPM_ prefix
var spmUnitFields = []string{
	"ACTC",
	"CAPHOUSESUB",
	"CAPWKCCXPNS",
	"CHILDCAREXPNS",
	"CHILDSUPPD",
	"EITC",
	"ENGVAL",
	"EQUIVSCALE",
	"FAMTYPE",
	"FEDTAX",
	"FEDTAXBC",
	"FICA",
	"GEOADJ",
	"HAGE",
	"HHISP",
	"HMARITALSTATUS",
	"HRACE",
	"MEDXPNS",
	"NUMADULTS",
	"NUMKIDS",
	"NUMPER",
	"POOR",
	"POVTHRESHOLD",
	"RESOURCES",
	"SCHLUNCH",
	"SNAPSUB",
	"STTAX",
	"TENMORTSTATUS",
	"TOTVAL",
	"WCOHABIT",
	"WEIGHT",
	"WFOSTER22",
	"WICVAL",
	"WKXPNS",
	"WNEWHEAD",
	"WNEWPARENT",
	"WUI_LT15",
	"ID",
}

const (
	spmPrefix = "SPM_"

	// names the distinct TAX_ID of each row of tax_unit, whose TAX_ID column is summed
	taxUnitKey = "TAX_UNIT_ID"
)

// TaxUnitSpec returns the key and summed columns of the tax_unit table.
func TaxUnitSpec() UnitSpec {
	return UnitSpec{Key: "TAX_ID", KeyAs: taxUnitKey, Columns: append([]string(nil), taxUnitColumns...)}
}

// SPMUnitSpec returns the key and columns of the spm_unit table.
func SPMUnitSpec() UnitSpec {
	spec := UnitSpec{Key: spmPrefix + "ID"}
	for _, f := range spmUnitFields {
		spec.Columns = append(spec.Columns, spmPrefix+f)
	}

	return spec
}

// TaxUnits sums spec.Columns over the persons of each tax unit.  The result has one row per distinct key,
// in ascending key order, with the key column, named spec.KeyAs, first.  With the default spec TAX_UNIT_ID
// holds the key and TAX_ID is summed like the other columns.
func TaxUnits(person *df.DF, spec UnitSpec) (*df.DF, error) {
	return units(person, spec, df.Sum)
}

// SPMUnits takes spec.Columns from the first person, in input order, of each SPM unit.  These fields are
// the same for every member of a unit in the survey; that is not checked here (see DF.NonUniform).
func SPMUnits(person *df.DF, spec UnitSpec) (*df.DF, error) {
	return units(person, spec, df.First)
}

func units(person *df.DF, spec UnitSpec, red df.Reducer) (*df.DF, error) {
	if person == nil {
		return nil, fmt.Errorf("nil person table")
	}

	if spec.Key == "" {
		return nil, fmt.Errorf("unit spec has no key")
	}

	as := spec.KeyAs
	if as == "" {
		as = spec.Key
	}

	return person.ByAs(spec.Key, as, red, spec.Columns...)
}
