package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeColumnName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"  Vehicle   Asset Name ": "vehicle asset name",
		"Fuel Type\n(Primary)":    "fuel type (primary)",
		"VIN":                     "vin",
		"":                        "",
		"\tModel Year":            "model year",
	}
	for in, want := range cases {
		if got := NormalizeColumnName(in); got != want {
			t.Fatalf("NormalizeColumnName(%q)=%q want=%q", in, got, want)
		}
	}
}

func TestMapColumns_FirstMatchWins(t *testing.T) {
	t.Parallel()

	headers := []string{"", "Vehicle Asset Name", "Make", "Model", "Model Year", "VIN", "VIN (old)", "Fuel Type - Primary"}
	bound, missing := MapColumns(headers)
	if len(missing) != 0 {
		t.Fatalf("missing=%v", missing)
	}

	got := map[Column]int{}
	for col, b := range bound {
		got[col] = b.Index
	}
	want := map[Column]int{
		ColumnAssetName: 1,
		ColumnMake:      2,
		ColumnModel:     3,
		ColumnModelYear: 4,
		ColumnVIN:       5,
		ColumnFuelType:  7,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("bindings (-want +got):\n%s", diff)
	}
}

func TestMapColumns_ReportsMissingInRuleOrder(t *testing.T) {
	t.Parallel()

	_, missing := MapColumns([]string{"Make", "VIN"})
	want := []Column{ColumnAssetName, ColumnModelYear, ColumnModel, ColumnFuelType}
	if diff := cmp.Diff(want, missing); diff != "" {
		t.Fatalf("missing (-want +got):\n%s", diff)
	}
}

func TestBlankRowAndCells(t *testing.T) {
	t.Parallel()

	if !isBlankRow([]string{"", "  ", "\t"}) {
		t.Fatalf("expected blank row")
	}
	if isBlankRow([]string{"", "x"}) {
		t.Fatalf("expected non-blank row")
	}
	row := []string{" a ", "b"}
	if cellAt(row, 0) != "a" || rawCellAt(row, 0) != " a " || cellAt(row, 5) != "" || rawCellAt(row, -1) != "" {
		t.Fatalf("cell access mismatch")
	}
}
