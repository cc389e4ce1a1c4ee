package vin

import (
	"testing"

	"vinaudit/internal/model"
)

func TestNormalize_Cases(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want string
		tag  model.Correction
	}{
		{"clean", "1FTFW1ET5DFC10312", "1FTFW1ET5DFC10312", model.CorrectionNone},
		{"spaces", "1G1 ZB5ST", "1G1ZB5ST", model.CorrectionSpacesRemoved},
		{"tabs and newlines", " 1G1\tZB5\nST ", "1G1ZB5ST", model.CorrectionSpacesRemoved},
		{"q upper and lower", "1Q2q3", "10203", model.CorrectionQToZero},
		{"o replaced", "1FOo5", "1F005", model.CorrectionOToZero},
		{"i replaced", "1Ii5", "1115", model.CorrectionIToOne},
		{"last tag wins", "1G1 Q O I", "1G1001", model.CorrectionIToOne},
		{"spaces then q", "1G1 Q5", "1G105", model.CorrectionQToZero},
		{"unknown exempt from O", "VINUNKNOWNO1", "V1NUNKNOWNO1", model.CorrectionIToOne},
		{"unknown lowercase", "unknown", "unknown", model.CorrectionNone},
		{"empty", "", "", model.CorrectionNone},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Normalize(tc.raw)
			if got.Value != tc.want {
				t.Fatalf("Normalize(%q).Value=%q, want %q", tc.raw, got.Value, tc.want)
			}
			if got.Correction != tc.tag {
				t.Fatalf("Normalize(%q).Correction=%q, want %q", tc.raw, got.Correction, tc.tag)
			}
		})
	}
}

func TestNormalize_UnknownKeepsLetterO(t *testing.T) {
	t.Parallel()

	got := Normalize("VINUNKNOWNO1")
	for _, r := range got.Value {
		if r == '0' {
			t.Fatalf("unexpected O substitution in %q", got.Value)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"1G1 ZB5ST",
		"1q2Q3 o i",
		"VINUNKNOWNO1",
		"example vin",
		"WDB 9066331S 123456",
		"  ",
		"ÖQI unknown",
		"1HGCM82633A004352",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once.Value)
		if once.Value != twice.Value {
			t.Fatalf("not idempotent for %q: %q -> %q", in, once.Value, twice.Value)
		}
		if twice.Correction != model.CorrectionNone {
			t.Fatalf("second pass on %q applied %q", once.Value, twice.Correction)
		}
	}
}

func TestCorrection_Label(t *testing.T) {
	t.Parallel()

	if got := model.CorrectionNone.Label(); got != "NO" {
		t.Fatalf("none label=%q", got)
	}
	if got := model.CorrectionQToZero.Label(); got != "YES: Replaced 'Q' with '0'" {
		t.Fatalf("Q label=%q", got)
	}
}
