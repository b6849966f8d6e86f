package domain

import "testing"

func TestCleanExecutiveName(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"María Soto - Ejecutiva", "María Soto"},
		{"Pedro Rojas (Ventas)", "Pedro Rojas"},
		{"  Ana Díaz  ", "Ana Díaz"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := CleanExecutiveName(tc.raw); got != tc.want {
			t.Fatalf("CleanExecutiveName(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestDeriveExecutives_UniqueAndSorted(t *testing.T) {
	records := []SaleRecord{
		{ExecutiveName: "Pedro Rojas (Ventas)"},
		{ExecutiveName: "María Soto - Ejecutiva"},
		{ExecutiveName: "Pedro Rojas"},
		{ExecutiveName: ""},
	}

	got := DeriveExecutives(records)

	want := []string{"María Soto", "Pedro Rojas"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestDeriveExecutives_IsPure(t *testing.T) {
	records := []SaleRecord{{ExecutiveName: "María Soto - Ejecutiva"}}

	first := DeriveExecutives(records)
	second := DeriveExecutives(records)

	if len(first) != 1 || len(second) != 1 || first[0] != second[0] {
		t.Fatalf("expected identical results, got %v and %v", first, second)
	}
	if records[0].ExecutiveName != "María Soto - Ejecutiva" {
		t.Fatal("input mutated")
	}
}
