package domain

import (
	"testing"
	"time"
)

func datePtr(t *testing.T, raw string) *time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		t.Fatalf("bad test date %q: %v", raw, err)
	}
	return &parsed
}

func TestApplyFilter_DateWindow(t *testing.T) {
	records := []SaleRecord{
		{ID: "in", SaleDate: "2025-03-15"},
		{ID: "before", SaleDate: "2025-02-01"},
		{ID: "after", SaleDate: "2025-04-20"},
		{ID: "broken", SaleDate: "???"},
	}
	f := FilterState{DateStart: datePtr(t, "2025-03-01"), DateEnd: datePtr(t, "2025-03-31")}

	result := ApplyFilter(records, f)

	if len(result) != 1 || result[0].ID != "in" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestApplyFilter_UnparseableDateCountsWithoutWindow(t *testing.T) {
	records := []SaleRecord{{ID: "broken", SaleDate: "???"}}

	result := ApplyFilter(records, FilterState{})

	if len(result) != 1 {
		t.Fatal("record with unparseable date must survive an unwindowed filter")
	}
}

func TestApplyFilter_ExecutiveIgnoresRoleSuffix(t *testing.T) {
	records := []SaleRecord{
		{ID: "S-1", ExecutiveName: "María Soto - Ejecutiva"},
		{ID: "S-2", ExecutiveName: "Pedro Rojas (Ventas)"},
	}

	result := ApplyFilter(records, FilterState{Executive: "María Soto"})

	if len(result) != 1 || result[0].ID != "S-1" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestApplyFilter_QueryMatchesAccentInsensitive(t *testing.T) {
	records := []SaleRecord{
		{ID: "S-1", Name: "Carolina Muñoz"},
		{ID: "S-2", Name: "Diego Fuentes"},
	}

	result := ApplyFilter(records, FilterState{Query: "munoz"})

	if len(result) != 1 || result[0].ID != "S-1" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestApplyFilter_StageFilter(t *testing.T) {
	records := []SaleRecord{
		{ID: "S-1", Stage: StageContract},
		{ID: "S-2", Stage: StageValidation},
	}

	result := ApplyFilter(records, FilterState{Status: "Contract"})

	if len(result) != 1 || result[0].ID != "S-1" {
		t.Fatalf("unexpected result: %+v", result)
	}
}
