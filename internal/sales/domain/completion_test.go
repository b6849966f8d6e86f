package domain

import "testing"

func completeRecord() SaleRecord {
	return SaleRecord{
		ID:              "S-1",
		Name:            "Carolina Muñoz",
		NationalID:      "12.345.678-5",
		Phone:           "+56 9 8765 4321",
		DeliveryAddress: "Camino El Alba 123, Melipilla",
		HouseModel:      "Mediterránea 54",
		TotalValue:      48_500_000,
		SaleDate:        "2025-03-12",
		ExecutiveName:   "María Soto",
		RawStatus:       "Contrato firmado",
	}
}

func TestValidateCompletion_CompleteRecord(t *testing.T) {
	r := completeRecord()
	result := ValidateCompletion(&r)

	if !result.Complete {
		t.Fatalf("expected complete, missing: %v", result.Missing)
	}
	if len(result.Missing) != 0 {
		t.Fatalf("expected no missing fields, got %v", result.Missing)
	}
}

func TestValidateCompletion_NilRecordMissesEverything(t *testing.T) {
	result := ValidateCompletion(nil)

	if result.Complete {
		t.Fatal("nil record must not be complete")
	}
	if len(result.Missing) != 7 {
		t.Fatalf("expected 7 missing labels, got %d: %v", len(result.Missing), result.Missing)
	}
	if result.Missing[0] != LabelClientName {
		t.Fatalf("expected missing labels in declared order, first = %q", result.Missing[0])
	}
}

func TestValidateCompletion_ReportsMissingInOrder(t *testing.T) {
	r := completeRecord()
	r.Name = "   "
	r.TotalValue = 0

	result := ValidateCompletion(&r)

	if result.Complete {
		t.Fatal("expected incomplete")
	}
	want := []string{LabelClientName, LabelTotalValue}
	if len(result.Missing) != len(want) {
		t.Fatalf("missing = %v, want %v", result.Missing, want)
	}
	for i := range want {
		if result.Missing[i] != want[i] {
			t.Fatalf("missing[%d] = %q, want %q", i, result.Missing[i], want[i])
		}
	}
}

func TestValidateCompletion_UnparseablePhoneIsMissing(t *testing.T) {
	r := completeRecord()
	r.Phone = ""

	result := ValidateCompletion(&r)

	if result.Complete {
		t.Fatal("expected incomplete")
	}
	if result.Missing[0] != LabelPhone {
		t.Fatalf("expected %q missing, got %v", LabelPhone, result.Missing)
	}
}
