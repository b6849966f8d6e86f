package validator

import "testing"

func TestIsValidRUT(t *testing.T) {
	valid := []string{
		"12.345.678-5",
		"12345678-5",
		"12345678 5",
	}
	for _, rut := range valid {
		if !IsValidRUT(rut) {
			t.Fatalf("expected %q to be valid", rut)
		}
	}

	invalid := []string{
		"",
		"5",
		"12.345.678-9",
		"abc.def.ghi-5",
	}
	for _, rut := range invalid {
		if IsValidRUT(rut) {
			t.Fatalf("expected %q to be invalid", rut)
		}
	}
}

func TestStructValidation_RUTTag(t *testing.T) {
	v := New()

	type payload struct {
		NationalID string `validate:"rut"`
	}

	if err := v.Struct(payload{NationalID: "12.345.678-5"}); err != nil {
		t.Fatalf("valid RUT rejected: %v", err)
	}
	if err := v.Struct(payload{NationalID: "12.345.678-0"}); err == nil {
		t.Fatal("invalid RUT accepted")
	}
}
