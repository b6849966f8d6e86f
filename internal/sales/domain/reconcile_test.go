package domain

import "testing"

func strPtr(s string) *string { return &s }

func TestReconcile_FiltersTombstonedRecords(t *testing.T) {
	feed := []SaleRecord{
		{ID: "S-1", RawStatus: "Entrega OK"},
		{ID: "S-2", RawStatus: "En validación"},
		{ID: "S-3", RawStatus: "Contrato firmado"},
	}
	deleted := map[string]struct{}{"S-2": {}}

	result := Reconcile(NewClassifier(), feed, nil, func(id string) bool {
		_, ok := deleted[id]
		return ok
	})

	if len(result) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result))
	}
	for _, r := range result {
		if r.ID == "S-2" {
			t.Fatal("tombstoned record survived reconciliation")
		}
	}
}

func TestReconcile_EditOverlayWins(t *testing.T) {
	feed := []SaleRecord{
		{ID: "S-1", Name: "Juan Pérez", Phone: "912345678", RawStatus: "Pendiente"},
	}
	edits := map[string]Edit{
		"S-1": {Name: strPtr("Juan Pérez Soto"), RawStatus: strPtr("Contrato firmado")},
	}

	result := Reconcile(NewClassifier(), feed, edits, nil)

	if len(result) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result))
	}
	got := result[0]
	if got.Name != "Juan Pérez Soto" {
		t.Fatalf("edited name lost: %q", got.Name)
	}
	if got.Phone != "912345678" {
		t.Fatalf("unedited field changed: %q", got.Phone)
	}
	// Stage derives from the edited status, not the CRM one.
	if got.Stage != StageContract {
		t.Fatalf("stage = %s, want %s", got.Stage, StageContract)
	}
}

func TestReconcile_NeverMutatesFeed(t *testing.T) {
	feed := []SaleRecord{{ID: "S-1", Name: "Original", RawStatus: "Pendiente"}}
	edits := map[string]Edit{"S-1": {Name: strPtr("Editado")}}

	_ = Reconcile(NewClassifier(), feed, edits, nil)

	if feed[0].Name != "Original" {
		t.Fatalf("input feed mutated: %q", feed[0].Name)
	}
	if feed[0].Stage != "" {
		t.Fatalf("input feed stage mutated: %q", feed[0].Stage)
	}
}

func TestSortBySaleDateDesc_UnparseableDatesSink(t *testing.T) {
	records := []SaleRecord{
		{ID: "bad", SaleDate: "no es fecha"},
		{ID: "old", SaleDate: "2024-01-15"},
		{ID: "new", SaleDate: "2025-06-30"},
	}

	sorted := SortBySaleDateDesc(records)

	if sorted[0].ID != "new" || sorted[1].ID != "old" || sorted[2].ID != "bad" {
		t.Fatalf("unexpected order: %s, %s, %s", sorted[0].ID, sorted[1].ID, sorted[2].ID)
	}
	if records[0].ID != "bad" {
		t.Fatal("input slice reordered")
	}
}

func TestSaleDateTime_AcceptsObservedLayouts(t *testing.T) {
	for _, raw := range []string{"2025-03-12", "12-03-2025", "12/03/2025", "2025-03-12T10:30:00Z"} {
		r := SaleRecord{SaleDate: raw}
		if _, ok := r.SaleDateTime(); !ok {
			t.Fatalf("expected %q to parse", raw)
		}
	}
	r := SaleRecord{SaleDate: "ayer"}
	if _, ok := r.SaleDateTime(); ok {
		t.Fatal("expected unparseable date to fail")
	}
}
