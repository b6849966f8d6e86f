package domain

import "sort"

// Reconcile merges the raw CRM feed with local edits and deletions into the
// authoritative working set:
//
//  1. Records whose ID has a tombstone are dropped.
//  2. Local edit overlays are shallow-merged over the CRM fields; edits win.
//  3. The canonical stage is derived from the (possibly edited) raw status.
//
// Ordering of the output is not guaranteed; callers needing recency order
// sort explicitly by sale date. The input feed is never mutated.
func Reconcile(classifier Classifier, feed []SaleRecord, edits map[string]Edit, isDeleted func(id string) bool) []SaleRecord {
	result := make([]SaleRecord, 0, len(feed))

	for _, record := range feed {
		if isDeleted != nil && isDeleted(record.ID) {
			continue
		}

		if edit, ok := edits[record.ID]; ok {
			record = edit.Apply(record)
		}

		record.Stage = classifier.Classify(record.RawStatus)
		result = append(result, record)
	}

	return result
}

// SortBySaleDateDesc returns a copy of records ordered most recent first.
// Records with unparseable sale dates sink to the end in their input order.
func SortBySaleDateDesc(records []SaleRecord) []SaleRecord {
	sorted := append([]SaleRecord(nil), records...)

	sort.SliceStable(sorted, func(i, j int) bool {
		ta, aok := sorted[i].SaleDateTime()
		tb, bok := sorted[j].SaleDateTime()
		if aok != bok {
			return aok
		}
		if !aok {
			return false
		}
		return ta.After(tb)
	})

	return sorted
}
