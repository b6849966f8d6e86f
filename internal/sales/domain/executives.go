package domain

import (
	"sort"
	"strings"
)

// CleanExecutiveName strips the role suffix the CRM sometimes appends to the
// executive name, e.g. "María Soto - Ejecutiva" or "Pedro Rojas (Ventas)".
func CleanExecutiveName(raw string) string {
	name := strings.TrimSpace(raw)

	if idx := strings.Index(name, "("); idx > 0 {
		name = strings.TrimSpace(name[:idx])
	}
	if idx := strings.Index(name, " - "); idx > 0 {
		name = strings.TrimSpace(name[:idx])
	}

	return name
}

// DeriveExecutives returns the sorted unique executive names present in the
// record set, role suffixes removed. It is pure and recomputed per
// reconciliation; nothing holds a shared mutable executive list.
func DeriveExecutives(records []SaleRecord) []string {
	seen := make(map[string]struct{})
	executives := make([]string, 0)

	for _, r := range records {
		name := CleanExecutiveName(r.ExecutiveName)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		executives = append(executives, name)
	}

	sort.Strings(executives)
	return executives
}
