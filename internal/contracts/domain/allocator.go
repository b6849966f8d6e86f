// Package domain holds the contract numbering rules.
package domain

import (
	"fmt"
	"regexp"
	"strconv"

	sales "contratos_backend/internal/sales/domain"
)

// Contract numbers look like "2025-014": issue year, dash, zero-padded
// sequence. The sequence is global across years, so the successor of the
// highest sequence ever issued is next regardless of which year issued it.
var trailingDigits = regexp.MustCompile(`(\d+)\s*$`)

// SequenceOf extracts the numeric sequence from a contract number. The "0"
// sentinel and numbers without a trailing digit group yield no sequence.
func SequenceOf(contractNumber string) (int, bool) {
	if contractNumber == "" || contractNumber == sales.NoContractNumber {
		return 0, false
	}
	m := trailingDigits.FindStringSubmatch(contractNumber)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// NextNumber computes the next contract number from every number visible in
// the record set plus any extra reserved numbers, formatted for the given
// issue year.
func NextNumber(records []sales.SaleRecord, reserved []string, year int) string {
	max := 0
	for _, r := range records {
		if n, ok := SequenceOf(r.ContractNumber); ok && n > max {
			max = n
		}
	}
	for _, number := range reserved {
		if n, ok := SequenceOf(number); ok && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%d-%03d", year, max+1)
}
