package scanning

import "strings"

// EPC credit transfer header: service tag, version, UTF-8 charset,
// identification code
var epcHeader = []string{"BCD", "001", "1", "SCT"}

// EPCPayload builds the payment QR text for r. Scanners read the payload by
// line position, so the layout is fixed: header, empty BIC line, beneficiary
// name, IBAN, EUR amount as extracted, empty purpose line, remittance text.
// Absent values become empty lines.
func EPCPayload(r Record) string {
	lines := make([]string, 0, 10)
	lines = append(lines, epcHeader...)
	lines = append(lines,
		"",
		r.SellerName.String(),
		r.SellerIBAN.String(),
		"EUR"+r.TotalAmount.String(),
		"",
		"Rechnung "+r.InvoiceNumber.String(),
	)
	return strings.Join(lines, "\n")
}
