package scanning

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Display markers for values that could not be presented
const (
	NotFound    = "not found"
	InvalidDate = "invalid date"
)

// CurrencyUnit is appended to normalized amounts
const CurrencyUnit = "Euro"

// plainDecimal is the lexical form of xsd:decimal. Exponent notation is not
// part of it and would make rescaling unbounded.
var plainDecimal = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// NormalizeDate converts YYYY-MM-DD or YYYYMMDD to DD.MM.YYYY
func NormalizeDate(f Field) string {
	v, ok := f.Get()
	if !ok {
		return NotFound
	}

	var year, month, day string
	switch {
	case strings.Contains(v, "-"):
		parts := strings.Split(v, "-")
		if len(parts) != 3 {
			return InvalidDate
		}
		year, month, day = parts[0], parts[1], parts[2]
	case len(v) == 8:
		year, month, day = v[0:4], v[4:6], v[6:8]
	default:
		return InvalidDate
	}

	if len(year) != 4 || len(month) != 2 || len(day) != 2 || !isDigits(year+month+day) {
		return InvalidDate
	}
	return day + "." + month + "." + year
}

// NormalizeAmount renders an amount with two decimals, a comma separator and
// the currency unit. Values that are not plain decimal numbers are
// reported as NotFound.
func NormalizeAmount(f Field) string {
	v, ok := f.Get()
	if !ok || !plainDecimal.MatchString(v) {
		return NotFound
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return NotFound
	}
	return strings.Replace(d.StringFixed(2), ".", ",", 1) + " " + CurrencyUnit
}

// ComposeAddress joins the present address parts with ", "
func ComposeAddress(a Address) string {
	parts := make([]string, 0, 4)
	for _, p := range a.Parts() {
		if v, ok := p.Get(); ok {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

// Normalize prepares every field of r for display
func Normalize(r Record) NormalizedRecord {
	return NormalizedRecord{
		IssueDate:     NormalizeDate(r.IssueDate),
		InvoiceNumber: r.InvoiceNumber.Or(NotFound),
		SellerName:    r.SellerName.Or(NotFound),
		SellerAddress: orNotFound(ComposeAddress(r.SellerAddress)),
		BuyerName:     r.BuyerName.Or(NotFound),
		BuyerAddress:  orNotFound(ComposeAddress(r.BuyerAddress)),
		SellerIBAN:    r.SellerIBAN.Or(NotFound),
		TotalAmount:   NormalizeAmount(r.TotalAmount),
		PaymentTerms:  r.PaymentTerms.Or(NotFound),
	}
}

func orNotFound(s string) string {
	if s == "" {
		return NotFound
	}
	return s
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
