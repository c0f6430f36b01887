package scanning

import (
	"encoding/json"
	"strings"
)

// Field is a single extracted value. The zero Field is absent.
type Field struct {
	value string
	found bool
}

// Found returns a present Field holding v. Blank values count as absent.
func Found(v string) Field {
	v = strings.TrimSpace(v)
	if v == "" {
		return Field{}
	}
	return Field{value: v, found: true}
}

// Get returns the value and whether it was found
func (f Field) Get() (string, bool) {
	return f.value, f.found
}

// IsFound reports whether the field holds a value
func (f Field) IsFound() bool {
	return f.found
}

// Or returns the value, or def when the field is absent
func (f Field) Or(def string) string {
	if !f.found {
		return def
	}
	return f.value
}

// String returns the value, or the empty string when absent
func (f Field) String() string {
	return f.value
}

// MarshalJSON encodes absent fields as null
func (f Field) MarshalJSON() ([]byte, error) {
	if !f.found {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

// UnmarshalJSON decodes null and blank strings as absent
func (f *Field) UnmarshalJSON(data []byte) error {
	var v *string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*f = Field{}
		return nil
	}
	*f = Found(*v)
	return nil
}

// Address holds the four postal address parts in display order
type Address struct {
	Street     Field `json:"street"`
	PostalCode Field `json:"postal_code"`
	City       Field `json:"city"`
	Country    Field `json:"country"`
}

// Parts returns the address parts in street, postal code, city, country order
func (a Address) Parts() []Field {
	return []Field{a.Street, a.PostalCode, a.City, a.Country}
}

// Record is the raw data extracted from an e-invoice document
type Record struct {
	IssueDate     Field   `json:"issue_date"`
	InvoiceNumber Field   `json:"invoice_number"`
	SellerName    Field   `json:"seller_name"`
	SellerAddress Address `json:"seller_address"`
	BuyerName     Field   `json:"buyer_name"`
	BuyerAddress  Address `json:"buyer_address"`
	SellerIBAN    Field   `json:"seller_iban"`
	TotalAmount   Field   `json:"total_amount"`
	PaymentTerms  Field   `json:"payment_terms"`
}

// NormalizedRecord is a Record prepared for display. Every field holds either
// a value or one of the NotFound, InvalidDate markers.
type NormalizedRecord struct {
	IssueDate     string `json:"issue_date"`
	InvoiceNumber string `json:"invoice_number"`
	SellerName    string `json:"seller_name"`
	SellerAddress string `json:"seller_address"`
	BuyerName     string `json:"buyer_name"`
	BuyerAddress  string `json:"buyer_address"`
	SellerIBAN    string `json:"seller_iban"`
	TotalAmount   string `json:"total_amount"`
	PaymentTerms  string `json:"payment_terms"`
}
