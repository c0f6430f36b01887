package scanning

import (
	"fmt"
	"log/slog"
)

// addressQueries locate street, postal code, city and country
type addressQueries [4]*Query

// queryTable holds the path query of every Record field for one format
type queryTable struct {
	namespaces    Namespaces
	issueDate     *Query
	invoiceNumber *Query
	sellerName    *Query
	sellerAddress addressQueries
	buyerName     *Query
	buyerAddress  addressQueries
	sellerIBAN    *Query
	totalAmount   *Query
	paymentTerms  *Query
}

func ublAddress(party string) addressQueries {
	base := "//cac:" + party + "/cac:Party/cac:PostalAddress/"
	return addressQueries{
		MustCompileQuery(base + "cbc:StreetName"),
		MustCompileQuery(base + "cbc:PostalZone"),
		MustCompileQuery(base + "cbc:CityName"),
		MustCompileQuery(base + "cac:Country/cbc:IdentificationCode"),
	}
}

func ciiAddress(party string) addressQueries {
	base := "//ram:" + party + "/ram:PostalTradeAddress/"
	return addressQueries{
		MustCompileQuery(base + "ram:LineOne"),
		MustCompileQuery(base + "ram:PostcodeCode"),
		MustCompileQuery(base + "ram:CityName"),
		MustCompileQuery(base + "ram:CountryID"),
	}
}

var queryTables = map[Format]*queryTable{
	XRechnung: {
		namespaces: Namespaces{
			"cbc": "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2",
			"cac": "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2",
		},
		issueDate:     MustCompileQuery("//cbc:IssueDate"),
		invoiceNumber: MustCompileQuery("//cbc:ID"),
		sellerName:    MustCompileQuery("//cac:AccountingSupplierParty/cac:Party/cac:PartyName/cbc:Name"),
		sellerAddress: ublAddress("AccountingSupplierParty"),
		buyerName:     MustCompileQuery("//cac:AccountingCustomerParty/cac:Party/cac:PartyName/cbc:Name"),
		buyerAddress:  ublAddress("AccountingCustomerParty"),
		sellerIBAN:    MustCompileQuery("//cac:PaymentMeans/cac:PayeeFinancialAccount/cbc:ID"),
		totalAmount:   MustCompileQuery("//cac:LegalMonetaryTotal/cbc:PayableAmount"),
		paymentTerms:  MustCompileQuery("//cac:PaymentTerms/cbc:Note"),
	},
	ZUGFeRD: {
		namespaces: Namespaces{
			"rsm": "urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100",
			"ram": "urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100",
			"udt": "urn:un:unece:uncefact:data:standard:UnqualifiedDataType:100",
		},
		issueDate:     MustCompileQuery("//ram:IssueDateTime/udt:DateTimeString"),
		invoiceNumber: MustCompileQuery("//rsm:ExchangedDocument/ram:ID"),
		sellerName:    MustCompileQuery("//ram:SellerTradeParty/ram:Name"),
		sellerAddress: ciiAddress("SellerTradeParty"),
		buyerName:     MustCompileQuery("//ram:BuyerTradeParty/ram:Name"),
		buyerAddress:  ciiAddress("BuyerTradeParty"),
		sellerIBAN:    MustCompileQuery("//ram:PayeePartyCreditorFinancialAccount/ram:IBANID"),
		totalAmount:   MustCompileQuery("//ram:GrandTotalAmount"),
		paymentTerms:  MustCompileQuery("//ram:SpecifiedTradePaymentTerms/ram:Description"),
	},
}

// Extractor reads Records out of classified documents
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an Extractor. A nil logger means slog.Default().
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract reads all Record fields from doc using the query table of format.
// Fields are looked up independently; a field whose query fails is left
// absent. Only a document without a root element fails as a whole.
func Extract(doc Document, format Format) (Record, error) {
	return NewExtractor(nil).Extract(doc, format)
}

// Extract implements the package-level Extract with e's logger
func (e *Extractor) Extract(doc Document, format Format) (Record, error) {
	table, ok := queryTables[format]
	if !ok {
		return Record{}, fmt.Errorf("extracting %s document: %w", format, ErrUnrecognized)
	}
	if doc == nil {
		return Record{}, ErrMalformedDocument
	}
	if _, _, ok := doc.RootName(); !ok {
		return Record{}, ErrMalformedDocument
	}

	eval := func(name string, q *Query) Field {
		f, err := doc.Evaluate(q, table.namespaces)
		if err != nil {
			e.logger.Debug("Field lookup failed", "format", format, "field", name, "query", q.String(), "error", err)
			return Field{}
		}
		return f
	}
	address := func(name string, qs addressQueries) Address {
		return Address{
			Street:     eval(name+".street", qs[0]),
			PostalCode: eval(name+".postal_code", qs[1]),
			City:       eval(name+".city", qs[2]),
			Country:    eval(name+".country", qs[3]),
		}
	}

	return Record{
		IssueDate:     eval("issue_date", table.issueDate),
		InvoiceNumber: eval("invoice_number", table.invoiceNumber),
		SellerName:    eval("seller_name", table.sellerName),
		SellerAddress: address("seller_address", table.sellerAddress),
		BuyerName:     eval("buyer_name", table.buyerName),
		BuyerAddress:  address("buyer_address", table.buyerAddress),
		SellerIBAN:    eval("seller_iban", table.sellerIBAN),
		TotalAmount:   eval("total_amount", table.totalAmount),
		PaymentTerms:  eval("payment_terms", table.paymentTerms),
	}, nil
}
