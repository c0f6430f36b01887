package scanning

import "errors"

var (
	// ErrUnsupportedContentType is returned for attachments that cannot
	// carry an e-invoice
	ErrUnsupportedContentType = errors.New("unsupported content type")
	// ErrNoEmbeddedInvoice is returned for PDFs without embedded ZUGFeRD XML
	ErrNoEmbeddedInvoice = errors.New("no embedded ZUGFeRD invoice in PDF")
	// ErrMalformedDocument is returned when the XML has no usable root element
	ErrMalformedDocument = errors.New("malformed XML document")
	// ErrUnrecognized is returned for documents matching neither standard
	ErrUnrecognized = errors.New("unrecognized e-invoice format")
)

// InvoiceData contains everything extracted from one e-invoice attachment
type InvoiceData struct {
	Format     Format           `json:"format"`
	Record     Record           `json:"record"`
	Normalized NormalizedRecord `json:"normalized"`
	Payload    string           `json:"payload"`
}

// Scanner defines the interface for e-invoice scanning operations
type Scanner interface {
	// ScanInvoice detects the e-invoice standard of an attachment and
	// extracts its invoice data
	ScanInvoice(data []byte, contentType string) (*InvoiceData, error)
	// Close releases resources held by the scanner
	Close() error
}
