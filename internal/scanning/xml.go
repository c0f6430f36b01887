package scanning

import (
	"fmt"
	"log/slog"
)

// XMLScanner implements the Scanner interface for XRechnung and ZUGFeRD
// attachments. It keeps no state between calls.
type XMLScanner struct {
	extractor *Extractor
	logger    *slog.Logger
}

// NewXMLScanner creates a new XMLScanner. A nil logger means slog.Default().
func NewXMLScanner(logger *slog.Logger) *XMLScanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &XMLScanner{
		extractor: NewExtractor(logger),
		logger:    logger,
	}
}

// ScanInvoice decodes an XML or PDF attachment and scans the invoice in it
func (s *XMLScanner) ScanInvoice(data []byte, contentType string) (*InvoiceData, error) {
	xmlData, err := prepareXMLData(data, contentType, s.logger)
	if err != nil {
		return nil, err
	}
	doc, err := ParseDocument(xmlData)
	if err != nil {
		return nil, err
	}
	return s.Scan(doc)
}

// Scan classifies doc and extracts, normalizes and encodes its invoice data
func (s *XMLScanner) Scan(doc Document) (*InvoiceData, error) {
	format := Classify(doc)
	if format == Unrecognized {
		return nil, ErrUnrecognized
	}

	record, err := s.extractor.Extract(doc, format)
	if err != nil {
		return nil, fmt.Errorf("extracting %s invoice: %w", format, err)
	}
	s.logger.Debug("Scanned invoice", "format", format, "invoice_number", record.InvoiceNumber.String())

	return &InvoiceData{
		Format:     format,
		Record:     record,
		Normalized: Normalize(record),
		Payload:    EPCPayload(record),
	}, nil
}

// Close is a no-op
func (s *XMLScanner) Close() error {
	return nil
}
