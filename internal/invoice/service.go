package invoice

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/einvoice-tracker/internal/scanning"
)

// IDGenerator generates unique IDs for invoices and messages
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates random UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// ScanError reports an attachment that did not yield an invoice
type ScanError struct {
	Filename string
	Err      error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scanning %s: %v", e.Filename, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// Service handles invoice operations
type Service struct {
	db          DB
	scanner     scanning.Scanner
	storage     Storage
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, scanner scanning.Scanner, storage Storage) *Service {
	return NewServiceWithDeps(db, scanner, storage, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	repeatedSpaces      = regexp.MustCompile(`\s+`)
)

// sanitizeFilename removes special characters and truncates long names
func sanitizeFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if unsafeFilenameChars.MatchString(strings.TrimPrefix(ext, ".")) {
		ext = ""
	}
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = repeatedSpaces.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}
	if base == "" {
		base = "invoice"
	}

	return base + ext
}

// ProcessAttachment scans a single attachment and saves the invoice found in it
func (s *Service) ProcessAttachment(filename string, data []byte, contentType string) (*Invoice, error) {
	return s.processAttachment("", Attachment{Filename: filename, ContentType: contentType, Data: data})
}

func (s *Service) processAttachment(messageID string, a Attachment) (*Invoice, error) {
	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(a.Filename)), a.Data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	data, err := s.scanner.ScanInvoice(a.Data, a.ContentType)
	if err != nil {
		slog.Info("Attachment holds no readable e-invoice",
			"filename", a.Filename,
			"content_type", a.ContentType,
			"file_size", len(a.Data),
			"error", err,
		)
		s.storage.Delete(savedPath)
		return nil, &ScanError{Filename: a.Filename, Err: err}
	}

	invoice := &Invoice{
		ID:          id,
		MessageID:   messageID,
		Filename:    savedPath,
		ContentType: a.ContentType,
		Format:      data.Format,
		Fields:      data.Normalized,
		Payload:     data.Payload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.db.SaveInvoice(invoice); err != nil {
		s.storage.Delete(savedPath)
		return nil, fmt.Errorf("saving invoice to database: %w", err)
	}

	slog.Info("Invoice recognized", "id", id, "format", data.Format, "filename", a.Filename)
	return invoice, nil
}

// ProcessMessage scans the attachments of a message one at a time. Attachments
// without a readable e-invoice are recorded as skipped. Storage failures abort
// the message and remove the invoices already saved for it.
func (s *Service) ProcessMessage(subject string, attachments []Attachment) (*Message, error) {
	if len(attachments) == 0 {
		return nil, fmt.Errorf("at least one attachment is required")
	}

	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	message := &Message{
		ID:          id,
		Subject:     subject,
		InvoiceIDs:  make([]string, 0, len(attachments)),
		Attachments: make([]AttachmentResult, 0, len(attachments)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var created []*Invoice
	for _, a := range attachments {
		result := AttachmentResult{
			Filename:    a.Filename,
			ContentType: a.ContentType,
		}

		invoice, err := s.processAttachment(id, a)
		var scanErr *ScanError
		switch {
		case errors.As(err, &scanErr):
			result.Skipped = scanErr.Err.Error()
		case err != nil:
			s.discardInvoices(created)
			return nil, fmt.Errorf("processing attachment %s: %w", a.Filename, err)
		default:
			created = append(created, invoice)
			result.Format = invoice.Format
			result.InvoiceID = invoice.ID
			message.InvoiceIDs = append(message.InvoiceIDs, invoice.ID)
		}
		message.Attachments = append(message.Attachments, result)
	}

	if err := s.db.SaveMessage(message); err != nil {
		s.discardInvoices(created)
		return nil, fmt.Errorf("saving message: %w", err)
	}

	return message, nil
}

// discardInvoices removes invoices of a message that could not be saved
func (s *Service) discardInvoices(invoices []*Invoice) {
	for _, invoice := range invoices {
		if err := s.db.DeleteInvoice(invoice.ID); err != nil {
			slog.Warn("Failed to discard invoice", "id", invoice.ID, "error", err)
		}
		if err := s.storage.Delete(invoice.Filename); err != nil {
			slog.Warn("Failed to delete file", "filename", invoice.Filename, "error", err)
		}
	}
}

// GetInvoice retrieves an invoice by ID
func (s *Service) GetInvoice(id string) (*Invoice, error) {
	invoice, err := s.db.GetInvoice(id)
	if err != nil {
		return nil, fmt.Errorf("getting invoice: %w", err)
	}
	return invoice, nil
}

// ListInvoices returns all invoices
func (s *Service) ListInvoices() ([]*Invoice, error) {
	invoices, err := s.db.ListInvoices()
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	return invoices, nil
}

// DeleteInvoice removes an invoice, its file and its reference in the message
func (s *Service) DeleteInvoice(id string) error {
	invoice, err := s.db.GetInvoice(id)
	if err != nil {
		return fmt.Errorf("getting invoice for deletion: %w", err)
	}

	if err := s.storage.Delete(invoice.Filename); err != nil {
		slog.Warn("Failed to delete file", "filename", invoice.Filename, "error", err)
	}

	if err := s.db.DeleteInvoice(id); err != nil {
		return fmt.Errorf("deleting invoice from database: %w", err)
	}

	if invoice.MessageID == "" {
		return nil
	}
	message, err := s.db.GetMessage(invoice.MessageID)
	if err != nil {
		slog.Warn("Failed to load message of deleted invoice", "message_id", invoice.MessageID, "error", err)
		return nil
	}
	message.InvoiceIDs = slices.DeleteFunc(message.InvoiceIDs, func(invoiceID string) bool {
		return invoiceID == id
	})
	message.UpdatedAt = s.timeSource.Now()
	if err := s.db.SaveMessage(message); err != nil {
		return fmt.Errorf("updating message %s: %w", message.ID, err)
	}
	return nil
}

// GetInvoiceFile retrieves the original attachment of an invoice
func (s *Service) GetInvoiceFile(id string) ([]byte, string, error) {
	invoice, err := s.db.GetInvoice(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting invoice: %w", err)
	}

	data, err := s.storage.Get(invoice.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting invoice file: %w", err)
	}

	return data, invoice.ContentType, nil
}

// GetInvoicePayload returns the payment QR payload of an invoice
func (s *Service) GetInvoicePayload(id string) (string, error) {
	invoice, err := s.db.GetInvoice(id)
	if err != nil {
		return "", fmt.Errorf("getting invoice: %w", err)
	}
	return invoice.Payload, nil
}

// GetMessage retrieves a message by ID
func (s *Service) GetMessage(id string) (*Message, error) {
	message, err := s.db.GetMessage(id)
	if err != nil {
		return nil, fmt.Errorf("getting message: %w", err)
	}
	return message, nil
}

// GetMessageWithInvoices retrieves a message with the invoices found in it
func (s *Service) GetMessageWithInvoices(id string) (*Message, []*Invoice, error) {
	message, err := s.db.GetMessage(id)
	if err != nil {
		return nil, nil, fmt.Errorf("getting message: %w", err)
	}

	invoices := make([]*Invoice, 0, len(message.InvoiceIDs))
	for _, invoiceID := range message.InvoiceIDs {
		invoice, err := s.db.GetInvoice(invoiceID)
		if err != nil {
			return nil, nil, fmt.Errorf("getting invoice %s: %w", invoiceID, err)
		}
		invoices = append(invoices, invoice)
	}

	return message, invoices, nil
}

// ListMessages returns all messages
func (s *Service) ListMessages() ([]*Message, error) {
	messages, err := s.db.ListMessages()
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return messages, nil
}
