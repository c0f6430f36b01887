package invoice

import (
	"time"

	"github.com/zombor/einvoice-tracker/internal/scanning"
)

// Invoice represents an e-invoice read from one attachment
type Invoice struct {
	ID          string                    `json:"id"`
	MessageID   string                    `json:"message_id,omitempty"` // ID of the message the attachment came with
	Filename    string                    `json:"filename"`
	ContentType string                    `json:"content_type"`
	Format      scanning.Format           `json:"format"`
	Fields      scanning.NormalizedRecord `json:"fields"`
	Payload     string                    `json:"payload"` // EPC payment QR text
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}

// Attachment is a mail attachment handed in for scanning
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AttachmentResult records what happened to one attachment of a message
type AttachmentResult struct {
	Filename    string          `json:"filename"`
	ContentType string          `json:"content_type"`
	Format      scanning.Format `json:"format"`
	InvoiceID   string          `json:"invoice_id,omitempty"`
	Skipped     string          `json:"skipped,omitempty"` // reason the attachment yielded no invoice
}

// Message represents a mail message whose attachments were scanned
type Message struct {
	ID          string             `json:"id"`
	Subject     string             `json:"subject"`
	InvoiceIDs  []string           `json:"invoice_ids"` // IDs of invoices found in this message
	Attachments []AttachmentResult `json:"attachments"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}
