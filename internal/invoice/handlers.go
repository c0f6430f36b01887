package invoice

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/zombor/einvoice-tracker/internal/scanning"
)

// maxFormSize bounds multipart uploads
const maxFormSize = int64(50 << 20)

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// jsonError writes a JSON error body
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// writeJSON encodes v as the response body
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// readUpload reads the content of one multipart file. The declared content
// type wins unless it is missing or generic.
func readUpload(header *multipart.FileHeader) (Attachment, error) {
	f, err := header.Open()
	if err != nil {
		return Attachment{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return Attachment{}, err
	}

	contentType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = scanning.DetectContentType(header.Filename, data)
	}
	return Attachment{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// scanErrorStatus maps a scanning failure to a response status
func scanErrorStatus(err error) int {
	switch {
	case errors.Is(err, scanning.ErrUnsupportedContentType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, scanning.ErrUnrecognized),
		errors.Is(err, scanning.ErrNoEmbeddedInvoice),
		errors.Is(err, scanning.ErrMalformedDocument):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleListInvoices returns a list of all invoices
func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.service.ListInvoices()
	if err != nil {
		slog.Error("Error listing invoices", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

// handleUploadInvoice scans a single uploaded attachment
func (s *Server) handleUploadInvoice(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		jsonError(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	_, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		jsonError(w, "No file was selected. Please choose an XML or PDF invoice.", http.StatusBadRequest)
		return
	}

	attachment, err := readUpload(header)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	invoice, err := s.service.ProcessAttachment(attachment.Filename, attachment.Data, attachment.ContentType)
	if err != nil {
		var scanErr *ScanError
		if errors.As(err, &scanErr) {
			jsonError(w, scanErr.Err.Error(), scanErrorStatus(scanErr.Err))
			return
		}
		slog.Error("Error processing invoice", "filename", header.Filename, "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, invoice)
}

// handleGetInvoice returns a single invoice
func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := s.service.GetInvoice(r.PathValue("id"))
	if err != nil {
		corsError(w, "Invoice not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

// handleGetInvoiceFile returns the original attachment of an invoice
func (s *Server) handleGetInvoiceFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetInvoiceFile(r.PathValue("id"))
	if err != nil {
		corsError(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleGetInvoicePayload returns the payment QR payload as plain text
func (s *Server) handleGetInvoicePayload(w http.ResponseWriter, r *http.Request) {
	payload, err := s.service.GetInvoicePayload(r.PathValue("id"))
	if err != nil {
		corsError(w, "Invoice not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, payload)
}

// handleDeleteInvoice deletes an invoice
func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteInvoice(r.PathValue("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			corsError(w, "Invoice not found", http.StatusNotFound)
			return
		}
		slog.Error("Error deleting invoice", "error", err)
		corsError(w, "Error deleting invoice", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleListMessages returns a list of all messages
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := s.service.ListMessages()
	if err != nil {
		slog.Error("Error listing messages", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if messages == nil {
		messages = []*Message{}
	}
	writeJSON(w, http.StatusOK, messages)
}

// handleUploadMessage scans every attachment of an uploaded message
func (s *Server) handleUploadMessage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		jsonError(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	headers := r.MultipartForm.File["attachments"]
	if len(headers) == 0 {
		jsonError(w, "No attachments found in the selected message.", http.StatusBadRequest)
		return
	}

	attachments := make([]Attachment, 0, len(headers))
	for _, header := range headers {
		attachment, err := readUpload(header)
		if err != nil {
			slog.Error("Error reading file data", "error", err, "filename", header.Filename)
			jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
			return
		}
		attachments = append(attachments, attachment)
	}

	message, err := s.service.ProcessMessage(r.FormValue("subject"), attachments)
	if err != nil {
		slog.Error("Error processing message", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, message)
}

// handleGetMessage returns a message with its invoices
func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	message, invoices, err := s.service.GetMessageWithInvoices(r.PathValue("id"))
	if err != nil {
		corsError(w, "Message not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  message,
		"invoices": invoices,
	})
}
