package scanning

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/ledongthuc/pdf"
)

const (
	// maxEmbeddedXMLSize caps how much of an embedded file is read
	maxEmbeddedXMLSize = 20 << 20
	// maxNameTreeDepth guards against cyclic name trees
	maxNameTreeDepth = 16
)

// ciiRootMarker identifies CII XML among the files embedded in a PDF
var ciiRootMarker = []byte("CrossIndustryInvoice>")

// normalizeContentType lowercases a MIME type and drops its parameters
func normalizeContentType(contentType string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		return mediaType
	}
	return contentType
}

// IsXMLContentType reports whether contentType denotes an XML attachment
func IsXMLContentType(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "text/xml", "application/xml":
		return true
	}
	return false
}

// IsPDFContentType reports whether contentType denotes a PDF attachment
func IsPDFContentType(contentType string) bool {
	return normalizeContentType(contentType) == "application/pdf"
}

// DetectContentType guesses the content type of an attachment from its file
// extension, falling back to sniffing PDF content. Anything else yields
// application/octet-stream.
func DetectContentType(filename string, data []byte) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xml":
		return "text/xml"
	case ".pdf":
		return "application/pdf"
	}
	if filetype.Is(data, "pdf") {
		return "application/pdf"
	}
	return "application/octet-stream"
}

// prepareXMLData returns the XML bytes of an attachment: XML attachments as
// they are, PDFs reduced to their embedded CII invoice
func prepareXMLData(data []byte, contentType string, logger *slog.Logger) ([]byte, error) {
	switch {
	case IsXMLContentType(contentType):
		return data, nil
	case IsPDFContentType(contentType):
		xmlData, err := pdfEmbeddedXML(data, logger)
		if err != nil {
			return nil, fmt.Errorf("extracting XML from PDF: %w", err)
		}
		return xmlData, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}
}

// embeddedFile is a file specification found in a PDF
type embeddedFile struct {
	name string
	spec pdf.Value
}

// pdfEmbeddedXML returns the first embedded .xml file holding a CII invoice.
// Both the EmbeddedFiles name tree and the associated files array are
// searched.
func pdfEmbeddedXML(data []byte, logger *slog.Logger) (xmlData []byte, err error) {
	// The PDF reader panics on some malformed input
	defer func() {
		if r := recover(); r != nil {
			xmlData, err = nil, fmt.Errorf("reading PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	catalog := reader.Trailer().Key("Root")

	var files []embeddedFile
	collectNameTree(catalog.Key("Names").Key("EmbeddedFiles"), 0, &files)
	associated := catalog.Key("AF")
	for i := 0; i < associated.Len(); i++ {
		files = append(files, embeddedFile{spec: associated.Index(i)})
	}

	for _, f := range files {
		if !hasXMLName(f) {
			continue
		}
		content, err := readEmbeddedFile(f.spec)
		if err != nil {
			logger.Debug("Skipping embedded file", "name", f.name, "error", err)
			continue
		}
		if bytes.Contains(content, ciiRootMarker) {
			return content, nil
		}
	}
	return nil, ErrNoEmbeddedInvoice
}

// collectNameTree appends the file specifications of a name tree node
func collectNameTree(node pdf.Value, depth int, files *[]embeddedFile) {
	if node.IsNull() || depth > maxNameTreeDepth {
		return
	}
	names := node.Key("Names")
	for i := 0; i+1 < names.Len(); i += 2 {
		*files = append(*files, embeddedFile{
			name: names.Index(i).Text(),
			spec: names.Index(i + 1),
		})
	}
	kids := node.Key("Kids")
	for i := 0; i < kids.Len(); i++ {
		collectNameTree(kids.Index(i), depth+1, files)
	}
}

// hasXMLName checks the tree key and the file names of a specification
func hasXMLName(f embeddedFile) bool {
	candidates := []string{f.name}
	for _, key := range []string{"UF", "F"} {
		if v := f.spec.Key(key); v.Kind() == pdf.String {
			candidates = append(candidates, v.Text())
		}
	}
	for _, name := range candidates {
		if strings.HasSuffix(strings.ToLower(name), ".xml") {
			return true
		}
	}
	return false
}

// readEmbeddedFile decodes the embedded file stream of a file specification.
// A panic of the PDF reader fails only this file.
func readEmbeddedFile(spec pdf.Value) (content []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			content, err = nil, fmt.Errorf("decoding embedded stream: %v", r)
		}
	}()

	stream := spec.Key("EF").Key("F")
	if stream.Kind() != pdf.Stream {
		return nil, fmt.Errorf("file specification has no embedded stream")
	}
	rc := stream.Reader()
	defer rc.Close()
	content, err = io.ReadAll(io.LimitReader(rc, maxEmbeddedXMLSize))
	if err != nil {
		return nil, fmt.Errorf("reading embedded stream: %w", err)
	}
	return content, nil
}
