package scanning

import "strings"

const (
	ublInvoiceNamespace    = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	en16931Namespace       = "urn:cen.eu:en16931:2017"
	en16931Customization   = "urn:cen.eu:en16931"
	crossIndustryDocument  = "urn:ferd:CrossIndustryDocument"
	crossIndustryInvoice   = "CrossIndustryInvoice"
	exchangedDocContext    = "ExchangedDocumentContext"
	exchangedDocument      = "ExchangedDocument"
	customizationIDElement = "CustomizationID"
)

// Classify determines which e-invoice standard doc follows.
//
// The XRechnung checks run first, so a document that satisfies the
// structural checks of both standards is reported as XRechnung. Lookup
// failures count as a failed check; the worst result is Unrecognized.
func Classify(doc Document) Format {
	if doc == nil {
		return Unrecognized
	}
	namespace, local, ok := doc.RootName()
	if !ok {
		return Unrecognized
	}

	if isUBLRoot(namespace, local) {
		return XRechnung
	}
	if id, ok := doc.ElementText(customizationIDElement); ok && strings.Contains(id.String(), en16931Customization) {
		return XRechnung
	}

	if strings.Contains(namespace, crossIndustryDocument) && strings.Contains(local, crossIndustryInvoice) {
		return ZUGFeRD
	}
	_, hasContext := doc.ElementText(exchangedDocContext)
	_, hasDocument := doc.ElementText(exchangedDocument)
	if hasContext && hasDocument {
		return ZUGFeRD
	}

	return Unrecognized
}

func isUBLRoot(namespace, local string) bool {
	if local != "Invoice" {
		return false
	}
	return namespace == ublInvoiceNamespace || namespace == en16931Namespace
}
