package scanning

// Format identifies the e-invoice standard a document follows
type Format int

const (
	// Unrecognized is returned for documents matching neither standard
	Unrecognized Format = iota
	// XRechnung is the UBL-based EN16931 profile
	XRechnung
	// ZUGFeRD is the CII-based hybrid standard
	ZUGFeRD
)

func (f Format) String() string {
	switch f {
	case XRechnung:
		return "XRechnung"
	case ZUGFeRD:
		return "ZUGFeRD"
	default:
		return "Unrecognized"
	}
}

// MarshalText implements encoding.TextMarshaler
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names decode
// as Unrecognized.
func (f *Format) UnmarshalText(text []byte) error {
	*f = ParseFormat(string(text))
	return nil
}

// ParseFormat returns the Format named by s, or Unrecognized
func ParseFormat(s string) Format {
	switch s {
	case "XRechnung":
		return XRechnung
	case "ZUGFeRD":
		return ZUGFeRD
	default:
		return Unrecognized
	}
}
