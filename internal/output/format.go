package output

import (
	"fmt"
	"strings"
)

// Format is a snapshot output format.
type Format string

const (
	// FormatJSON is canonical JSON.
	FormatJSON Format = "json"

	// FormatYAML is YAML converted from canonical JSON.
	FormatYAML Format = "yaml"

	// FormatCBOR is CBOR in core deterministic encoding.
	FormatCBOR Format = "cbor"
)

// String returns the format name.
func (f Format) String() string {
	return string(f)
}

// IsValid reports whether f is a known format.
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatCBOR:
		return true
	default:
		return false
	}
}

// ParseFormat parses a format name. The empty string is FormatJSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "cbor":
		return FormatCBOR, nil
	default:
		return "", fmt.Errorf("unknown output format %q (valid: %s)", s, strings.Join(ValidFormats(), ", "))
	}
}

// ValidFormats returns the valid format names.
func ValidFormats() []string {
	return []string{"json", "yaml", "cbor"}
}
