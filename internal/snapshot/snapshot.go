// Package snapshot writes and reads repository snapshots and compares them.
package snapshot

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"sigs.k8s.io/yaml"

	"github.com/boldpkg/bold/internal/canonical"
	berrors "github.com/boldpkg/bold/internal/errors"
	"github.com/boldpkg/bold/internal/output"
)

// encMode is CBOR core deterministic encoding: sorted map keys and
// shortest integer forms, so equal snapshots encode to equal bytes.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("snapshot: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("snapshot: CBOR decoder initialization failed: " + err.Error())
	}
}

// Encode renders v in format f. JSON output is the canonical text followed
// by a newline.
func Encode(v canonical.Value, f output.Format) ([]byte, error) {
	switch f {
	case output.FormatJSON, "":
		return append(canonical.Marshal(v), '\n'), nil
	case output.FormatYAML:
		out, err := yaml.JSONToYAML(canonical.Marshal(v))
		if err != nil {
			return nil, fmt.Errorf("%w: converting snapshot to YAML: %v", berrors.ErrSerialization, err)
		}
		return out, nil
	case output.FormatCBOR:
		out, err := encMode.Marshal(cborValue(v))
		if err != nil {
			return nil, fmt.Errorf("%w: encoding snapshot as CBOR: %v", berrors.ErrSerialization, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown snapshot format %q", berrors.ErrValidation, f)
	}
}

// Write encodes v in format f to w.
func Write(w io.Writer, v canonical.Value, f output.Format) error {
	data, err := Encode(v, f)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Read decodes a snapshot in format f. The top level must be a map.
func Read(r io.Reader, f output.Format) (canonical.Map, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var v canonical.Value
	switch f {
	case output.FormatJSON, "":
		v, err = canonical.Parse(data)
	case output.FormatYAML:
		var jsonData []byte
		jsonData, err = yaml.YAMLToJSON(data)
		if err == nil {
			v, err = canonical.Parse(jsonData)
		}
	case output.FormatCBOR:
		var raw any
		if err = decMode.Unmarshal(data, &raw); err == nil {
			v, err = canonical.FromAny(raw)
		}
	default:
		return nil, fmt.Errorf("%w: unknown snapshot format %q", berrors.ErrValidation, f)
	}
	if err != nil {
		return nil, berrors.NewValidationError(fmt.Sprintf("decoding %s snapshot: %v", f, err), "", "", "")
	}

	m, ok := v.(canonical.Map)
	if !ok {
		return nil, berrors.NewValidationError(
			fmt.Sprintf("snapshot must be a map, got %s", v.Kind()), "", "", "")
	}
	return m, nil
}

// FormatFromPath picks a format from a file extension, defaulting to JSON.
func FormatFromPath(path string) output.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return output.FormatYAML
	case ".cbor":
		return output.FormatCBOR
	default:
		return output.FormatJSON
	}
}

// cborValue converts v to plain Go data with numbers as int64, uint64 or
// float64, so CBOR encodes them as numbers rather than text.
func cborValue(v canonical.Value) any {
	switch val := v.(type) {
	case canonical.Number:
		s := string(val)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return u
		}
		f, _ := strconv.ParseFloat(s, 64)
		return f
	case canonical.List:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cborValue(e)
		}
		return out
	case canonical.Map:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = cborValue(e)
		}
		return out
	default:
		return canonical.ToAny(v)
	}
}

// trimLines removes trailing whitespace from every line.
func trimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return string(bytes.TrimSpace([]byte(strings.Join(lines, "\n"))))
}
