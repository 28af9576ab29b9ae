package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"gopkg.in/yaml.v3"

	berrors "github.com/boldpkg/bold/internal/errors"
	"github.com/boldpkg/bold/internal/output"
)

//go:embed schema.cue
var schemaCUE []byte

// Loader reads catalog files from a filesystem. Supported formats are .cue,
// .yaml, .yml and .json.
type Loader struct {
	fs     billy.Filesystem
	ctx    *cue.Context
	schema cue.Value
}

// NewLoader creates a Loader reading from fs.
func NewLoader(fs billy.Filesystem) (*Loader, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling catalog schema: %w", schema.Err())
	}

	return &Loader{
		fs:     fs,
		ctx:    ctx,
		schema: schema.LookupPath(cue.ParsePath("#Catalog")),
	}, nil
}

// Load reads and unifies paths, validates the result against the catalog
// schema and decodes it. No paths yields an empty catalog.
func (l *Loader) Load(paths ...string) (*Catalog, error) {
	value := l.schema
	for _, path := range paths {
		v, err := l.LoadFile(path)
		if err != nil {
			return nil, err
		}
		value = value.Unify(v)
		if value.Err() != nil {
			return nil, catalogError(path, value.Err())
		}
	}

	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, catalogError(strings.Join(paths, ", "), err)
	}

	data, err := value.MarshalJSON()
	if err != nil {
		return nil, catalogError(strings.Join(paths, ", "), err)
	}

	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	output.Debug("catalog loaded", "files", len(paths), "recipes", len(cat.Recipes), "systems", len(cat.Systems))
	return &cat, nil
}

// LoadFile reads one catalog file as a CUE value without validating it.
func (l *Loader) LoadFile(path string) (cue.Value, error) {
	data, err := util.ReadFile(l.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cue.Value{}, berrors.NewNotFoundError(
				fmt.Sprintf("catalog file %s does not exist", path), path, "")
		}
		return cue.Value{}, fmt.Errorf("reading catalog file %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cue":
		return l.compile(data, path)
	case ".json":
		return l.compile(data, path)
	case ".yaml", ".yml":
		return l.loadYAML(data, path)
	default:
		return cue.Value{}, berrors.NewValidationError(
			fmt.Sprintf("unsupported catalog format %q", ext), path, "",
			"use a .cue, .yaml, .yml or .json file")
	}
}

func (l *Loader) compile(data []byte, path string) (cue.Value, error) {
	v := l.ctx.CompileBytes(data, cue.Filename(path))
	if v.Err() != nil {
		return cue.Value{}, catalogError(path, v.Err())
	}
	return v, nil
}

func (l *Loader) loadYAML(data []byte, path string) (cue.Value, error) {
	var parsed any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return cue.Value{}, catalogError(path, err)
	}
	if parsed == nil {
		parsed = map[string]any{}
	}

	jsonData, err := json.Marshal(normalizeYAML(parsed))
	if err != nil {
		return cue.Value{}, fmt.Errorf("converting %s to JSON: %w", path, err)
	}
	return l.compile(jsonData, path)
}

func catalogError(location string, err error) error {
	return &berrors.DetailError{
		Type:     "invalid catalog",
		Message:  err.Error(),
		Location: location,
		Cause:    berrors.ErrValidation,
	}
}

// normalizeYAML converts YAML maps with non-string keys to string-keyed maps.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, e := range val {
			result[k] = normalizeYAML(e)
		}
		return result
	case map[any]any:
		result := make(map[string]any, len(val))
		for k, e := range val {
			result[fmt.Sprintf("%v", k)] = normalizeYAML(e)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, e := range val {
			result[i] = normalizeYAML(e)
		}
		return result
	default:
		return v
	}
}
