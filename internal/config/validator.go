package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	berrors "github.com/boldpkg/bold/internal/errors"
)

//go:embed schema.cue
var schemaSource []byte

// Validator validates configuration files against the embedded CUE schema.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewValidator creates a new configuration validator.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	def := schema.LookupPath(cue.ParsePath("#Config"))
	if !def.Exists() {
		return nil, fmt.Errorf("schema has no #Config definition")
	}

	return &Validator{ctx: ctx, schema: def}, nil
}

// Validate checks YAML config data. The returned error lists every schema
// violation found.
func (v *Validator) Validate(data []byte, location string) error {
	var parsed any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return configError(location, err.Error())
	}
	if parsed == nil {
		return nil
	}

	value := v.ctx.Encode(parsed)
	if value.Err() != nil {
		return configError(location, value.Err().Error())
	}

	unified := v.schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return configError(location, cueerrors.Details(err, nil))
	}
	return nil
}

// ValidateFile validates the configuration file at path.
func (v *Validator) ValidateFile(path string) error {
	expanded, err := ExpandPath(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return berrors.NewNotFoundError(
				"config file does not exist", expanded, "Run 'bold config init' to create one.")
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	return v.Validate(data, expanded)
}

func configError(location, message string) error {
	return &berrors.DetailError{
		Type:     "invalid config",
		Message:  message,
		Location: location,
		Cause:    berrors.ErrValidation,
	}
}
