package recipe

import (
	"fmt"
	"strings"

	"github.com/boldpkg/bold/internal/canonical"
	berrors "github.com/boldpkg/bold/internal/errors"
)

// Phase names one lifecycle stage of a recipe.
type Phase string

// Phases in execution order.
const (
	PhaseUnpack       Phase = "unpack"
	PhasePatch        Phase = "patch"
	PhaseBuild        Phase = "build"
	PhaseCheck        Phase = "check"
	PhaseInstall      Phase = "install"
	PhaseFixup        Phase = "fixup"
	PhaseInstallCheck Phase = "installCheck"
	PhaseDist         Phase = "dist"
)

// PhaseOrder lists every phase in execution order.
var PhaseOrder = []Phase{
	PhaseUnpack,
	PhasePatch,
	PhaseBuild,
	PhaseCheck,
	PhaseInstall,
	PhaseFixup,
	PhaseInstallCheck,
	PhaseDist,
}

// Valid reports whether p is one of PhaseOrder.
func (p Phase) Valid() bool {
	for _, known := range PhaseOrder {
		if p == known {
			return true
		}
	}
	return false
}

// Step is the command of one phase. The command is an opaque shell string
// for the external executor; an empty Cmd is a no-op.
type Step struct {
	Cmd string
}

// Phases maps phase names to their steps.
type Phases map[Phase]Step

// PhaseStep pairs a phase with its step.
type PhaseStep struct {
	Phase Phase
	Step  Step
}

// Ordered returns every phase in execution order, with empty steps for
// phases that are not set.
func (p Phases) Ordered() []PhaseStep {
	out := make([]PhaseStep, len(PhaseOrder))
	for i, ph := range PhaseOrder {
		out[i] = PhaseStep{Phase: ph, Step: p[ph]}
	}
	return out
}

// Cmd returns the command of phase, or "".
func (p Phases) Cmd(phase Phase) string {
	return p[phase].Cmd
}

func (p Phases) validate() error {
	for name := range p {
		if !name.Valid() {
			names := make([]string, len(PhaseOrder))
			for i, ph := range PhaseOrder {
				names[i] = string(ph)
			}
			return fmt.Errorf("%w: unknown phase %q (valid: %s)",
				berrors.ErrValidation, name, strings.Join(names, ", "))
		}
	}
	return nil
}

// value renders all eight phases, so omitting a no-op phase and writing it
// with an empty command give the same identity.
func (p Phases) value() canonical.Map {
	out := make(canonical.Map, len(PhaseOrder))
	for _, ph := range PhaseOrder {
		out[string(ph)] = canonical.Map{"cmd": canonical.String(p[ph].Cmd)}
	}
	return out
}

func (p Phases) clone() Phases {
	out := make(Phases, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
