// Package merge implements recursive in-place merging of canonical values,
// used for deep cloning and for functional override of recipe metadata.
package merge

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/boldpkg/bold/internal/canonical"
	berrors "github.com/boldpkg/bold/internal/errors"
)

// ListPolicy decides what happens when source and target both hold a list
// under the same key.
type ListPolicy int

const (
	// ListReplace overwrites the target list with a copy of the source list.
	// This is the policy used by Override.
	ListReplace ListPolicy = iota

	// ListIndexWise merges element i of the source into element i of the
	// target, extending the target when the source is longer. Trailing
	// target elements are kept.
	ListIndexWise

	// ListReject fails when a list would be merged into an existing list.
	ListReject
)

// String returns the policy name.
func (p ListPolicy) String() string {
	switch p {
	case ListReplace:
		return "replace"
	case ListIndexWise:
		return "index-wise"
	case ListReject:
		return "reject"
	default:
		return "unknown"
	}
}

// Merge merges source into target in place with ListReplace and returns target.
//
// For each key of source: a map value is merged recursively into the map at
// the same key of target (created when absent or not a map); any other value,
// null included, overwrites the target entry. Values copied from source are
// cloned, so later changes to source never reach target.
func Merge(source, target canonical.Map) canonical.Map {
	// ListReplace never fails.
	out, _ := With(source, target, ListReplace)
	return out
}

// With merges source into target in place using policy and returns target.
// A nil target is replaced by a new map.
func With(source, target canonical.Map, policy ListPolicy) (canonical.Map, error) {
	if target == nil {
		target = canonical.Map{}
	}
	if err := mergeMap(source, target, policy, nil); err != nil {
		return nil, err
	}
	return target, nil
}

// Clone returns a deep copy of m, built as Merge(m, {}).
func Clone(m canonical.Map) canonical.Map {
	return Merge(m, canonical.Map{})
}

// Override returns a new map holding original with updates applied.
// original is left untouched.
func Override(original, updates canonical.Map) canonical.Map {
	return Merge(updates, Clone(original))
}

func mergeMap(source, target canonical.Map, policy ListPolicy, path []string) error {
	for key, val := range source {
		at := append(path[:len(path):len(path)], key)

		switch sv := val.(type) {
		case canonical.Map:
			tv, ok := target[key].(canonical.Map)
			if !ok {
				tv = canonical.Map{}
				target[key] = tv
			}
			if err := mergeMap(sv, tv, policy, at); err != nil {
				return err
			}
		case canonical.List:
			merged, err := mergeList(sv, target[key], policy, at)
			if err != nil {
				return err
			}
			target[key] = merged
		default:
			target[key] = canonical.Clone(val)
		}
	}
	return nil
}

func mergeList(source canonical.List, existing canonical.Value, policy ListPolicy, path []string) (canonical.List, error) {
	tl, isList := existing.(canonical.List)

	switch policy {
	case ListReplace:
		return canonical.Clone(source).(canonical.List), nil
	case ListReject:
		if isList {
			return nil, fmt.Errorf("%w: refusing to merge list into list at %s",
				berrors.ErrValidation, pathString(path))
		}
		return canonical.Clone(source).(canonical.List), nil
	case ListIndexWise:
		if !isList {
			tl = canonical.List{}
		}
		for len(tl) < len(source) {
			tl = append(tl, canonical.Null{})
		}
		for i, el := range source {
			at := append(path[:len(path):len(path)], strconv.Itoa(i))
			switch sv := el.(type) {
			case canonical.Map:
				tm, ok := tl[i].(canonical.Map)
				if !ok {
					tm = canonical.Map{}
					tl[i] = tm
				}
				if err := mergeMap(sv, tm, policy, at); err != nil {
					return nil, err
				}
			case canonical.List:
				merged, err := mergeList(sv, tl[i], policy, at)
				if err != nil {
					return nil, err
				}
				tl[i] = merged
			default:
				tl[i] = canonical.Clone(el)
			}
		}
		return tl, nil
	default:
		return nil, fmt.Errorf("%w: unknown list policy %d", berrors.ErrValidation, int(policy))
	}
}

func pathString(path []string) string {
	if len(path) == 0 {
		return "<root>"
	}
	return strings.Join(path, ".")
}
