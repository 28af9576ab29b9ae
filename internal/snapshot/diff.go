package snapshot

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/gonvenience/ytbx"
	"github.com/homeport/dyff/pkg/dyff"
	"sigs.k8s.io/yaml"

	"github.com/boldpkg/bold/internal/canonical"
	"github.com/boldpkg/bold/internal/output"
	"github.com/boldpkg/bold/internal/repository"
)

// Change is a unique name that points at a different identity.
type Change struct {
	// Kind is repository.KindRecipe or repository.KindSystem.
	Kind string
	Name string
	From string
	To   string

	// Report is the YAML-aware diff of the two entities, empty when either
	// side is missing from its snapshot.
	Report string
}

// DiffResult compares two snapshots.
type DiffResult struct {
	// Added lists identities present only in the new snapshot.
	Added []string

	// Removed lists identities present only in the old snapshot.
	Removed []string

	// Retargeted lists unique names whose digest changed.
	Retargeted []Change
}

// Empty reports whether the snapshots are equivalent.
func (d *DiffResult) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Retargeted) == 0
}

// Render renders the result for a terminal.
func (d *DiffResult) Render() string {
	modified := make([]output.ModifiedItem, len(d.Retargeted))
	for i, c := range d.Retargeted {
		body := c.From + " -> " + c.To
		if c.Report != "" {
			body += "\n" + c.Report
		}
		modified[i] = output.ModifiedItem{Name: c.Kind + " " + c.Name, Diff: body}
	}
	return output.RenderDiff(d.Added, d.Removed, modified)
}

// Diff compares the old snapshot with the next one.
func Diff(old, next canonical.Map) (*DiffResult, error) {
	res := &DiffResult{}

	for _, key := range []string{repository.KeyRecipes, repository.KeySystems} {
		added, removed := keyDiff(old.GetMap(key), next.GetMap(key))
		res.Added = append(res.Added, added...)
		res.Removed = append(res.Removed, removed...)
	}

	for _, kind := range []struct{ named, store, kind string }{
		{repository.KeyNamedRecipes, repository.KeyRecipes, repository.KindRecipe},
		{repository.KeyNamedSystems, repository.KeySystems, repository.KindSystem},
	} {
		oldNamed, newNamed := old.GetMap(kind.named), next.GetMap(kind.named)
		for _, name := range sortedKeys(newNamed) {
			prev, ok := oldNamed[name]
			if !ok || canonical.Equal(prev, newNamed[name]) {
				continue
			}
			from := name + "@" + oldNamed.GetString(name)
			to := name + "@" + newNamed.GetString(name)

			change := Change{Kind: kind.kind, Name: name, From: from, To: to}
			oldEntity, oldOK := old.GetMap(kind.store)[from]
			newEntity, newOK := next.GetMap(kind.store)[to]
			if oldOK && newOK {
				report, err := compareYAML(from, to, oldEntity, newEntity)
				if err != nil {
					return nil, fmt.Errorf("comparing %s %s: %w", kind.kind, name, err)
				}
				change.Report = report
			}
			res.Retargeted = append(res.Retargeted, change)
		}
	}

	sort.Strings(res.Added)
	sort.Strings(res.Removed)
	return res, nil
}

func keyDiff(old, next canonical.Map) (added, removed []string) {
	for id := range next {
		if _, ok := old[id]; !ok {
			added = append(added, id)
		}
	}
	for id := range old {
		if _, ok := next[id]; !ok {
			removed = append(removed, id)
		}
	}
	return added, removed
}

func sortedKeys(m canonical.Map) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// compareYAML renders a dyff report between two entity documents.
func compareYAML(fromName, toName string, from, to canonical.Value) (string, error) {
	fromInput, err := yamlInput(fromName, from)
	if err != nil {
		return "", err
	}
	toInput, err := yamlInput(toName, to)
	if err != nil {
		return "", err
	}

	report, err := dyff.CompareInputFiles(fromInput, toInput)
	if err != nil {
		return "", fmt.Errorf("comparing YAML: %w", err)
	}
	if len(report.Diffs) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	writer := &dyff.HumanReport{
		Report:            report,
		DoNotInspectCerts: true,
		NoTableStyle:      true,
		OmitHeader:        true,
	}
	if err := writer.WriteReport(&buf); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return trimLines(buf.String()), nil
}

func yamlInput(name string, v canonical.Value) (ytbx.InputFile, error) {
	data, err := yaml.JSONToYAML(canonical.Marshal(v))
	if err != nil {
		return ytbx.InputFile{}, fmt.Errorf("converting %s to YAML: %w", name, err)
	}
	docs, err := ytbx.LoadYAMLDocuments(data)
	if err != nil {
		return ytbx.InputFile{}, fmt.Errorf("parsing %s: %w", name, err)
	}
	return ytbx.InputFile{Location: name, Documents: docs}, nil
}
