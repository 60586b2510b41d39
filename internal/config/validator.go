package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexisbeaulieu97/cadence/internal/domain/target"
	cadenceerrors "github.com/alexisbeaulieu97/cadence/pkg/errors"
)

const (
	tierAbstract = "abstract"
	tierTargets  = "targets"
)

// ValidateDocument performs schema and cross-field validation on a chain document.
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return cadenceerrors.NewValidationError("document", "document is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(doc); err != nil {
		return convertValidationError(err)
	}

	if doc.Settings.Ceiling > 0 && doc.Settings.Floor >= doc.Settings.Ceiling {
		return cadenceerrors.NewValidationError("settings.floor", fmt.Sprintf("floor %d must be below ceiling %d", doc.Settings.Floor, doc.Settings.Ceiling), nil)
	}

	tiers := make(map[string]string, len(doc.Abstract)+len(doc.Targets))
	for _, group := range []struct {
		tier  string
		specs []TargetSpec
	}{{tierAbstract, doc.Abstract}, {tierTargets, doc.Targets}} {
		for i, spec := range group.specs {
			if prev, exists := tiers[spec.Name]; exists {
				msg := fmt.Sprintf("duplicate target name %q", spec.Name)
				if prev != group.tier {
					msg = fmt.Sprintf("target %q is declared both abstract and ordinary", spec.Name)
				}
				return cadenceerrors.NewValidationError(fieldForTarget(group.tier, i, "name"), msg, nil)
			}
			tiers[spec.Name] = group.tier
		}
	}

	for i, spec := range doc.Abstract {
		if err := ValidateTarget(spec, tierAbstract, i, tiers); err != nil {
			return err
		}
	}
	for i, spec := range doc.Targets {
		if err := ValidateTarget(spec, tierTargets, i, tiers); err != nil {
			return err
		}
	}

	return nil
}

// ValidateTarget checks that every state reference inside a target resolves
// and that dependency references respect the single producer tier. tiers maps
// every declared target name to its tier.
func ValidateTarget(spec TargetSpec, tier string, index int, tiers map[string]string) error {
	if err := validatorInstance().Struct(spec); err != nil {
		return convertValidationError(err)
	}

	declared := func(state string) bool {
		_, ok := spec.States[state]
		return ok
	}

	for j, dir := range spec.Directions {
		if !declared(dir) {
			return cadenceerrors.NewValidationError(fieldForTarget(tier, index, fmt.Sprintf("directions[%d]", j)), fmt.Sprintf("references undeclared state %q", dir), nil)
		}
	}

	if spec.DefaultDirection != "" && !declared(spec.DefaultDirection) {
		return cadenceerrors.NewValidationError(fieldForTarget(tier, index, "default_direction"), fmt.Sprintf("references undeclared state %q", spec.DefaultDirection), nil)
	}

	for _, key := range sortedKeys(spec.Directives) {
		prev, next, ok := strings.Cut(key, target.PairSeparator)
		if !ok || prev == "" || next == "" {
			return cadenceerrors.NewValidationError(fieldForTarget(tier, index, "directives"), fmt.Sprintf("directive key %q must be <state>%s<state>", key, target.PairSeparator), nil)
		}
		for _, state := range []string{prev, next} {
			if !declared(state) {
				return cadenceerrors.NewValidationError(fieldForTarget(tier, index, "directives."+key), fmt.Sprintf("references undeclared state %q", state), nil)
			}
		}
	}

	for _, name := range sortedKeys(spec.States) {
		state := spec.States[name]
		field := fieldForTarget(tier, index, "states."+name)
		if state.IsEmpty() {
			return cadenceerrors.NewValidationError(field, "state must declare style, compute or from", nil)
		}

		refs := append([]string{}, state.Requires...)
		if state.From != "" {
			refs = append(refs, state.From)
		}
		for _, ref := range refs {
			switch tiers[ref] {
			case tierTargets:
				return cadenceerrors.NewValidationError(field, fmt.Sprintf("ordinary target %q is not available as a dependency", ref), nil)
			case tierAbstract:
				if tier == tierAbstract {
					return cadenceerrors.NewValidationError(field, fmt.Sprintf("abstract target %q cannot depend on abstract target %q", spec.Name, ref), nil)
				}
			}
		}
	}

	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
