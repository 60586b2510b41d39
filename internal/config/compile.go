package config

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/alexisbeaulieu97/cadence/internal/domain/chain"
	"github.com/alexisbeaulieu97/cadence/internal/domain/style"
	"github.com/alexisbeaulieu97/cadence/internal/domain/target"
	cadenceerrors "github.com/alexisbeaulieu97/cadence/pkg/errors"
)

// Compile turns a validated document into a chain. Compute expressions are
// compiled once here; a syntax error is reported as a ValidationError.
func Compile(doc *Document) (*chain.Chain, error) {
	if doc == nil {
		return nil, cadenceerrors.NewValidationError("document", "document is nil", nil)
	}

	ch := &chain.Chain{Name: doc.Name}
	for i, spec := range doc.Abstract {
		t, err := compileTarget(spec, tierAbstract, i)
		if err != nil {
			return nil, err
		}
		ch.Abstract = append(ch.Abstract, t)
	}
	for i, spec := range doc.Targets {
		t, err := compileTarget(spec, tierTargets, i)
		if err != nil {
			return nil, err
		}
		ch.Targets = append(ch.Targets, t)
	}

	if err := ch.Validate(); err != nil {
		return nil, err
	}
	return ch, nil
}

func compileTarget(spec TargetSpec, tier string, index int) (*target.Target, error) {
	t := &target.Target{
		Name:   spec.Name,
		States: make(map[string]style.Raw, len(spec.States)),
		Meta: target.Meta{
			Directions:       append([]string(nil), spec.Directions...),
			DefaultDirection: spec.DefaultDirection,
		},
	}

	if len(spec.Directives) > 0 {
		t.Meta.Directives = make(map[string]style.Record, len(spec.Directives))
		for key, override := range spec.Directives {
			t.Meta.Directives[key] = style.Record(override).Clone()
		}
	}

	for _, name := range sortedKeys(spec.States) {
		raw, err := compileState(spec.States[name], fieldForTarget(tier, index, "states."+name))
		if err != nil {
			return nil, err
		}
		t.States[name] = raw
	}

	return t, nil
}

type property struct {
	name    string
	program *vm.Program
}

func compileState(state StateSpec, field string) (style.Raw, error) {
	literal := style.Record(state.Style).Clone()
	if state.IsStatic() {
		return style.Static(literal), nil
	}

	props := make([]property, 0, len(state.Compute))
	for _, name := range sortedKeys(state.Compute) {
		program, err := expr.Compile(state.Compute[name], expr.Env(map[string]any{}), expr.AllowUndefinedVariables())
		if err != nil {
			return style.Raw{}, cadenceerrors.NewValidationError(field+".compute."+name, "invalid expression", err)
		}
		props = append(props, property{name: name, program: program})
	}

	from := state.From
	requires := append([]string(nil), state.Requires...)

	return style.Computed(func(deps style.Dependencies) (style.Record, error) {
		for _, name := range requires {
			if _, err := deps.Require(name); err != nil {
				return nil, err
			}
		}

		var base style.Record
		if from != "" {
			rec, err := deps.Record(from)
			if err != nil {
				return nil, err
			}
			base = rec
		}

		out := style.Merge(base, literal)
		if len(props) == 0 {
			return out, nil
		}

		env := map[string]any(deps)
		for _, p := range props {
			value, err := expr.Run(p.program, env)
			if err != nil {
				// Evaluating against absent or partial dependencies is expected
				// before measurements exist.
				return nil, fmt.Errorf("%w: %s: %v", style.ErrMissingDependency, p.name, err)
			}
			if value == nil {
				delete(out, p.name)
				continue
			}
			out[p.name] = value
		}
		return out, nil
	}), nil
}
