package style

import "errors"

// Kind tags the variant held by a Raw style.
type Kind uint8

const (
	// KindStatic holds a fixed record.
	KindStatic Kind = iota
	// KindComputed holds a function of the dependency context.
	KindComputed
)

func (k Kind) String() string {
	switch k {
	case KindComputed:
		return "computed"
	default:
		return "static"
	}
}

// ComputeFunc derives a record from the dependency context. It must not depend on
// sibling states being resolved first and should return an error wrapping
// ErrMissingDependency when something it needs is absent.
type ComputeFunc func(Dependencies) (Record, error)

// Raw is a state's style before resolution: either a static record or a
// computed one.
type Raw struct {
	kind    Kind
	static  Record
	compute ComputeFunc
}

// Static wraps a fixed record.
func Static(r Record) Raw {
	return Raw{kind: KindStatic, static: r}
}

// Computed wraps a function of the dependency context.
func Computed(fn ComputeFunc) Raw {
	return Raw{kind: KindComputed, compute: fn}
}

// Kind reports which variant r holds.
func (r Raw) Kind() Kind {
	return r.kind
}

// Resolve produces the record for raw. Computed styles see global overlaid with
// addOns; static styles are returned as a copy. A missing dependency yields an
// empty record rather than an error.
func Resolve(raw Raw, global, addOns Dependencies) (Record, error) {
	switch raw.kind {
	case KindComputed:
		if raw.compute == nil {
			return Record{}, nil
		}
		rec, err := raw.compute(global.With(addOns))
		if err != nil {
			if errors.Is(err, ErrMissingDependency) {
				return Record{}, nil
			}
			return nil, err
		}
		return rec.Clone(), nil
	default:
		return raw.static.Clone(), nil
	}
}
