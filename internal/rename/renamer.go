// Package rename rewrites every class-name reference of a class through a
// mapper: the class name, parent, interfaces, member signatures, annotation
// types and every class name embedded in method bodies.
//
// Renaming runs in two phases. Planning calls the mapper for every
// reference and checks the input, without touching it. Committing builds
// the new class and method containers, moves fields over, rewrites method
// signatures positionally and patches instructions in place. A mapper
// failure or malformed input therefore leaves the source class untouched.
//
// The renamer needs exclusive access to the class it works on, since
// method bodies are shared with the result and patched in place. Distinct
// classes may be renamed concurrently; see RenameClasses.
package rename

import (
	"errors"
	"strconv"

	"relocator/internal/ir"
	"relocator/internal/mapper"
	"relocator/internal/model"
	"relocator/internal/trace"
)

const (
	// DefaultOverrideAnnotation is the method annotation carrying an emitted-name override.
	DefaultOverrideAnnotation = "relocator.annotation.Rename"
	// DefaultOverrideKey is the argument of the override annotation holding the name.
	DefaultOverrideKey = "value"
)

// AnnotationValueMode selects how annotation arguments are carried over.
type AnnotationValueMode uint8

const (
	// RenameClassValues rewrites class literals, enum owners and nested
	// annotation types found in arguments; other values are copied.
	RenameClassValues AnnotationValueMode = iota
	// CopyAnnotationValues copies every argument unchanged.
	CopyAnnotationValues
)

// Renamer rewrites class references through a mapper. It holds no state
// between calls and is safe for concurrent use on distinct classes.
type Renamer struct {
	mapper           mapper.Mapper
	overrideType     string
	overrideKey      string
	renameFieldTypes bool
	annotationValues AnnotationValueMode
	tracer           trace.Tracer
	progress         ProgressSink
}

// Option configures a Renamer.
type Option func(*Renamer)

// WithOverrideAnnotation sets the annotation type and argument key that
// override a method's emitted name.
func WithOverrideAnnotation(typ, key string) Option {
	return func(r *Renamer) {
		r.overrideType, r.overrideKey = typ, key
	}
}

// WithFieldTypes controls whether field types and field annotations are
// renamed when fields move to the new class. Enabled by default.
func WithFieldTypes(enabled bool) Option {
	return func(r *Renamer) { r.renameFieldTypes = enabled }
}

// WithAnnotationValues sets how annotation arguments are carried over.
func WithAnnotationValues(mode AnnotationValueMode) Option {
	return func(r *Renamer) { r.annotationValues = mode }
}

// WithTracer sets the tracer used by RenameClass and RenameMethod.
func WithTracer(t trace.Tracer) Option {
	return func(r *Renamer) { r.tracer = t }
}

// New returns a renamer driven by m.
func New(m mapper.Mapper, opts ...Option) *Renamer {
	r := &Renamer{
		mapper:           m,
		overrideType:     DefaultOverrideAnnotation,
		overrideKey:      DefaultOverrideKey,
		renameFieldTypes: true,
		annotationValues: RenameClassValues,
		tracer:           trace.Nop,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.tracer == nil {
		r.tracer = trace.Nop
	}
	return r
}

// RenameClass returns a renamed copy of cls. Methods are rebuilt around the
// original bodies, which are patched in place; fields are moved from cls to
// the result, so cls reports no fields afterwards. On error cls is left
// unchanged.
//
// After a successful rename cls is spent: its methods' signatures hold the
// new types while cls still indexes them by their old descriptors. Look
// methods up on the result instead.
func (r *Renamer) RenameClass(cls *model.ClassHolder) (*model.ClassHolder, error) {
	return r.renameClass(cls, r.tracer, 0)
}

func (r *Renamer) renameClass(cls *model.ClassHolder, tr trace.Tracer, parent uint64) (*model.ClassHolder, error) {
	if cls == nil {
		return nil, &IRError{At: Location{Block: -1}, Reason: "nil class"}
	}
	span := trace.Begin(tr, trace.ScopeClass, "class:"+cls.Name, parent)
	plan, err := r.planClass(cls, tr, span.ID())
	if err != nil {
		span.Fail(err)
		return nil, err
	}
	out, err := plan.commit()
	if err != nil {
		span.Fail(err)
		return nil, err
	}
	span.WithExtra("methods", strconv.Itoa(len(plan.methods))).
		WithExtra("fields", strconv.Itoa(len(plan.fields))).
		End(out.Name)
	return out, nil
}

// RenameMethod returns a renamed, detached copy of m. The copy shares m's
// body, which is patched in place, and m's signature slice, which is
// rewritten entry by entry, so m's owner no longer finds m under
// m.Descriptor(). On error m is left unchanged.
func (r *Renamer) RenameMethod(m *model.MethodHolder) (*model.MethodHolder, error) {
	if m == nil {
		return nil, &IRError{At: Location{Block: -1}, Reason: "nil method"}
	}
	owner := ""
	if o := m.Owner(); o != nil {
		owner = o.Name
	}
	plan, err := r.planMethod(m, owner, r.tracer, 0)
	if err != nil {
		trace.Error(r.tracer, trace.ScopeMethod, "method:"+m.Descriptor(), err, 0)
		return nil, err
	}
	return plan.commit()
}

// RenameType returns t with every class name mapped. Array depth and
// primitive kinds are preserved.
func (r *Renamer) RenameType(t ir.ValueType) (ir.ValueType, error) {
	return r.renameType(t, Location{Block: -1, What: "type"})
}

// RenameProgram patches every class reference in p in place. On error p is
// left unchanged.
func (r *Renamer) RenameProgram(p *ir.Program) error {
	patches, err := r.planProgram(p, Location{Block: -1})
	if err != nil {
		return err
	}
	for _, apply := range patches {
		apply()
	}
	return nil
}

func (r *Renamer) mapName(name string, at Location) (string, error) {
	if name == "" {
		return "", &IRError{At: at, Reason: "empty class name"}
	}
	to, err := r.mapper.Map(name)
	if err != nil {
		return "", &MapError{At: at, Name: name, Err: err}
	}
	if to == "" {
		return "", &MapError{At: at, Name: name, Err: errors.New("mapper returned an empty name")}
	}
	return to, nil
}

func (r *Renamer) renameType(t ir.ValueType, at Location) (ir.ValueType, error) {
	switch x := t.(type) {
	case nil:
		return nil, &IRError{At: at, Reason: "missing type"}
	case ir.Primitive:
		return x, nil
	case ir.Array:
		if x.Item == nil {
			return nil, &IRError{At: at, Reason: "array without item type"}
		}
		item, err := r.renameType(x.Item, at)
		if err != nil {
			return nil, err
		}
		return ir.ArrayOf(item), nil
	case ir.Object:
		name, err := r.mapName(x.ClassName, at)
		if err != nil {
			return nil, err
		}
		return ir.ObjectOf(name), nil
	}
	return nil, &IRError{At: at, Reason: "unknown type variant"}
}
