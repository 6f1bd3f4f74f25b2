package rename

import (
	"fmt"

	"relocator/internal/ir"
	"relocator/internal/model"
	"relocator/internal/trace"
)

type methodPlan struct {
	src         *model.MethodHolder
	name        string
	signature   []ir.ValueType
	annotations []*model.AnnotationHolder
	patches     []func()
}

func (r *Renamer) planMethod(m *model.MethodHolder, owner string, tr trace.Tracer, span uint64) (*methodPlan, error) {
	at := Location{Class: owner, Method: m.Descriptor(), Block: -1}
	plan := &methodPlan{src: m, name: m.Name}

	if o := m.Annotations.Get(r.overrideType); o != nil {
		v, ok := o.Values[r.overrideKey]
		if !ok {
			return nil, &IRError{At: withWhat(at, "annotation "+o.Type), Reason: fmt.Sprintf("missing %q argument", r.overrideKey)}
		}
		name, ok := v.GetString()
		if !ok || name == "" {
			return nil, &IRError{At: withWhat(at, "annotation "+o.Type), Reason: fmt.Sprintf("%q must be a non-empty string, got %s", r.overrideKey, v.Kind)}
		}
		plan.name = name
	}

	if len(m.Signature) == 0 {
		return nil, &IRError{At: withWhat(at, "signature"), Reason: "missing result type"}
	}
	plan.signature = make([]ir.ValueType, len(m.Signature))
	for i, t := range m.Signature {
		what := fmt.Sprintf("parameter %d", i)
		if i == len(m.Signature)-1 {
			what = "result"
		}
		var err error
		if plan.signature[i], err = r.renameType(t, withWhat(at, what)); err != nil {
			return nil, err
		}
	}

	var err error
	if plan.annotations, err = r.renameAnnotations(&m.Annotations, at); err != nil {
		return nil, err
	}
	if m.Program != nil {
		if plan.patches, err = r.planProgram(m.Program, at); err != nil {
			return nil, err
		}
	}

	if tr.Level().ShouldEmit(trace.KindPoint, trace.ScopeMethod) {
		detail := plan.name + ir.FormatSignature(plan.signature)
		if plan.name != m.Name {
			detail += " (override)"
		}
		trace.Point(tr, trace.ScopeMethod, "method:"+m.Descriptor(), detail, span)
	}
	return plan, nil
}

// commit rewrites the source signature entry by entry, builds the new
// method around it and patches the shared body.
func (p *methodPlan) commit() (*model.MethodHolder, error) {
	sig := p.src.Signature
	copy(sig, p.signature)

	out := model.NewMethod(p.name, sig...)
	out.Modifiers = p.src.Modifiers
	out.Level = p.src.Level
	out.Program = p.src.Program
	if err := addAll(&out.Annotations, p.annotations); err != nil {
		return nil, err
	}
	for _, apply := range p.patches {
		apply()
	}
	return out, nil
}
