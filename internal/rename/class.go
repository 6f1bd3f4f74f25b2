package rename

import (
	"fmt"

	"relocator/internal/ir"
	"relocator/internal/model"
	"relocator/internal/trace"
)

type classPlan struct {
	src         *model.ClassHolder
	name        string
	parent      string
	interfaces  []string
	methods     []*methodPlan
	annotations []*model.AnnotationHolder

	// fields is a snapshot of src's fields; fieldTypes and fieldAnnotations
	// are parallel to it and nil when field renaming is disabled.
	fields           []*model.FieldHolder
	fieldTypes       []ir.ValueType
	fieldAnnotations [][]*model.AnnotationHolder
}

func (r *Renamer) planClass(cls *model.ClassHolder, tr trace.Tracer, span uint64) (*classPlan, error) {
	at := Location{Class: cls.Name, Block: -1}
	plan := &classPlan{src: cls}

	name, err := r.mapName(cls.Name, withWhat(at, "name"))
	if err != nil {
		return nil, err
	}
	plan.name = name
	at.Class = cls.Name + " -> " + name

	if cls.Parent != "" {
		if plan.parent, err = r.mapName(cls.Parent, withWhat(at, "parent")); err != nil {
			return nil, err
		}
	}

	descriptors := make(map[string]string)
	for _, m := range cls.Methods() {
		mp, err := r.planMethod(m, cls.Name, tr, span)
		if err != nil {
			return nil, err
		}
		desc := mp.name + ir.FormatSignature(mp.signature)
		if prev, dup := descriptors[desc]; dup {
			return nil, &IRError{
				At:     withWhat(at, "method "+m.Descriptor()),
				Reason: fmt.Sprintf("renamed to %s, which collides with %s", desc, prev),
			}
		}
		descriptors[desc] = m.Descriptor()
		plan.methods = append(plan.methods, mp)
	}

	plan.fields = cls.Fields()
	if r.renameFieldTypes {
		plan.fieldTypes = make([]ir.ValueType, len(plan.fields))
		plan.fieldAnnotations = make([][]*model.AnnotationHolder, len(plan.fields))
		for i, f := range plan.fields {
			fat := withWhat(at, "field "+f.Name)
			if plan.fieldTypes[i], err = r.renameType(f.Type, fat); err != nil {
				return nil, err
			}
			if plan.fieldAnnotations[i], err = r.renameAnnotations(&f.Annotations, fat); err != nil {
				return nil, err
			}
		}
	}

	if plan.annotations, err = r.renameAnnotations(&cls.Annotations, at); err != nil {
		return nil, err
	}

	if cls.Interfaces != nil {
		plan.interfaces = make([]string, 0, len(cls.Interfaces))
	}
	for i, iface := range cls.Interfaces {
		mapped, err := r.mapName(iface, withWhat(at, fmt.Sprintf("interface %d", i)))
		if err != nil {
			return nil, err
		}
		plan.interfaces = append(plan.interfaces, mapped)
	}
	return plan, nil
}

// commit builds the renamed class. Planning has already ruled out every
// failure the containers can report, so an error here means the source
// class was modified between planning and committing.
func (p *classPlan) commit() (*model.ClassHolder, error) {
	out := model.NewClass(p.name)
	out.Modifiers = p.src.Modifiers
	out.Level = p.src.Level
	out.Parent = p.parent

	for _, mp := range p.methods {
		m, err := mp.commit()
		if err != nil {
			return nil, err
		}
		if err := out.AddMethod(m); err != nil {
			return nil, err
		}
	}

	for i, f := range p.fields {
		if p.fieldTypes != nil {
			f.Type = p.fieldTypes[i]
			f.Annotations = model.AnnotationContainer{}
			if err := addAll(&f.Annotations, p.fieldAnnotations[i]); err != nil {
				return nil, err
			}
		}
		if err := out.MoveField(f); err != nil {
			return nil, fmt.Errorf("move field %s: %w", f.Name, err)
		}
	}

	if err := addAll(&out.Annotations, p.annotations); err != nil {
		return nil, err
	}
	out.Interfaces = p.interfaces
	return out, nil
}

func addAll(c *model.AnnotationContainer, annotations []*model.AnnotationHolder) error {
	for _, a := range annotations {
		if err := c.Add(a); err != nil {
			return err
		}
	}
	return nil
}

func withWhat(at Location, what string) Location {
	at.What = what
	return at
}
