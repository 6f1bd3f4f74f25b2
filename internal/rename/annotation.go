package rename

import (
	"fmt"
	"slices"

	"relocator/internal/model"
)

// renameAnnotations returns renamed copies of every annotation in src
// except the override annotation. Two source annotations whose types map
// to the same name are reported as malformed input.
func (r *Renamer) renameAnnotations(src *model.AnnotationContainer, at Location) ([]*model.AnnotationHolder, error) {
	var out []*model.AnnotationHolder
	seen := make(map[string]string)
	for _, a := range src.All() {
		if a.Type == r.overrideType {
			continue
		}
		aat := withWhat(at, "annotation "+a.Type)
		renamed, err := r.renameAnnotation(a, aat)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[renamed.Type]; dup {
			return nil, &IRError{At: aat, Reason: fmt.Sprintf("renamed to %s, which collides with %s", renamed.Type, prev)}
		}
		seen[renamed.Type] = a.Type
		out = append(out, renamed)
	}
	return out, nil
}

func (r *Renamer) renameAnnotation(a *model.AnnotationHolder, at Location) (*model.AnnotationHolder, error) {
	typ, err := r.mapName(a.Type, at)
	if err != nil {
		return nil, err
	}
	out := model.NewAnnotation(typ)
	for key, v := range a.Values {
		if out.Values[key], err = r.renameValue(v, withWhat(at, fmt.Sprintf("annotation %s argument %s", a.Type, key))); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Renamer) renameValue(v model.AnnotationValue, at Location) (model.AnnotationValue, error) {
	if r.annotationValues == CopyAnnotationValues {
		return copyValue(v), nil
	}
	switch v.Kind {
	case model.ValueClass:
		t, err := r.renameType(v.Type, at)
		if err != nil {
			return v, err
		}
		v.Type = t
	case model.ValueEnum:
		owner, err := r.mapName(v.EnumClass, at)
		if err != nil {
			return v, err
		}
		v.EnumClass = owner
	case model.ValueAnnotation:
		if v.Annotation == nil {
			return v, &IRError{At: at, Reason: "nested annotation is nil"}
		}
		nested, err := r.renameAnnotation(v.Annotation, at)
		if err != nil {
			return v, err
		}
		v.Annotation = nested
	case model.ValueList:
		if v.List == nil {
			break
		}
		items := make([]model.AnnotationValue, len(v.List))
		for i, item := range v.List {
			var err error
			if items[i], err = r.renameValue(item, at); err != nil {
				return v, err
			}
		}
		v.List = items
	}
	return v, nil
}

// copyValue deep-copies v so the result shares no lists or nested
// annotations with the source.
func copyValue(v model.AnnotationValue) model.AnnotationValue {
	switch v.Kind {
	case model.ValueAnnotation:
		if v.Annotation != nil {
			nested := &model.AnnotationHolder{Type: v.Annotation.Type, Values: make(map[string]model.AnnotationValue, len(v.Annotation.Values))}
			for k, nv := range v.Annotation.Values {
				nested.Values[k] = copyValue(nv)
			}
			v.Annotation = nested
		}
	case model.ValueList:
		v.List = slices.Clone(v.List)
		for i := range v.List {
			v.List[i] = copyValue(v.List[i])
		}
	}
	return v
}
