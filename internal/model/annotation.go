package model

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"relocator/internal/ir"
)

// ErrDuplicateAnnotation is returned when a container already holds an
// annotation of the same type.
var ErrDuplicateAnnotation = errors.New("duplicate annotation")

// AnnotationValueKind distinguishes annotation argument kinds.
type AnnotationValueKind uint8

const (
	ValueBoolean AnnotationValueKind = iota
	ValueByte
	ValueShort
	ValueInt
	ValueLong
	ValueFloat
	ValueDouble
	ValueString
	// ValueClass is a class literal argument.
	ValueClass
	// ValueEnum is an enum constant: owning class plus constant name.
	ValueEnum
	// ValueAnnotation is a nested annotation.
	ValueAnnotation
	// ValueList is an array argument.
	ValueList
)

var valueKindNames = [...]string{"boolean", "byte", "short", "int", "long", "float", "double", "string", "class", "enum", "annotation", "list"}

func (k AnnotationValueKind) String() string {
	if int(k) < len(valueKindNames) {
		return valueKindNames[k]
	}
	return fmt.Sprintf("value(%d)", uint8(k))
}

// AnnotationValue is a single annotation argument. Integral kinds share Int,
// floating kinds share Float.
type AnnotationValue struct {
	Kind AnnotationValueKind

	Bool   bool
	Int    int64
	Float  float64
	String string

	Type ir.ValueType

	EnumClass    string
	EnumConstant string

	Annotation *AnnotationHolder
	List       []AnnotationValue
}

func BoolValue(b bool) AnnotationValue      { return AnnotationValue{Kind: ValueBoolean, Bool: b} }
func IntValue(n int32) AnnotationValue      { return AnnotationValue{Kind: ValueInt, Int: int64(n)} }
func LongValue(n int64) AnnotationValue     { return AnnotationValue{Kind: ValueLong, Int: n} }
func DoubleValue(f float64) AnnotationValue { return AnnotationValue{Kind: ValueDouble, Float: f} }
func StringValue(s string) AnnotationValue  { return AnnotationValue{Kind: ValueString, String: s} }

// ClassValue returns a class literal argument.
func ClassValue(t ir.ValueType) AnnotationValue {
	return AnnotationValue{Kind: ValueClass, Type: t}
}

// EnumValue returns an enum constant argument.
func EnumValue(className, constant string) AnnotationValue {
	return AnnotationValue{Kind: ValueEnum, EnumClass: className, EnumConstant: constant}
}

// NestedValue returns a nested annotation argument.
func NestedValue(a *AnnotationHolder) AnnotationValue {
	return AnnotationValue{Kind: ValueAnnotation, Annotation: a}
}

// ListValue returns an array argument.
func ListValue(items ...AnnotationValue) AnnotationValue {
	return AnnotationValue{Kind: ValueList, List: items}
}

// GetString returns the string payload when v is a string argument.
func (v AnnotationValue) GetString() (string, bool) {
	if v.Kind != ValueString {
		return "", false
	}
	return v.String, true
}

// Format renders v for listings.
func (v AnnotationValue) Format() string {
	switch v.Kind {
	case ValueBoolean:
		return fmt.Sprint(v.Bool)
	case ValueByte, ValueShort, ValueInt, ValueLong:
		return fmt.Sprint(v.Int)
	case ValueFloat, ValueDouble:
		return fmt.Sprint(v.Float)
	case ValueString:
		return fmt.Sprintf("%q", v.String)
	case ValueClass:
		if v.Type == nil {
			return "?.class"
		}
		return v.Type.String() + ".class"
	case ValueEnum:
		return v.EnumClass + "." + v.EnumConstant
	case ValueAnnotation:
		return v.Annotation.Format()
	case ValueList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = item.Format()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "?"
}

// AnnotationHolder is an annotation instance: a type and named arguments.
type AnnotationHolder struct {
	Type   string
	Values map[string]AnnotationValue
}

// NewAnnotation returns an annotation of the given type without arguments.
func NewAnnotation(typ string) *AnnotationHolder {
	return &AnnotationHolder{Type: typ, Values: make(map[string]AnnotationValue)}
}

// Format renders the annotation as @Type(k=v, ...) with sorted keys.
func (a *AnnotationHolder) Format() string {
	if a == nil {
		return "@?"
	}
	if len(a.Values) == 0 {
		return "@" + a.Type
	}
	keys := slices.Sorted(maps.Keys(a.Values))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + a.Values[k].Format()
	}
	return "@" + a.Type + "(" + strings.Join(parts, ", ") + ")"
}

// AnnotationContainer is an ordered set of annotations keyed by type.
type AnnotationContainer struct {
	items []*AnnotationHolder
	index map[string]int
}

// Add appends a. It fails when an annotation of the same type is present.
func (c *AnnotationContainer) Add(a *AnnotationHolder) error {
	if a == nil {
		return errors.New("nil annotation")
	}
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if _, ok := c.index[a.Type]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAnnotation, a.Type)
	}
	c.index[a.Type] = len(c.items)
	c.items = append(c.items, a)
	return nil
}

// Get returns the annotation of the given type or nil.
func (c *AnnotationContainer) Get(typ string) *AnnotationHolder {
	if c == nil {
		return nil
	}
	if i, ok := c.index[typ]; ok {
		return c.items[i]
	}
	return nil
}

// Remove drops the annotation of the given type and reports whether it was present.
func (c *AnnotationContainer) Remove(typ string) bool {
	i, ok := c.index[typ]
	if !ok {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	delete(c.index, typ)
	for k := i; k < len(c.items); k++ {
		c.index[c.items[k].Type] = k
	}
	return true
}

// All returns the annotations in insertion order.
func (c *AnnotationContainer) All() []*AnnotationHolder {
	if c == nil {
		return nil
	}
	return append([]*AnnotationHolder(nil), c.items...)
}

// Len returns the number of annotations.
func (c *AnnotationContainer) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}
