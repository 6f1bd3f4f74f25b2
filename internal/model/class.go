package model

import (
	"errors"
	"fmt"

	"relocator/internal/ir"
)

var (
	// ErrFieldOwned is returned when adding a field that still belongs to a class.
	ErrFieldOwned = errors.New("field already has an owner")
	// ErrMethodOwned is returned when adding a method that already belongs to a class.
	ErrMethodOwned = errors.New("method already has an owner")
	// ErrDuplicateField is returned when a class already declares a field with the same name.
	ErrDuplicateField = errors.New("duplicate field")
	// ErrDuplicateMethod is returned when a class already declares a method with the same descriptor.
	ErrDuplicateMethod = errors.New("duplicate method")
)

// FieldHolder is a field declaration. A field belongs to at most one class.
type FieldHolder struct {
	Name         string
	Type         ir.ValueType
	Modifiers    ElementModifier
	Level        AccessLevel
	InitialValue any
	Annotations  AnnotationContainer

	owner *ClassHolder
}

// NewField returns a detached field.
func NewField(name string, typ ir.ValueType) *FieldHolder {
	return &FieldHolder{Name: name, Type: typ}
}

// Owner returns the class declaring f, or nil for a detached field.
func (f *FieldHolder) Owner() *ClassHolder {
	if f == nil {
		return nil
	}
	return f.owner
}

// MethodHolder is a method declaration. Signature holds the parameter
// types followed by the result type.
type MethodHolder struct {
	Name        string
	Signature   []ir.ValueType
	Modifiers   ElementModifier
	Level       AccessLevel
	Program     *ir.Program
	Annotations AnnotationContainer

	owner *ClassHolder
}

// NewMethod returns a detached method. The signature slice is retained, not copied.
func NewMethod(name string, signature ...ir.ValueType) *MethodHolder {
	return &MethodHolder{Name: name, Signature: signature}
}

// Owner returns the class declaring m, or nil for a detached method.
func (m *MethodHolder) Owner() *ClassHolder {
	if m == nil {
		return nil
	}
	return m.owner
}

// Descriptor returns name plus signature, the method's identity inside a class.
func (m *MethodHolder) Descriptor() string {
	return m.Name + ir.FormatSignature(m.Signature)
}

// ResultType returns the last signature entry, or nil for an empty signature.
func (m *MethodHolder) ResultType() ir.ValueType {
	if len(m.Signature) == 0 {
		return nil
	}
	return m.Signature[len(m.Signature)-1]
}

// ParameterTypes returns the signature without the result type.
func (m *MethodHolder) ParameterTypes() []ir.ValueType {
	if len(m.Signature) == 0 {
		return nil
	}
	return m.Signature[:len(m.Signature)-1]
}

// ClassHolder is a class declaration. Parent is empty for a class without
// a superclass.
type ClassHolder struct {
	Name        string
	Parent      string
	Interfaces  []string
	Modifiers   ElementModifier
	Level       AccessLevel
	Annotations AnnotationContainer

	methods     []*MethodHolder
	methodIndex map[string]int
	fields      []*FieldHolder
	fieldIndex  map[string]int
}

// NewClass returns an empty class.
func NewClass(name string) *ClassHolder {
	return &ClassHolder{Name: name}
}

// AddMethod declares m in c.
func (c *ClassHolder) AddMethod(m *MethodHolder) error {
	if m == nil {
		return errors.New("nil method")
	}
	if m.owner != nil {
		return fmt.Errorf("%w: %s is declared by %s", ErrMethodOwned, m.Descriptor(), m.owner.Name)
	}
	desc := m.Descriptor()
	if c.methodIndex == nil {
		c.methodIndex = make(map[string]int)
	}
	if _, ok := c.methodIndex[desc]; ok {
		return fmt.Errorf("%w: %s.%s", ErrDuplicateMethod, c.Name, desc)
	}
	c.methodIndex[desc] = len(c.methods)
	c.methods = append(c.methods, m)
	m.owner = c
	return nil
}

// Methods returns the declared methods in declaration order.
func (c *ClassHolder) Methods() []*MethodHolder {
	return append([]*MethodHolder(nil), c.methods...)
}

// Method returns the method with the given descriptor or nil.
func (c *ClassHolder) Method(descriptor string) *MethodHolder {
	if i, ok := c.methodIndex[descriptor]; ok {
		return c.methods[i]
	}
	return nil
}

// AddField declares f in c. The field must be detached first.
func (c *ClassHolder) AddField(f *FieldHolder) error {
	if f == nil {
		return errors.New("nil field")
	}
	if f.owner != nil {
		return fmt.Errorf("%w: %s is declared by %s", ErrFieldOwned, f.Name, f.owner.Name)
	}
	if c.fieldIndex == nil {
		c.fieldIndex = make(map[string]int)
	}
	if _, ok := c.fieldIndex[f.Name]; ok {
		return fmt.Errorf("%w: %s.%s", ErrDuplicateField, c.Name, f.Name)
	}
	c.fieldIndex[f.Name] = len(c.fields)
	c.fields = append(c.fields, f)
	f.owner = c
	return nil
}

// RemoveField detaches f from c. It reports false when c does not declare f.
func (c *ClassHolder) RemoveField(f *FieldHolder) bool {
	if f == nil || f.owner != c {
		return false
	}
	i, ok := c.fieldIndex[f.Name]
	if !ok || c.fields[i] != f {
		return false
	}
	c.fields = append(c.fields[:i], c.fields[i+1:]...)
	delete(c.fieldIndex, f.Name)
	for k := i; k < len(c.fields); k++ {
		c.fieldIndex[c.fields[k].Name] = k
	}
	f.owner = nil
	return true
}

// Fields returns the declared fields in declaration order.
func (c *ClassHolder) Fields() []*FieldHolder {
	return append([]*FieldHolder(nil), c.fields...)
}

// Field returns the field with the given name or nil.
func (c *ClassHolder) Field(name string) *FieldHolder {
	if i, ok := c.fieldIndex[name]; ok {
		return c.fields[i]
	}
	return nil
}

// MoveField detaches f from its current owner and declares it in c.
// On failure f stays with its previous owner.
func (c *ClassHolder) MoveField(f *FieldHolder) error {
	if f == nil {
		return errors.New("nil field")
	}
	if c.Field(f.Name) != nil {
		return fmt.Errorf("%w: %s.%s", ErrDuplicateField, c.Name, f.Name)
	}
	if prev := f.owner; prev != nil && !prev.RemoveField(f) {
		return fmt.Errorf("field %s: inconsistent owner %s", f.Name, prev.Name)
	}
	return c.AddField(f)
}
