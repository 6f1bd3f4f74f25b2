package ir

import (
	"fmt"
	"strings"
)

// PrimitiveKind enumerates the primitive value types.
type PrimitiveKind uint8

const (
	// PrimitiveBoolean is the boolean primitive.
	PrimitiveBoolean PrimitiveKind = iota
	// PrimitiveByte is the byte primitive.
	PrimitiveByte
	// PrimitiveShort is the short primitive.
	PrimitiveShort
	// PrimitiveChar is the char primitive.
	PrimitiveChar
	// PrimitiveInt is the int primitive.
	PrimitiveInt
	// PrimitiveLong is the long primitive.
	PrimitiveLong
	// PrimitiveFloat is the float primitive.
	PrimitiveFloat
	// PrimitiveDouble is the double primitive.
	PrimitiveDouble
	// PrimitiveVoid marks a method without a result.
	PrimitiveVoid
)

var primitiveDescriptors = [...]byte{
	PrimitiveBoolean: 'Z',
	PrimitiveByte:    'B',
	PrimitiveShort:   'S',
	PrimitiveChar:    'C',
	PrimitiveInt:     'I',
	PrimitiveLong:    'J',
	PrimitiveFloat:   'F',
	PrimitiveDouble:  'D',
	PrimitiveVoid:    'V',
}

var primitiveNames = [...]string{
	PrimitiveBoolean: "boolean",
	PrimitiveByte:    "byte",
	PrimitiveShort:   "short",
	PrimitiveChar:    "char",
	PrimitiveInt:     "int",
	PrimitiveLong:    "long",
	PrimitiveFloat:   "float",
	PrimitiveDouble:  "double",
	PrimitiveVoid:    "void",
}

func (k PrimitiveKind) String() string {
	if int(k) < len(primitiveNames) {
		return primitiveNames[k]
	}
	return fmt.Sprintf("primitive(%d)", uint8(k))
}

// ValueType describes the shape of a value: a primitive, an array of some
// item type, or an object of a named class. The set of variants is closed.
type ValueType interface {
	// String renders the type as a descriptor with dotted class names.
	String() string
	valueType()
}

// Primitive is a primitive value type.
type Primitive struct {
	Kind PrimitiveKind
}

// Array is an array of Item.
type Array struct {
	Item ValueType
}

// Object is a reference to the class named ClassName (dotted form).
type Object struct {
	ClassName string
}

func (Primitive) valueType() {}
func (Array) valueType()     {}
func (Object) valueType()    {}

func (p Primitive) String() string {
	if int(p.Kind) < len(primitiveDescriptors) {
		return string(primitiveDescriptors[p.Kind])
	}
	return "?"
}

func (a Array) String() string {
	if a.Item == nil {
		return "[?"
	}
	return "[" + a.Item.String()
}

func (o Object) String() string {
	return "L" + o.ClassName + ";"
}

// Predeclared primitive types.
var (
	Boolean ValueType = Primitive{Kind: PrimitiveBoolean}
	Byte    ValueType = Primitive{Kind: PrimitiveByte}
	Short   ValueType = Primitive{Kind: PrimitiveShort}
	Char    ValueType = Primitive{Kind: PrimitiveChar}
	Int     ValueType = Primitive{Kind: PrimitiveInt}
	Long    ValueType = Primitive{Kind: PrimitiveLong}
	Float   ValueType = Primitive{Kind: PrimitiveFloat}
	Double  ValueType = Primitive{Kind: PrimitiveDouble}
	Void    ValueType = Primitive{Kind: PrimitiveVoid}
)

// ArrayOf returns an array type with the given item type.
func ArrayOf(item ValueType) ValueType {
	return Array{Item: item}
}

// ObjectOf returns an object type for the named class.
func ObjectOf(className string) ValueType {
	return Object{ClassName: className}
}

// Equal reports whether two value types are structurally equal.
func Equal(a, b ValueType) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case Primitive:
		y, ok := b.(Primitive)
		return ok && x.Kind == y.Kind
	case Array:
		y, ok := b.(Array)
		return ok && Equal(x.Item, y.Item)
	case Object:
		y, ok := b.(Object)
		return ok && x.ClassName == y.ClassName
	}
	return false
}

// Depth returns the array nesting depth of t (0 for non-arrays).
func Depth(t ValueType) int {
	n := 0
	for {
		a, ok := t.(Array)
		if !ok {
			return n
		}
		n++
		t = a.Item
	}
}

// ParseValueType parses a single descriptor such as "I", "[J" or "[La/b/C;".
// Both '/' and '.' are accepted as package separators; class names are
// returned in dotted form.
func ParseValueType(desc string) (ValueType, error) {
	t, rest, err := parseValueType(desc)
	if err != nil {
		return nil, err
	}
	if rest != "" {
		return nil, fmt.Errorf("descriptor %q: trailing %q", desc, rest)
	}
	return t, nil
}

// ParseSignature parses a method descriptor "(params)result" into a slice
// holding the parameter types followed by the result type.
func ParseSignature(desc string) ([]ValueType, error) {
	if !strings.HasPrefix(desc, "(") {
		return nil, fmt.Errorf("signature %q: missing '('", desc)
	}
	rest := desc[1:]
	var sig []ValueType
	for {
		if rest == "" {
			return nil, fmt.Errorf("signature %q: missing ')'", desc)
		}
		if rest[0] == ')' {
			rest = rest[1:]
			break
		}
		t, tail, err := parseValueType(rest)
		if err != nil {
			return nil, fmt.Errorf("signature %q: %w", desc, err)
		}
		if Equal(t, Void) {
			return nil, fmt.Errorf("signature %q: void parameter", desc)
		}
		sig = append(sig, t)
		rest = tail
	}
	result, err := ParseValueType(rest)
	if err != nil {
		return nil, fmt.Errorf("signature %q: %w", desc, err)
	}
	return append(sig, result), nil
}

// FormatSignature renders params+result back into "(params)result".
func FormatSignature(sig []ValueType) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, t := range sig {
		if i == len(sig)-1 {
			sb.WriteByte(')')
		}
		if t == nil {
			sb.WriteByte('?')
			continue
		}
		sb.WriteString(t.String())
	}
	if len(sig) == 0 {
		sb.WriteByte(')')
	}
	return sb.String()
}

func parseValueType(s string) (ValueType, string, error) {
	if s == "" {
		return nil, "", fmt.Errorf("empty descriptor")
	}
	switch s[0] {
	case '[':
		item, rest, err := parseValueType(s[1:])
		if err != nil {
			return nil, "", err
		}
		if Equal(item, Void) {
			return nil, "", fmt.Errorf("array of void")
		}
		return ArrayOf(item), rest, nil
	case 'L':
		end := strings.IndexByte(s, ';')
		if end < 0 {
			return nil, "", fmt.Errorf("unterminated class name in %q", s)
		}
		name := s[1:end]
		if name == "" {
			return nil, "", fmt.Errorf("empty class name in %q", s)
		}
		return ObjectOf(strings.ReplaceAll(name, "/", ".")), s[end+1:], nil
	}
	for kind, c := range primitiveDescriptors {
		if s[0] == c {
			return Primitive{Kind: PrimitiveKind(kind)}, s[1:], nil
		}
	}
	return nil, "", fmt.Errorf("unknown descriptor %q", s[:1])
}
