// Package archive stores classes on disk as msgpack. Classes are flattened
// into plain records first: types become descriptors, variables and blocks
// become indexes, and every instruction becomes an opcode plus operands.
package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"relocator/internal/model"
)

// SchemaVersion is bumped whenever the record layout changes.
const SchemaVersion uint16 = 1

// ErrSchema is returned for archives written with another schema version.
var ErrSchema = errors.New("archive schema mismatch")

// File is the top-level archive record.
type File struct {
	Schema  uint16
	Classes []Class
}

// Class is a flattened model.ClassHolder.
type Class struct {
	Name        string
	Parent      string
	Interfaces  []string
	Modifiers   uint16
	Level       uint8
	Annotations []Annotation
	Fields      []Field
	Methods     []Method
}

// Field is a flattened model.FieldHolder.
type Field struct {
	Name        string
	Type        string
	Modifiers   uint16
	Level       uint8
	Initial     *Constant
	Annotations []Annotation
}

// Constant is a field's initial value.
type Constant struct {
	Kind   uint8 // see constKind
	Int    int64
	Float  float64
	String string
	Bool   bool
}

// Method is a flattened model.MethodHolder. Body is nil for methods
// without code.
type Method struct {
	Name        string
	Signature   []string
	Modifiers   uint16
	Level       uint8
	Annotations []Annotation
	Body        *Program
}

// Annotation is a flattened model.AnnotationHolder.
type Annotation struct {
	Type   string
	Values map[string]Value
}

// Value is a flattened model.AnnotationValue.
type Value struct {
	Kind         uint8
	Bool         bool
	Int          int64
	Float        float64
	String       string
	Type         string
	EnumClass    string
	EnumConstant string
	Annotation   *Annotation
	List         []Value
}

// Program is a flattened ir.Program.
type Program struct {
	Variables []string
	Blocks    [][]Instr
}

// Instr is one instruction. Vars and Blocks hold indexes into the
// program, -1 standing for an absent operand; the meaning of every slot
// depends on Op.
type Instr struct {
	Op     uint8
	Vars   []int32
	Blocks []int32
	Cases  []int32
	Type   string
	Class  string
	Name   string
	Sig    []string
	Int    int64
	Float  float64
	String string
	Sub    uint8
	Sub2   uint8
}

// Encode writes classes to w.
func Encode(w io.Writer, classes []*model.ClassHolder) error {
	f, err := flatten(classes)
	if err != nil {
		return err
	}
	return msgpack.NewEncoder(w).Encode(f)
}

// Decode reads classes from r.
func Decode(r io.Reader) ([]*model.ClassHolder, error) {
	var f File
	if err := msgpack.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode archive: %w", err)
	}
	if f.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchema, f.Schema, SchemaVersion)
	}
	return inflate(&f)
}

// WriteFile encodes classes into path, replacing it atomically.
func WriteFile(path string, classes []*model.ClassHolder) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err := Encode(f, classes); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// ReadFile decodes the archive at path.
func ReadFile(path string) ([]*model.ClassHolder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	classes, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return classes, nil
}
