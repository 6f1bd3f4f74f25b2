package archive

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"relocator/internal/ir"
	"relocator/internal/model"
)

type constKind uint8

const (
	constBool constKind = iota + 1
	constInt
	constLong
	constFloat
	constDouble
	constString
)

func flatten(classes []*model.ClassHolder) (*File, error) {
	f := &File{Schema: SchemaVersion, Classes: make([]Class, 0, len(classes))}
	for _, cls := range classes {
		if cls == nil {
			return nil, errors.New("nil class")
		}
		c, err := flattenClass(cls)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", cls.Name, err)
		}
		f.Classes = append(f.Classes, c)
	}
	return f, nil
}

func flattenClass(cls *model.ClassHolder) (Class, error) {
	c := Class{
		Name:        cls.Name,
		Parent:      cls.Parent,
		Interfaces:  cls.Interfaces,
		Modifiers:   uint16(cls.Modifiers),
		Level:       uint8(cls.Level),
		Annotations: flattenAnnotations(&cls.Annotations),
	}
	for _, fh := range cls.Fields() {
		fd := Field{
			Name:        fh.Name,
			Type:        descriptor(fh.Type),
			Modifiers:   uint16(fh.Modifiers),
			Level:       uint8(fh.Level),
			Annotations: flattenAnnotations(&fh.Annotations),
		}
		if fh.InitialValue != nil {
			k, err := flattenConstant(fh.InitialValue)
			if err != nil {
				return c, fmt.Errorf("field %s: %w", fh.Name, err)
			}
			fd.Initial = k
		}
		c.Fields = append(c.Fields, fd)
	}
	for _, m := range cls.Methods() {
		md := Method{
			Name:        m.Name,
			Signature:   descriptors(m.Signature),
			Modifiers:   uint16(m.Modifiers),
			Level:       uint8(m.Level),
			Annotations: flattenAnnotations(&m.Annotations),
		}
		if m.Program != nil {
			body, err := flattenProgram(m.Program)
			if err != nil {
				return c, fmt.Errorf("method %s: %w", m.Descriptor(), err)
			}
			md.Body = body
		}
		c.Methods = append(c.Methods, md)
	}
	return c, nil
}

func flattenConstant(v any) (*Constant, error) {
	switch x := v.(type) {
	case bool:
		return &Constant{Kind: uint8(constBool), Bool: x}, nil
	case int32:
		return &Constant{Kind: uint8(constInt), Int: int64(x)}, nil
	case int64:
		return &Constant{Kind: uint8(constLong), Int: x}, nil
	case float32:
		return &Constant{Kind: uint8(constFloat), Float: float64(x)}, nil
	case float64:
		return &Constant{Kind: uint8(constDouble), Float: x}, nil
	case string:
		return &Constant{Kind: uint8(constString), String: x}, nil
	}
	return nil, fmt.Errorf("unsupported initial value %T", v)
}

func descriptor(t ir.ValueType) string {
	if t == nil {
		return ""
	}
	return t.String()
}

func descriptors(ts []ir.ValueType) []string {
	if ts == nil {
		return nil
	}
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = descriptor(t)
	}
	return out
}

func flattenAnnotations(c *model.AnnotationContainer) []Annotation {
	all := c.All()
	if len(all) == 0 {
		return nil
	}
	out := make([]Annotation, len(all))
	for i, a := range all {
		out[i] = flattenAnnotation(a)
	}
	return out
}

func flattenAnnotation(a *model.AnnotationHolder) Annotation {
	out := Annotation{Type: a.Type, Values: make(map[string]Value, len(a.Values))}
	for k, v := range a.Values {
		out.Values[k] = flattenValue(v)
	}
	return out
}

func flattenValue(v model.AnnotationValue) Value {
	out := Value{
		Kind:         uint8(v.Kind),
		Bool:         v.Bool,
		Int:          v.Int,
		Float:        v.Float,
		String:       v.String,
		Type:         descriptor(v.Type),
		EnumClass:    v.EnumClass,
		EnumConstant: v.EnumConstant,
	}
	if v.Annotation != nil {
		nested := flattenAnnotation(v.Annotation)
		out.Annotation = &nested
	}
	for _, item := range v.List {
		out.List = append(out.List, flattenValue(item))
	}
	return out
}

func flattenProgram(p *ir.Program) (*Program, error) {
	out := &Program{Variables: make([]string, len(p.Variables))}
	vars := make(map[*ir.Variable]int32, len(p.Variables))
	for i, v := range p.Variables {
		idx, err := safecast.Conv[int32](i)
		if err != nil {
			return nil, err
		}
		vars[v] = idx
		out.Variables[i] = v.DebugName
	}
	blocks := make(map[*ir.BasicBlock]int32, len(p.Blocks))
	for i, b := range p.Blocks {
		idx, err := safecast.Conv[int32](i)
		if err != nil {
			return nil, err
		}
		blocks[b] = idx
	}

	enc := &instrEncoder{vars: vars, blocks: blocks}
	out.Blocks = make([][]Instr, len(p.Blocks))
	for bi, b := range p.Blocks {
		if b == nil {
			return nil, fmt.Errorf("bb%d: nil block", bi)
		}
		for ii, ins := range b.Instructions {
			if ins == nil {
				return nil, fmt.Errorf("bb%d instr %d: nil instruction", bi, ii)
			}
			enc.cur = Instr{Op: uint8(ins.Kind())}
			ins.Accept(enc)
			if enc.err != nil {
				return nil, fmt.Errorf("bb%d instr %d (%s): %w", bi, ii, ins.Kind(), enc.err)
			}
			out.Blocks[bi] = append(out.Blocks[bi], enc.cur)
		}
	}
	return out, nil
}

// instrEncoder fills the operand slots of one Instr per visit.
type instrEncoder struct {
	vars   map[*ir.Variable]int32
	blocks map[*ir.BasicBlock]int32
	cur    Instr
	err    error
}

var _ ir.InstructionVisitor = (*instrEncoder)(nil)

func (e *instrEncoder) v(vs ...*ir.Variable) {
	for _, v := range vs {
		if v == nil {
			e.cur.Vars = append(e.cur.Vars, -1)
			continue
		}
		idx, ok := e.vars[v]
		if !ok {
			e.err = fmt.Errorf("foreign variable %s", v.DebugName)
			idx = -1
		}
		e.cur.Vars = append(e.cur.Vars, idx)
	}
}

func (e *instrEncoder) b(bs ...*ir.BasicBlock) {
	for _, b := range bs {
		if b == nil {
			e.cur.Blocks = append(e.cur.Blocks, -1)
			continue
		}
		idx, ok := e.blocks[b]
		if !ok {
			e.err = fmt.Errorf("foreign block bb%d", b.Index)
			idx = -1
		}
		e.cur.Blocks = append(e.cur.Blocks, idx)
	}
}

func (e *instrEncoder) VisitEmpty(*ir.EmptyInstruction) {}

func (e *instrEncoder) VisitClassConstant(i *ir.ClassConstantInstruction) {
	e.cur.Type = descriptor(i.Constant)
	e.v(i.Receiver)
}

func (e *instrEncoder) VisitNullConstant(i *ir.NullConstantInstruction) { e.v(i.Receiver) }

func (e *instrEncoder) VisitIntegerConstant(i *ir.IntegerConstantInstruction) {
	e.cur.Int = int64(i.Constant)
	e.v(i.Receiver)
}

func (e *instrEncoder) VisitLongConstant(i *ir.LongConstantInstruction) {
	e.cur.Int = i.Constant
	e.v(i.Receiver)
}

func (e *instrEncoder) VisitFloatConstant(i *ir.FloatConstantInstruction) {
	e.cur.Float = float64(i.Constant)
	e.v(i.Receiver)
}

func (e *instrEncoder) VisitDoubleConstant(i *ir.DoubleConstantInstruction) {
	e.cur.Float = i.Constant
	e.v(i.Receiver)
}

func (e *instrEncoder) VisitStringConstant(i *ir.StringConstantInstruction) {
	e.cur.String = i.Constant
	e.v(i.Receiver)
}

func (e *instrEncoder) VisitBinary(i *ir.BinaryInstruction) {
	e.cur.Sub, e.cur.Sub2 = uint8(i.Operation), uint8(i.OperandType)
	e.v(i.First, i.Second, i.Receiver)
}

func (e *instrEncoder) VisitNegate(i *ir.NegateInstruction) {
	e.cur.Sub = uint8(i.OperandType)
	e.v(i.Operand, i.Receiver)
}

func (e *instrEncoder) VisitAssign(i *ir.AssignInstruction) { e.v(i.Assignee, i.Receiver) }

func (e *instrEncoder) VisitCast(i *ir.CastInstruction) {
	e.cur.Type = descriptor(i.TargetType)
	e.v(i.Value, i.Receiver)
}

func (e *instrEncoder) VisitCastNumber(i *ir.CastNumberInstruction) {
	e.cur.Sub, e.cur.Sub2 = uint8(i.SourceType), uint8(i.TargetType)
	e.v(i.Value, i.Receiver)
}

func (e *instrEncoder) VisitBranching(i *ir.BranchingInstruction) {
	e.cur.Sub = uint8(i.Condition)
	e.v(i.Operand)
	e.b(i.Consequent, i.Alternative)
}

func (e *instrEncoder) VisitBinaryBranching(i *ir.BinaryBranchingInstruction) {
	e.cur.Sub = uint8(i.Condition)
	e.v(i.First, i.Second)
	e.b(i.Consequent, i.Alternative)
}

func (e *instrEncoder) VisitJump(i *ir.JumpInstruction) { e.b(i.Target) }

// VisitSwitch stores the default target first, then one target per entry.
func (e *instrEncoder) VisitSwitch(i *ir.SwitchInstruction) {
	e.v(i.Condition)
	e.b(i.DefaultTarget)
	for _, entry := range i.Entries {
		e.cur.Cases = append(e.cur.Cases, entry.Condition)
		e.b(entry.Target)
	}
}

func (e *instrEncoder) VisitExit(i *ir.ExitInstruction)   { e.v(i.ValueToReturn) }
func (e *instrEncoder) VisitRaise(i *ir.RaiseInstruction) { e.v(i.Exception) }

func (e *instrEncoder) VisitConstructArray(i *ir.ConstructArrayInstruction) {
	e.cur.Type = descriptor(i.ItemType)
	e.v(i.Size, i.Receiver)
}

func (e *instrEncoder) VisitConstruct(i *ir.ConstructInstruction) {
	e.cur.Class = i.Type
	e.v(i.Receiver)
}

// VisitConstructMultiArray stores the receiver first, then the dimensions.
func (e *instrEncoder) VisitConstructMultiArray(i *ir.ConstructMultiArrayInstruction) {
	e.cur.Type = descriptor(i.ItemType)
	e.v(i.Receiver)
	e.v(i.Dimensions...)
}

func (e *instrEncoder) VisitGetField(i *ir.GetFieldInstruction) {
	e.cur.Class, e.cur.Name = i.Field.ClassName, i.Field.FieldName
	e.v(i.Instance, i.Receiver)
}

func (e *instrEncoder) VisitPutField(i *ir.PutFieldInstruction) {
	e.cur.Class, e.cur.Name = i.Field.ClassName, i.Field.FieldName
	e.v(i.Instance, i.Value)
}

func (e *instrEncoder) VisitArrayLength(i *ir.ArrayLengthInstruction) { e.v(i.Array, i.Receiver) }
func (e *instrEncoder) VisitCloneArray(i *ir.CloneArrayInstruction)   { e.v(i.Array, i.Receiver) }

func (e *instrEncoder) VisitGetElement(i *ir.GetElementInstruction) {
	e.v(i.Array, i.Index, i.Receiver)
}

func (e *instrEncoder) VisitPutElement(i *ir.PutElementInstruction) {
	e.v(i.Array, i.Index, i.Value)
}

// VisitInvoke stores instance and receiver first, then the arguments.
func (e *instrEncoder) VisitInvoke(i *ir.InvokeInstruction) {
	e.cur.Sub = uint8(i.Type)
	e.cur.Class, e.cur.Name = i.Method.ClassName, i.Method.Name
	e.cur.Sig = descriptors(i.Method.Signature)
	e.v(i.Instance, i.Receiver)
	e.v(i.Arguments...)
}

func (e *instrEncoder) VisitIsInstance(i *ir.IsInstanceInstruction) {
	e.cur.Type = descriptor(i.Type)
	e.v(i.Value, i.Receiver)
}
