package archive

import (
	"fmt"

	"fortio.org/safecast"

	"relocator/internal/ir"
	"relocator/internal/model"
)

func inflate(f *File) ([]*model.ClassHolder, error) {
	out := make([]*model.ClassHolder, 0, len(f.Classes))
	for i := range f.Classes {
		cls, err := inflateClass(&f.Classes[i])
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", f.Classes[i].Name, err)
		}
		out = append(out, cls)
	}
	return out, nil
}

func inflateClass(c *Class) (*model.ClassHolder, error) {
	cls := model.NewClass(c.Name)
	cls.Parent = c.Parent
	cls.Interfaces = c.Interfaces
	cls.Modifiers = model.ElementModifier(c.Modifiers)
	cls.Level = model.AccessLevel(c.Level)
	if err := inflateAnnotations(&cls.Annotations, c.Annotations); err != nil {
		return nil, err
	}

	for i := range c.Fields {
		fd := &c.Fields[i]
		typ, err := parseType(fd.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fd.Name, err)
		}
		f := model.NewField(fd.Name, typ)
		f.Modifiers = model.ElementModifier(fd.Modifiers)
		f.Level = model.AccessLevel(fd.Level)
		if fd.Initial != nil {
			if f.InitialValue, err = inflateConstant(fd.Initial); err != nil {
				return nil, fmt.Errorf("field %s: %w", fd.Name, err)
			}
		}
		if err := inflateAnnotations(&f.Annotations, fd.Annotations); err != nil {
			return nil, fmt.Errorf("field %s: %w", fd.Name, err)
		}
		if err := cls.AddField(f); err != nil {
			return nil, err
		}
	}

	for i := range c.Methods {
		md := &c.Methods[i]
		sig, err := parseTypes(md.Signature)
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", md.Name, err)
		}
		m := model.NewMethod(md.Name, sig...)
		m.Modifiers = model.ElementModifier(md.Modifiers)
		m.Level = model.AccessLevel(md.Level)
		if err := inflateAnnotations(&m.Annotations, md.Annotations); err != nil {
			return nil, fmt.Errorf("method %s: %w", m.Descriptor(), err)
		}
		if md.Body != nil {
			if m.Program, err = inflateProgram(md.Body); err != nil {
				return nil, fmt.Errorf("method %s: %w", m.Descriptor(), err)
			}
		}
		if err := cls.AddMethod(m); err != nil {
			return nil, err
		}
	}
	return cls, nil
}

func inflateConstant(k *Constant) (any, error) {
	switch constKind(k.Kind) {
	case constBool:
		return k.Bool, nil
	case constInt:
		return safecast.Conv[int32](k.Int)
	case constLong:
		return k.Int, nil
	case constFloat:
		return float32(k.Float), nil
	case constDouble:
		return k.Float, nil
	case constString:
		return k.String, nil
	}
	return nil, fmt.Errorf("unknown constant kind %d", k.Kind)
}

func parseType(desc string) (ir.ValueType, error) {
	if desc == "" {
		return nil, nil
	}
	return ir.ParseValueType(desc)
}

func parseTypes(descs []string) ([]ir.ValueType, error) {
	if descs == nil {
		return nil, nil
	}
	out := make([]ir.ValueType, len(descs))
	for i, d := range descs {
		t, err := parseType(d)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func inflateAnnotations(dst *model.AnnotationContainer, src []Annotation) error {
	for i := range src {
		a, err := inflateAnnotation(&src[i])
		if err != nil {
			return err
		}
		if err := dst.Add(a); err != nil {
			return err
		}
	}
	return nil
}

func inflateAnnotation(a *Annotation) (*model.AnnotationHolder, error) {
	out := model.NewAnnotation(a.Type)
	for k, v := range a.Values {
		val, err := inflateValue(&v)
		if err != nil {
			return nil, fmt.Errorf("annotation %s argument %s: %w", a.Type, k, err)
		}
		out.Values[k] = val
	}
	return out, nil
}

func inflateValue(v *Value) (model.AnnotationValue, error) {
	typ, err := parseType(v.Type)
	if err != nil {
		return model.AnnotationValue{}, err
	}
	out := model.AnnotationValue{
		Kind:         model.AnnotationValueKind(v.Kind),
		Bool:         v.Bool,
		Int:          v.Int,
		Float:        v.Float,
		String:       v.String,
		Type:         typ,
		EnumClass:    v.EnumClass,
		EnumConstant: v.EnumConstant,
	}
	if v.Annotation != nil {
		if out.Annotation, err = inflateAnnotation(v.Annotation); err != nil {
			return out, err
		}
	}
	for i := range v.List {
		item, err := inflateValue(&v.List[i])
		if err != nil {
			return out, err
		}
		out.List = append(out.List, item)
	}
	return out, nil
}

func inflateProgram(p *Program) (*ir.Program, error) {
	prog := ir.NewProgram()
	for _, name := range p.Variables {
		prog.CreateVariable(name)
	}
	for range p.Blocks {
		prog.CreateBlock()
	}
	for bi, instrs := range p.Blocks {
		b := prog.Blocks[bi]
		for ii := range instrs {
			ins, err := decodeInstr(prog, &instrs[ii])
			if err != nil {
				return nil, fmt.Errorf("bb%d instr %d: %w", bi, ii, err)
			}
			b.Add(ins)
		}
	}
	return prog, nil
}

// operands resolves the index slots of one Instr against a program.
type operands struct {
	prog *ir.Program
	in   *Instr
	err  error
}

func (o *operands) v(i int) *ir.Variable {
	if i >= len(o.in.Vars) {
		o.fail("missing variable operand %d", i)
		return nil
	}
	idx := o.in.Vars[i]
	if idx < 0 {
		return nil
	}
	v := o.prog.VariableAt(int(idx))
	if v == nil {
		o.fail("variable %d out of range", idx)
	}
	return v
}

func (o *operands) vs(from int) []*ir.Variable {
	if from >= len(o.in.Vars) {
		return nil
	}
	out := make([]*ir.Variable, 0, len(o.in.Vars)-from)
	for i := from; i < len(o.in.Vars); i++ {
		out = append(out, o.v(i))
	}
	return out
}

func (o *operands) b(i int) *ir.BasicBlock {
	if i >= len(o.in.Blocks) {
		o.fail("missing block operand %d", i)
		return nil
	}
	idx := o.in.Blocks[i]
	if idx < 0 {
		return nil
	}
	b := o.prog.BlockAt(int(idx))
	if b == nil {
		o.fail("block %d out of range", idx)
	}
	return b
}

func (o *operands) typ() ir.ValueType {
	t, err := parseType(o.in.Type)
	if err != nil && o.err == nil {
		o.err = err
	}
	return t
}

func (o *operands) fail(format string, args ...any) {
	if o.err == nil {
		o.err = fmt.Errorf(format, args...)
	}
}

func decodeInstr(prog *ir.Program, in *Instr) (ir.Instruction, error) {
	o := &operands{prog: prog, in: in}
	var ins ir.Instruction
	switch ir.InstrKind(in.Op) {
	case ir.InstrEmpty:
		ins = &ir.EmptyInstruction{}
	case ir.InstrClassConstant:
		ins = &ir.ClassConstantInstruction{Constant: o.typ(), Receiver: o.v(0)}
	case ir.InstrNullConstant:
		ins = &ir.NullConstantInstruction{Receiver: o.v(0)}
	case ir.InstrIntegerConstant:
		n, err := safecast.Conv[int32](in.Int)
		if err != nil {
			return nil, err
		}
		ins = &ir.IntegerConstantInstruction{Constant: n, Receiver: o.v(0)}
	case ir.InstrLongConstant:
		ins = &ir.LongConstantInstruction{Constant: in.Int, Receiver: o.v(0)}
	case ir.InstrFloatConstant:
		ins = &ir.FloatConstantInstruction{Constant: float32(in.Float), Receiver: o.v(0)}
	case ir.InstrDoubleConstant:
		ins = &ir.DoubleConstantInstruction{Constant: in.Float, Receiver: o.v(0)}
	case ir.InstrStringConstant:
		ins = &ir.StringConstantInstruction{Constant: in.String, Receiver: o.v(0)}
	case ir.InstrBinary:
		ins = &ir.BinaryInstruction{
			Operation:   ir.BinaryOperation(in.Sub),
			OperandType: ir.NumericType(in.Sub2),
			First:       o.v(0),
			Second:      o.v(1),
			Receiver:    o.v(2),
		}
	case ir.InstrNegate:
		ins = &ir.NegateInstruction{OperandType: ir.NumericType(in.Sub), Operand: o.v(0), Receiver: o.v(1)}
	case ir.InstrAssign:
		ins = &ir.AssignInstruction{Assignee: o.v(0), Receiver: o.v(1)}
	case ir.InstrCast:
		ins = &ir.CastInstruction{TargetType: o.typ(), Value: o.v(0), Receiver: o.v(1)}
	case ir.InstrCastNumber:
		ins = &ir.CastNumberInstruction{
			SourceType: ir.NumericType(in.Sub),
			TargetType: ir.NumericType(in.Sub2),
			Value:      o.v(0),
			Receiver:   o.v(1),
		}
	case ir.InstrBranching:
		ins = &ir.BranchingInstruction{
			Condition:   ir.BranchingCondition(in.Sub),
			Operand:     o.v(0),
			Consequent:  o.b(0),
			Alternative: o.b(1),
		}
	case ir.InstrBinaryBranching:
		ins = &ir.BinaryBranchingInstruction{
			Condition:   ir.BinaryBranchingCondition(in.Sub),
			First:       o.v(0),
			Second:      o.v(1),
			Consequent:  o.b(0),
			Alternative: o.b(1),
		}
	case ir.InstrJump:
		ins = &ir.JumpInstruction{Target: o.b(0)}
	case ir.InstrSwitch:
		sw := &ir.SwitchInstruction{Condition: o.v(0), DefaultTarget: o.b(0)}
		if len(in.Blocks) != len(in.Cases)+1 {
			o.fail("switch has %d cases but %d targets", len(in.Cases), len(in.Blocks)-1)
		}
		for i, c := range in.Cases {
			sw.Entries = append(sw.Entries, ir.SwitchEntry{Condition: c, Target: o.b(i + 1)})
		}
		ins = sw
	case ir.InstrExit:
		ins = &ir.ExitInstruction{ValueToReturn: o.v(0)}
	case ir.InstrRaise:
		ins = &ir.RaiseInstruction{Exception: o.v(0)}
	case ir.InstrConstructArray:
		ins = &ir.ConstructArrayInstruction{ItemType: o.typ(), Size: o.v(0), Receiver: o.v(1)}
	case ir.InstrConstruct:
		ins = &ir.ConstructInstruction{Type: in.Class, Receiver: o.v(0)}
	case ir.InstrConstructMultiArray:
		ins = &ir.ConstructMultiArrayInstruction{ItemType: o.typ(), Receiver: o.v(0), Dimensions: o.vs(1)}
	case ir.InstrGetField:
		ins = &ir.GetFieldInstruction{
			Instance: o.v(0),
			Field:    ir.FieldReference{ClassName: in.Class, FieldName: in.Name},
			Receiver: o.v(1),
		}
	case ir.InstrPutField:
		ins = &ir.PutFieldInstruction{
			Instance: o.v(0),
			Field:    ir.FieldReference{ClassName: in.Class, FieldName: in.Name},
			Value:    o.v(1),
		}
	case ir.InstrArrayLength:
		ins = &ir.ArrayLengthInstruction{Array: o.v(0), Receiver: o.v(1)}
	case ir.InstrCloneArray:
		ins = &ir.CloneArrayInstruction{Array: o.v(0), Receiver: o.v(1)}
	case ir.InstrGetElement:
		ins = &ir.GetElementInstruction{Array: o.v(0), Index: o.v(1), Receiver: o.v(2)}
	case ir.InstrPutElement:
		ins = &ir.PutElementInstruction{Array: o.v(0), Index: o.v(1), Value: o.v(2)}
	case ir.InstrInvoke:
		sig, err := parseTypes(in.Sig)
		if err != nil {
			return nil, err
		}
		ins = &ir.InvokeInstruction{
			Type:      ir.InvocationType(in.Sub),
			Instance:  o.v(0),
			Receiver:  o.v(1),
			Method:    ir.MethodReference{ClassName: in.Class, Name: in.Name, Signature: sig},
			Arguments: o.vs(2),
		}
	case ir.InstrIsInstance:
		ins = &ir.IsInstanceInstruction{Type: o.typ(), Value: o.v(0), Receiver: o.v(1)}
	default:
		return nil, fmt.Errorf("unknown opcode %d", in.Op)
	}
	if o.err != nil {
		return nil, fmt.Errorf("%s: %w", ir.InstrKind(in.Op), o.err)
	}
	return ins, nil
}
