package ir

import (
	"errors"
	"fmt"
)

// Validate checks program invariants: every instruction is non-nil, every
// jump target and variable belongs to p, and every type or class name an
// instruction requires is present. All violations are reported together.
func Validate(p *Program) error {
	if p == nil {
		return nil
	}
	var errs []error
	for i, b := range p.Blocks {
		if b == nil {
			errs = append(errs, fmt.Errorf("bb%d: nil block", i))
			continue
		}
		if b.Index != i || !p.Owns(b) {
			errs = append(errs, fmt.Errorf("bb%d: block index %d does not match its position", i, b.Index))
		}
		for j, ins := range b.Instructions {
			if ins == nil {
				errs = append(errs, fmt.Errorf("bb%d instr %d: nil instruction", i, j))
				continue
			}
			v := &validator{prog: p, ctx: fmt.Sprintf("bb%d instr %d (%s)", i, j, ins.Kind())}
			ins.Accept(v)
			errs = append(errs, v.errs...)
		}
	}
	return errors.Join(errs...)
}

// CheckValueType reports whether t is a complete value type: non-nil,
// array items present, class names non-empty.
func CheckValueType(t ValueType) error {
	switch x := t.(type) {
	case nil:
		return errors.New("missing type")
	case Primitive:
		if int(x.Kind) >= len(primitiveDescriptors) {
			return fmt.Errorf("unknown primitive kind %d", x.Kind)
		}
		return nil
	case Array:
		if x.Item == nil {
			return errors.New("array without item type")
		}
		return CheckValueType(x.Item)
	case Object:
		if x.ClassName == "" {
			return errors.New("object type without class name")
		}
		return nil
	}
	return fmt.Errorf("unknown type %T", t)
}

type validator struct {
	prog *Program
	ctx  string
	errs []error
}

var _ InstructionVisitor = (*validator)(nil)

func (v *validator) fail(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf("%s: "+format, append([]any{v.ctx}, args...)...))
}

func (v *validator) vars(names string, vs ...*Variable) {
	for _, x := range vs {
		if x != nil && !v.prog.OwnsVariable(x) {
			v.fail("%s refers to foreign variable v%d", names, x.Index)
		}
	}
}

func (v *validator) required(name string, x *Variable) {
	if x == nil {
		v.fail("missing %s", name)
		return
	}
	v.vars(name, x)
}

func (v *validator) target(name string, b *BasicBlock) {
	if b == nil {
		v.fail("missing %s target", name)
		return
	}
	if !v.prog.Owns(b) {
		v.fail("%s target bb%d does not belong to the program", name, b.Index)
	}
}

func (v *validator) typ(name string, t ValueType) {
	if err := CheckValueType(t); err != nil {
		v.fail("%s: %v", name, err)
	}
}

func (v *validator) className(name, cls string) {
	if cls == "" {
		v.fail("missing %s class name", name)
	}
}

func (v *validator) VisitEmpty(*EmptyInstruction) {}

func (v *validator) VisitClassConstant(i *ClassConstantInstruction) {
	v.typ("constant", i.Constant)
	v.required("receiver", i.Receiver)
}

func (v *validator) VisitNullConstant(i *NullConstantInstruction) {
	v.required("receiver", i.Receiver)
}

func (v *validator) VisitIntegerConstant(i *IntegerConstantInstruction) {
	v.required("receiver", i.Receiver)
}

func (v *validator) VisitLongConstant(i *LongConstantInstruction) {
	v.required("receiver", i.Receiver)
}

func (v *validator) VisitFloatConstant(i *FloatConstantInstruction) {
	v.required("receiver", i.Receiver)
}

func (v *validator) VisitDoubleConstant(i *DoubleConstantInstruction) {
	v.required("receiver", i.Receiver)
}

func (v *validator) VisitStringConstant(i *StringConstantInstruction) {
	v.required("receiver", i.Receiver)
}

func (v *validator) VisitBinary(i *BinaryInstruction) {
	v.required("first", i.First)
	v.required("second", i.Second)
	v.required("receiver", i.Receiver)
}

func (v *validator) VisitNegate(i *NegateInstruction) {
	v.required("operand", i.Operand)
	v.required("receiver", i.Receiver)
}

func (v *validator) VisitAssign(i *AssignInstruction) {
	v.required("assignee", i.Assignee)
	v.required("receiver", i.Receiver)
}

func (v *validator) VisitCast(i *CastInstruction) {
	v.typ("target type", i.TargetType)
	v.required("value", i.Value)
	v.required("receiver", i.Receiver)
}

func (v *validator) VisitCastNumber(i *CastNumberInstruction) {
	v.required("value", i.Value)
	v.required("receiver", i.Receiver)
}

func (v *validator) VisitBranching(i *BranchingInstruction) {
	v.required("operand", i.Operand)
	v.target("consequent", i.Consequent)
	v.target("alternative", i.Alternative)
}

func (v *validator) VisitBinaryBranching(i *BinaryBranchingInstruction) {
	v.required("first", i.First)
	v.required("second", i.Second)
	v.target("consequent", i.Consequent)
	v.target("alternative", i.Alternative)
}

func (v *validator) VisitJump(i *JumpInstruction) {
	v.target("jump", i.Target)
}

func (v *validator) VisitSwitch(i *SwitchInstruction) {
	v.required("condition", i.Condition)
	seen := make(map[int32]bool, len(i.Entries))
	for _, e := range i.Entries {
		if seen[e.Condition] {
			v.fail("duplicate switch case %d", e.Condition)
		}
		seen[e.Condition] = true
		v.target(fmt.Sprintf("case %d", e.Condition), e.Target)
	}
	v.target("default", i.DefaultTarget)
}

func (v *validator) VisitExit(i *ExitInstruction) {
	v.vars("return value", i.ValueToReturn)
}

func (v *validator) VisitRaise(i *RaiseInstruction) {
	v.required("exception", i.Exception)
}

func (v *validator) VisitConstructArray(i *ConstructArrayInstruction) {
	v.typ("item type", i.ItemType)
	if Equal(i.ItemType, Void) {
		v.fail("array of void")
	}
	v.required("size", i.Size)
	v.required("receiver", i.Receiver)
}

func (v *validator) VisitConstruct(i *ConstructInstruction) {
	v.className("constructed", i.Type)
	v.required("receiver", i.Receiver)
}

func (v *validator) VisitConstructMultiArray(i *ConstructMultiArrayInstruction) {
	v.typ("item type", i.ItemType)
	if len(i.Dimensions) == 0 {
		v.fail("no dimensions")
	}
	for k, d := range i.Dimensions {
		v.required(fmt.Sprintf("dimension %d", k), d)
	}
	v.required("receiver", i.Receiver)
}

func (v *validator) VisitGetField(i *GetFieldInstruction) {
	v.className("field owner", i.Field.ClassName)
	v.vars("instance", i.Instance)
	v.required("receiver", i.Receiver)
}

func (v *validator) VisitPutField(i *PutFieldInstruction) {
	v.className("field owner", i.Field.ClassName)
	v.vars("instance", i.Instance)
	v.required("value", i.Value)
}

func (v *validator) VisitArrayLength(i *ArrayLengthInstruction) {
	v.required("array", i.Array)
	v.required("receiver", i.Receiver)
}

func (v *validator) VisitCloneArray(i *CloneArrayInstruction) {
	v.required("array", i.Array)
	v.required("receiver", i.Receiver)
}

func (v *validator) VisitGetElement(i *GetElementInstruction) {
	v.required("array", i.Array)
	v.required("index", i.Index)
	v.required("receiver", i.Receiver)
}

func (v *validator) VisitPutElement(i *PutElementInstruction) {
	v.required("array", i.Array)
	v.required("index", i.Index)
	v.required("value", i.Value)
}

func (v *validator) VisitInvoke(i *InvokeInstruction) {
	v.className("method owner", i.Method.ClassName)
	if i.Method.Name == "" {
		v.fail("missing method name")
	}
	if len(i.Method.Signature) == 0 {
		v.fail("method %s has no signature", i.Method.Name)
	}
	for k, t := range i.Method.Signature {
		v.typ(fmt.Sprintf("signature[%d]", k), t)
	}
	if i.Type == InvokeVirtual && i.Instance == nil {
		v.fail("virtual call without instance")
	}
	v.vars("instance", i.Instance)
	v.vars("argument", i.Arguments...)
	v.vars("receiver", i.Receiver)
}

func (v *validator) VisitIsInstance(i *IsInstanceInstruction) {
	v.typ("tested type", i.Type)
	v.required("value", i.Value)
	v.required("receiver", i.Receiver)
}
