package ir

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes a human-readable listing of p.
func Dump(w io.Writer, p *Program) error {
	if w == nil || p == nil {
		return nil
	}
	pr := &printer{}
	for _, b := range p.Blocks {
		if b == nil {
			continue
		}
		fmt.Fprintf(&pr.sb, "  bb%d:\n", b.Index)
		for _, ins := range b.Instructions {
			pr.sb.WriteString("    ")
			if ins == nil {
				pr.sb.WriteString("<nil>")
			} else {
				ins.Accept(pr)
			}
			pr.sb.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, pr.sb.String())
	return err
}

// Format renders a single instruction.
func Format(ins Instruction) string {
	if ins == nil {
		return "<nil>"
	}
	pr := &printer{}
	ins.Accept(pr)
	return pr.sb.String()
}

type printer struct {
	sb strings.Builder
}

var _ InstructionVisitor = (*printer)(nil)

func varStr(v *Variable) string {
	if v == nil {
		return "_"
	}
	if v.DebugName != "" {
		return fmt.Sprintf("v%d(%s)", v.Index, v.DebugName)
	}
	return fmt.Sprintf("v%d", v.Index)
}

func blockStr(b *BasicBlock) string {
	if b == nil {
		return "bb?"
	}
	return fmt.Sprintf("bb%d", b.Index)
}

func typeStr(t ValueType) string {
	if t == nil {
		return "?"
	}
	return t.String()
}

func (p *printer) assign(recv *Variable, format string, args ...any) {
	fmt.Fprintf(&p.sb, "%s = ", varStr(recv))
	fmt.Fprintf(&p.sb, format, args...)
}

func (p *printer) VisitEmpty(*EmptyInstruction) { p.sb.WriteString("nop") }

func (p *printer) VisitClassConstant(i *ClassConstantInstruction) {
	p.assign(i.Receiver, "classOf %s", typeStr(i.Constant))
}

func (p *printer) VisitNullConstant(i *NullConstantInstruction) {
	p.assign(i.Receiver, "null")
}

func (p *printer) VisitIntegerConstant(i *IntegerConstantInstruction) {
	p.assign(i.Receiver, "%d", i.Constant)
}

func (p *printer) VisitLongConstant(i *LongConstantInstruction) {
	p.assign(i.Receiver, "%dL", i.Constant)
}

func (p *printer) VisitFloatConstant(i *FloatConstantInstruction) {
	p.assign(i.Receiver, "%gF", i.Constant)
}

func (p *printer) VisitDoubleConstant(i *DoubleConstantInstruction) {
	p.assign(i.Receiver, "%g", i.Constant)
}

func (p *printer) VisitStringConstant(i *StringConstantInstruction) {
	p.assign(i.Receiver, "%q", i.Constant)
}

func (p *printer) VisitBinary(i *BinaryInstruction) {
	p.assign(i.Receiver, "%s %s.%s %s", varStr(i.First), i.Operation, i.OperandType, varStr(i.Second))
}

func (p *printer) VisitNegate(i *NegateInstruction) {
	p.assign(i.Receiver, "-%s.%s", varStr(i.Operand), i.OperandType)
}

func (p *printer) VisitAssign(i *AssignInstruction) {
	p.assign(i.Receiver, "%s", varStr(i.Assignee))
}

func (p *printer) VisitCast(i *CastInstruction) {
	p.assign(i.Receiver, "cast %s to %s", varStr(i.Value), typeStr(i.TargetType))
}

func (p *printer) VisitCastNumber(i *CastNumberInstruction) {
	p.assign(i.Receiver, "cast %s from %s to %s", varStr(i.Value), i.SourceType, i.TargetType)
}

func (p *printer) VisitBranching(i *BranchingInstruction) {
	fmt.Fprintf(&p.sb, "if %s %s then %s else %s", varStr(i.Operand), i.Condition, blockStr(i.Consequent), blockStr(i.Alternative))
}

func (p *printer) VisitBinaryBranching(i *BinaryBranchingInstruction) {
	fmt.Fprintf(&p.sb, "if %s %s %s then %s else %s", varStr(i.First), i.Condition, varStr(i.Second), blockStr(i.Consequent), blockStr(i.Alternative))
}

func (p *printer) VisitJump(i *JumpInstruction) {
	fmt.Fprintf(&p.sb, "goto %s", blockStr(i.Target))
}

func (p *printer) VisitSwitch(i *SwitchInstruction) {
	fmt.Fprintf(&p.sb, "switch %s", varStr(i.Condition))
	for _, e := range i.Entries {
		fmt.Fprintf(&p.sb, " %d:%s", e.Condition, blockStr(e.Target))
	}
	fmt.Fprintf(&p.sb, " default:%s", blockStr(i.DefaultTarget))
}

func (p *printer) VisitExit(i *ExitInstruction) {
	if i.ValueToReturn == nil {
		p.sb.WriteString("return")
		return
	}
	fmt.Fprintf(&p.sb, "return %s", varStr(i.ValueToReturn))
}

func (p *printer) VisitRaise(i *RaiseInstruction) {
	fmt.Fprintf(&p.sb, "throw %s", varStr(i.Exception))
}

func (p *printer) VisitConstructArray(i *ConstructArrayInstruction) {
	p.assign(i.Receiver, "new %s[%s]", typeStr(i.ItemType), varStr(i.Size))
}

func (p *printer) VisitConstruct(i *ConstructInstruction) {
	p.assign(i.Receiver, "new %s", i.Type)
}

func (p *printer) VisitConstructMultiArray(i *ConstructMultiArrayInstruction) {
	p.assign(i.Receiver, "new %s", typeStr(i.ItemType))
	for _, d := range i.Dimensions {
		fmt.Fprintf(&p.sb, "[%s]", varStr(d))
	}
}

func (p *printer) VisitGetField(i *GetFieldInstruction) {
	if i.Instance == nil {
		p.assign(i.Receiver, "%s", i.Field)
		return
	}
	p.assign(i.Receiver, "%s.(%s)", varStr(i.Instance), i.Field)
}

func (p *printer) VisitPutField(i *PutFieldInstruction) {
	if i.Instance == nil {
		fmt.Fprintf(&p.sb, "%s = %s", i.Field, varStr(i.Value))
		return
	}
	fmt.Fprintf(&p.sb, "%s.(%s) = %s", varStr(i.Instance), i.Field, varStr(i.Value))
}

func (p *printer) VisitArrayLength(i *ArrayLengthInstruction) {
	p.assign(i.Receiver, "length %s", varStr(i.Array))
}

func (p *printer) VisitCloneArray(i *CloneArrayInstruction) {
	p.assign(i.Receiver, "clone %s", varStr(i.Array))
}

func (p *printer) VisitGetElement(i *GetElementInstruction) {
	p.assign(i.Receiver, "%s[%s]", varStr(i.Array), varStr(i.Index))
}

func (p *printer) VisitPutElement(i *PutElementInstruction) {
	fmt.Fprintf(&p.sb, "%s[%s] = %s", varStr(i.Array), varStr(i.Index), varStr(i.Value))
}

func (p *printer) VisitInvoke(i *InvokeInstruction) {
	if i.Receiver != nil {
		fmt.Fprintf(&p.sb, "%s = ", varStr(i.Receiver))
	}
	fmt.Fprintf(&p.sb, "invoke %s %s(", i.Type, i.Method)
	if i.Instance != nil {
		p.sb.WriteString(varStr(i.Instance))
		if len(i.Arguments) > 0 {
			p.sb.WriteString("; ")
		}
	}
	for k, a := range i.Arguments {
		if k > 0 {
			p.sb.WriteString(", ")
		}
		p.sb.WriteString(varStr(a))
	}
	p.sb.WriteByte(')')
}

func (p *printer) VisitIsInstance(i *IsInstanceInstruction) {
	p.assign(i.Receiver, "%s instanceof %s", varStr(i.Value), typeStr(i.Type))
}
