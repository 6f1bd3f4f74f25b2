package rename

import (
	"relocator/internal/ir"
)

// planProgram computes the renamed value of every class reference in p and
// returns closures that store them. Patches assign planned values rather
// than map again, so applying them twice is harmless.
func (r *Renamer) planProgram(p *ir.Program, at Location) ([]func(), error) {
	if p == nil {
		return nil, &IRError{At: at, Reason: "nil program"}
	}
	v := &instrPlanner{r: r}
	for bi, b := range p.Blocks {
		if b == nil {
			at.Block, at.Instr = bi, -1
			return nil, &IRError{At: at, Reason: "nil block"}
		}
		for ii, ins := range b.Instructions {
			v.at = at
			v.at.Block, v.at.Instr = bi, ii
			if ins == nil {
				return nil, &IRError{At: v.at, Reason: "nil instruction"}
			}
			v.at.Kind = ins.Kind()
			ins.Accept(v)
			if v.err != nil {
				return nil, v.err
			}
		}
	}
	return v.patches, nil
}

// instrPlanner is the per-kind patch table. Every instruction kind has a
// method here; kinds without class references are listed explicitly as
// no-ops.
type instrPlanner struct {
	r       *Renamer
	at      Location
	patches []func()
	err     error
}

var _ ir.InstructionVisitor = (*instrPlanner)(nil)

func (v *instrPlanner) typ(t ir.ValueType, what string, store func(ir.ValueType)) {
	renamed, err := v.r.renameType(t, withWhat(v.at, what))
	if err != nil {
		v.err = err
		return
	}
	v.patches = append(v.patches, func() { store(renamed) })
}

func (v *instrPlanner) name(n, what string, store func(string)) {
	renamed, err := v.r.mapName(n, withWhat(v.at, what))
	if err != nil {
		v.err = err
		return
	}
	v.patches = append(v.patches, func() { store(renamed) })
}

func (v *instrPlanner) VisitClassConstant(i *ir.ClassConstantInstruction) {
	v.typ(i.Constant, "constant", func(t ir.ValueType) { i.Constant = t })
}

func (v *instrPlanner) VisitCast(i *ir.CastInstruction) {
	v.typ(i.TargetType, "target type", func(t ir.ValueType) { i.TargetType = t })
}

func (v *instrPlanner) VisitConstructArray(i *ir.ConstructArrayInstruction) {
	v.typ(i.ItemType, "item type", func(t ir.ValueType) { i.ItemType = t })
}

func (v *instrPlanner) VisitConstructMultiArray(i *ir.ConstructMultiArrayInstruction) {
	v.typ(i.ItemType, "item type", func(t ir.ValueType) { i.ItemType = t })
}

func (v *instrPlanner) VisitConstruct(i *ir.ConstructInstruction) {
	v.name(i.Type, "constructed class", func(n string) { i.Type = n })
}

func (v *instrPlanner) VisitGetField(i *ir.GetFieldInstruction) {
	v.name(i.Field.ClassName, "field owner", func(n string) { i.Field.ClassName = n })
}

func (v *instrPlanner) VisitPutField(i *ir.PutFieldInstruction) {
	v.name(i.Field.ClassName, "field owner", func(n string) { i.Field.ClassName = n })
}

// VisitInvoke patches the declaring class only; the method signature keeps
// its original types.
func (v *instrPlanner) VisitInvoke(i *ir.InvokeInstruction) {
	v.name(i.Method.ClassName, "method owner", func(n string) { i.Method.ClassName = n })
}

func (v *instrPlanner) VisitIsInstance(i *ir.IsInstanceInstruction) {
	v.typ(i.Type, "tested type", func(t ir.ValueType) { i.Type = t })
}

// No class references.
func (v *instrPlanner) VisitEmpty(*ir.EmptyInstruction)                     {}
func (v *instrPlanner) VisitNullConstant(*ir.NullConstantInstruction)       {}
func (v *instrPlanner) VisitIntegerConstant(*ir.IntegerConstantInstruction) {}
func (v *instrPlanner) VisitLongConstant(*ir.LongConstantInstruction)       {}
func (v *instrPlanner) VisitFloatConstant(*ir.FloatConstantInstruction)     {}
func (v *instrPlanner) VisitDoubleConstant(*ir.DoubleConstantInstruction)   {}
func (v *instrPlanner) VisitStringConstant(*ir.StringConstantInstruction)   {}
func (v *instrPlanner) VisitBinary(*ir.BinaryInstruction)                   {}
func (v *instrPlanner) VisitNegate(*ir.NegateInstruction)                   {}
func (v *instrPlanner) VisitAssign(*ir.AssignInstruction)                   {}
func (v *instrPlanner) VisitCastNumber(*ir.CastNumberInstruction)           {}
func (v *instrPlanner) VisitBranching(*ir.BranchingInstruction)             {}
func (v *instrPlanner) VisitBinaryBranching(*ir.BinaryBranchingInstruction) {}
func (v *instrPlanner) VisitJump(*ir.JumpInstruction)                       {}
func (v *instrPlanner) VisitSwitch(*ir.SwitchInstruction)                   {}
func (v *instrPlanner) VisitExit(*ir.ExitInstruction)                       {}
func (v *instrPlanner) VisitRaise(*ir.RaiseInstruction)                     {}
func (v *instrPlanner) VisitArrayLength(*ir.ArrayLengthInstruction)         {}
func (v *instrPlanner) VisitCloneArray(*ir.CloneArrayInstruction)           {}
func (v *instrPlanner) VisitGetElement(*ir.GetElementInstruction)           {}
func (v *instrPlanner) VisitPutElement(*ir.PutElementInstruction)           {}
