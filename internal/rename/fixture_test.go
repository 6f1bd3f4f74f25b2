package rename_test

import (
	"reflect"

	"relocator/internal/ir"
	"relocator/internal/model"
)

// everyKind builds a program holding one instruction of every kind.
// Class references use a.B, a.C and a.D.
func everyKind() *ir.Program {
	p := ir.NewProgram()
	x := p.CreateVariable("x")
	y := p.CreateVariable("y")
	r := p.CreateVariable("r")
	b0 := p.CreateBlock()
	b1 := p.CreateBlock()

	b0.Add(
		&ir.EmptyInstruction{},
		&ir.ClassConstantInstruction{Constant: ir.ArrayOf(ir.ObjectOf("a.B")), Receiver: r},
		&ir.NullConstantInstruction{Receiver: r},
		&ir.IntegerConstantInstruction{Constant: 7, Receiver: x},
		&ir.LongConstantInstruction{Constant: 1 << 40, Receiver: x},
		&ir.FloatConstantInstruction{Constant: 1.5, Receiver: x},
		&ir.DoubleConstantInstruction{Constant: 2.25, Receiver: x},
		&ir.StringConstantInstruction{Constant: "a.B", Receiver: r},
		&ir.BinaryInstruction{Operation: ir.OpAdd, OperandType: ir.NumericInt, First: x, Second: y, Receiver: x},
		&ir.NegateInstruction{OperandType: ir.NumericLong, Operand: x, Receiver: x},
		&ir.AssignInstruction{Assignee: y, Receiver: x},
		&ir.CastInstruction{TargetType: ir.ObjectOf("a.C"), Value: r, Receiver: r},
		&ir.CastNumberInstruction{SourceType: ir.NumericInt, TargetType: ir.NumericDouble, Value: x, Receiver: y},
		&ir.ConstructArrayInstruction{ItemType: ir.ObjectOf("a.B"), Size: x, Receiver: r},
		&ir.ConstructInstruction{Type: "a.B", Receiver: r},
		&ir.ConstructMultiArrayInstruction{ItemType: ir.ArrayOf(ir.ObjectOf("a.C")), Dimensions: []*ir.Variable{x, y}, Receiver: r},
		&ir.GetFieldInstruction{Instance: r, Field: ir.FieldReference{ClassName: "a.B", FieldName: "f"}, Receiver: x},
		&ir.PutFieldInstruction{Field: ir.FieldReference{ClassName: "a.C", FieldName: "g"}, Value: x},
		&ir.ArrayLengthInstruction{Array: r, Receiver: x},
		&ir.CloneArrayInstruction{Array: r, Receiver: r},
		&ir.GetElementInstruction{Array: r, Index: x, Receiver: y},
		&ir.PutElementInstruction{Array: r, Index: x, Value: y},
		&ir.InvokeInstruction{
			Type:      ir.InvokeVirtual,
			Instance:  r,
			Method:    ir.MethodReference{ClassName: "a.B", Name: "m", Signature: []ir.ValueType{ir.ObjectOf("a.C"), ir.Void}},
			Arguments: []*ir.Variable{r},
		},
		&ir.IsInstanceInstruction{Type: ir.ObjectOf("a.D"), Value: r, Receiver: x},
		&ir.BranchingInstruction{Condition: ir.CondNotNull, Operand: r, Consequent: b1, Alternative: b1},
	)
	b1.Add(
		&ir.BinaryBranchingInstruction{Condition: ir.BinCondEqual, First: x, Second: y, Consequent: b0, Alternative: b1},
		&ir.SwitchInstruction{Condition: x, Entries: []ir.SwitchEntry{{Condition: 1, Target: b0}}, DefaultTarget: b1},
		&ir.RaiseInstruction{Exception: r},
		&ir.JumpInstruction{Target: b0},
		&ir.ExitInstruction{ValueToReturn: x},
	)
	return p
}

// snapshot returns shallow copies of every instruction struct in p.
func snapshot(p *ir.Program) []any {
	var out []any
	for _, b := range p.Blocks {
		for _, ins := range b.Instructions {
			out = append(out, reflect.ValueOf(ins).Elem().Interface())
		}
	}
	return out
}

func instructions(p *ir.Program) []ir.Instruction {
	var out []ir.Instruction
	for _, b := range p.Blocks {
		out = append(out, b.Instructions...)
	}
	return out
}

// sampleClass builds a.B extends a.Base implements a.I1, a.I2 with two
// fields and a method whose body holds every instruction kind.
func sampleClass() *model.ClassHolder {
	cls := model.NewClass("a.B")
	cls.Parent = "a.Base"
	cls.Interfaces = []string{"a.I1", "a.I2"}
	cls.Modifiers = model.ModAbstract
	cls.Level = model.LevelPublic
	_ = cls.Annotations.Add(model.NewAnnotation("a.Marker"))

	f1 := model.NewField("next", ir.ObjectOf("a.B"))
	f1.Level = model.LevelPrivate
	_ = f1.Annotations.Add(model.NewAnnotation("a.Marker"))
	f2 := model.NewField("count", ir.Int)
	f2.InitialValue = int32(3)
	_ = cls.AddField(f1)
	_ = cls.AddField(f2)

	run := model.NewMethod("run", ir.ObjectOf("a.C"), ir.ArrayOf(ir.ObjectOf("a.B")), ir.Void)
	run.Level = model.LevelPublic
	run.Program = everyKind()
	_ = cls.AddMethod(run)

	get := model.NewMethod("get", ir.ObjectOf("a.D"))
	get.Modifiers = model.ModStatic
	_ = cls.AddMethod(get)
	return cls
}
