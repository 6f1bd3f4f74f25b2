package ir

import "fmt"

// InstrKind enumerates instruction kinds.
type InstrKind uint8

const (
	// InstrEmpty is a no-op.
	InstrEmpty InstrKind = iota
	// InstrClassConstant loads a class literal.
	InstrClassConstant
	// InstrNullConstant loads null.
	InstrNullConstant
	// InstrIntegerConstant loads an int constant.
	InstrIntegerConstant
	// InstrLongConstant loads a long constant.
	InstrLongConstant
	// InstrFloatConstant loads a float constant.
	InstrFloatConstant
	// InstrDoubleConstant loads a double constant.
	InstrDoubleConstant
	// InstrStringConstant loads a string constant.
	InstrStringConstant
	// InstrBinary is a binary arithmetic or logic operation.
	InstrBinary
	// InstrNegate is an arithmetic negation.
	InstrNegate
	// InstrAssign copies one variable into another.
	InstrAssign
	// InstrCast is a reference type cast.
	InstrCast
	// InstrCastNumber converts between numeric types.
	InstrCastNumber
	// InstrBranching is a conditional branch on one operand.
	InstrBranching
	// InstrBinaryBranching is a conditional branch comparing two operands.
	InstrBinaryBranching
	// InstrJump is an unconditional jump.
	InstrJump
	// InstrSwitch is a table switch.
	InstrSwitch
	// InstrExit returns from the method.
	InstrExit
	// InstrRaise throws an exception.
	InstrRaise
	// InstrConstructArray allocates a single-dimension array.
	InstrConstructArray
	// InstrConstruct allocates an object.
	InstrConstruct
	// InstrConstructMultiArray allocates a multi-dimension array.
	InstrConstructMultiArray
	// InstrGetField reads a field.
	InstrGetField
	// InstrPutField writes a field.
	InstrPutField
	// InstrArrayLength reads an array length.
	InstrArrayLength
	// InstrCloneArray copies an array.
	InstrCloneArray
	// InstrGetElement reads an array element.
	InstrGetElement
	// InstrPutElement writes an array element.
	InstrPutElement
	// InstrInvoke calls a method.
	InstrInvoke
	// InstrIsInstance tests an object against a type.
	InstrIsInstance

	// InstrKindCount is the number of instruction kinds.
	InstrKindCount
)

var instrKindNames = [InstrKindCount]string{
	InstrEmpty:               "empty",
	InstrClassConstant:       "classConstant",
	InstrNullConstant:        "nullConstant",
	InstrIntegerConstant:     "intConstant",
	InstrLongConstant:        "longConstant",
	InstrFloatConstant:       "floatConstant",
	InstrDoubleConstant:      "doubleConstant",
	InstrStringConstant:      "stringConstant",
	InstrBinary:              "binary",
	InstrNegate:              "negate",
	InstrAssign:              "assign",
	InstrCast:                "cast",
	InstrCastNumber:          "castNumber",
	InstrBranching:           "branch",
	InstrBinaryBranching:     "binaryBranch",
	InstrJump:                "jump",
	InstrSwitch:              "switch",
	InstrExit:                "exit",
	InstrRaise:               "raise",
	InstrConstructArray:      "newArray",
	InstrConstruct:           "new",
	InstrConstructMultiArray: "newMultiArray",
	InstrGetField:            "getField",
	InstrPutField:            "putField",
	InstrArrayLength:         "arrayLength",
	InstrCloneArray:          "cloneArray",
	InstrGetElement:          "getElement",
	InstrPutElement:          "putElement",
	InstrInvoke:              "invoke",
	InstrIsInstance:          "isInstance",
}

func (k InstrKind) String() string {
	if k < InstrKindCount {
		return instrKindNames[k]
	}
	return fmt.Sprintf("instr(%d)", uint8(k))
}

// AllInstrKinds returns every instruction kind in declaration order.
func AllInstrKinds() []InstrKind {
	kinds := make([]InstrKind, 0, InstrKindCount)
	for k := InstrEmpty; k < InstrKindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Instruction is a single IR instruction. The set of implementations is
// closed: each one dispatches to its own InstructionVisitor method, so a
// new kind cannot be added without every visitor in the tree handling it.
type Instruction interface {
	Kind() InstrKind
	Accept(v InstructionVisitor)
	instruction()
}

// InstructionVisitor has one method per instruction kind.
type InstructionVisitor interface {
	VisitEmpty(*EmptyInstruction)
	VisitClassConstant(*ClassConstantInstruction)
	VisitNullConstant(*NullConstantInstruction)
	VisitIntegerConstant(*IntegerConstantInstruction)
	VisitLongConstant(*LongConstantInstruction)
	VisitFloatConstant(*FloatConstantInstruction)
	VisitDoubleConstant(*DoubleConstantInstruction)
	VisitStringConstant(*StringConstantInstruction)
	VisitBinary(*BinaryInstruction)
	VisitNegate(*NegateInstruction)
	VisitAssign(*AssignInstruction)
	VisitCast(*CastInstruction)
	VisitCastNumber(*CastNumberInstruction)
	VisitBranching(*BranchingInstruction)
	VisitBinaryBranching(*BinaryBranchingInstruction)
	VisitJump(*JumpInstruction)
	VisitSwitch(*SwitchInstruction)
	VisitExit(*ExitInstruction)
	VisitRaise(*RaiseInstruction)
	VisitConstructArray(*ConstructArrayInstruction)
	VisitConstruct(*ConstructInstruction)
	VisitConstructMultiArray(*ConstructMultiArrayInstruction)
	VisitGetField(*GetFieldInstruction)
	VisitPutField(*PutFieldInstruction)
	VisitArrayLength(*ArrayLengthInstruction)
	VisitCloneArray(*CloneArrayInstruction)
	VisitGetElement(*GetElementInstruction)
	VisitPutElement(*PutElementInstruction)
	VisitInvoke(*InvokeInstruction)
	VisitIsInstance(*IsInstanceInstruction)
}

// NumericType is the operand type of arithmetic instructions.
type NumericType uint8

const (
	NumericInt NumericType = iota
	NumericLong
	NumericFloat
	NumericDouble
)

func (t NumericType) String() string {
	switch t {
	case NumericInt:
		return "int"
	case NumericLong:
		return "long"
	case NumericFloat:
		return "float"
	case NumericDouble:
		return "double"
	default:
		return fmt.Sprintf("numeric(%d)", uint8(t))
	}
}

// BinaryOperation is the operator of a BinaryInstruction.
type BinaryOperation uint8

const (
	OpAdd BinaryOperation = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpCompare
	OpAnd
	OpOr
	OpXor
	OpShiftLeft
	OpShiftRight
	OpShiftRightUnsigned
)

var binaryOpNames = [...]string{"add", "sub", "mul", "div", "mod", "cmp", "and", "or", "xor", "shl", "shr", "ushr"}

func (op BinaryOperation) String() string {
	if int(op) < len(binaryOpNames) {
		return binaryOpNames[op]
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// BranchingCondition is the condition of a BranchingInstruction.
type BranchingCondition uint8

const (
	CondEqual BranchingCondition = iota
	CondNotEqual
	CondLess
	CondGreaterOrEqual
	CondGreater
	CondLessOrEqual
	CondNull
	CondNotNull
)

var branchCondNames = [...]string{"eq", "ne", "lt", "ge", "gt", "le", "null", "notnull"}

func (c BranchingCondition) String() string {
	if int(c) < len(branchCondNames) {
		return branchCondNames[c]
	}
	return fmt.Sprintf("cond(%d)", uint8(c))
}

// BinaryBranchingCondition is the condition of a BinaryBranchingInstruction.
type BinaryBranchingCondition uint8

const (
	BinCondEqual BinaryBranchingCondition = iota
	BinCondNotEqual
	BinCondReferenceEqual
	BinCondReferenceNotEqual
)

var binBranchCondNames = [...]string{"eq", "ne", "refeq", "refne"}

func (c BinaryBranchingCondition) String() string {
	if int(c) < len(binBranchCondNames) {
		return binBranchCondNames[c]
	}
	return fmt.Sprintf("bincond(%d)", uint8(c))
}

// InvocationType distinguishes dispatch modes.
type InvocationType uint8

const (
	// InvokeSpecial is a statically bound call (constructors, private, static, super).
	InvokeSpecial InvocationType = iota
	// InvokeVirtual is a dynamically dispatched call.
	InvokeVirtual
)

func (t InvocationType) String() string {
	if t == InvokeVirtual {
		return "virtual"
	}
	return "special"
}

// FieldReference names a field of a class.
type FieldReference struct {
	ClassName string
	FieldName string
}

func (r FieldReference) String() string {
	return r.ClassName + "." + r.FieldName
}

// MethodReference names a method of a class. Signature holds the
// parameter types followed by the result type.
type MethodReference struct {
	ClassName string
	Name      string
	Signature []ValueType
}

func (r MethodReference) String() string {
	return r.ClassName + "." + r.Name + FormatSignature(r.Signature)
}

// SwitchEntry is one case of a SwitchInstruction.
type SwitchEntry struct {
	Condition int32
	Target    *BasicBlock
}

type (
	EmptyInstruction struct{}

	ClassConstantInstruction struct {
		Constant ValueType
		Receiver *Variable
	}

	NullConstantInstruction struct {
		Receiver *Variable
	}

	IntegerConstantInstruction struct {
		Constant int32
		Receiver *Variable
	}

	LongConstantInstruction struct {
		Constant int64
		Receiver *Variable
	}

	FloatConstantInstruction struct {
		Constant float32
		Receiver *Variable
	}

	DoubleConstantInstruction struct {
		Constant float64
		Receiver *Variable
	}

	StringConstantInstruction struct {
		Constant string
		Receiver *Variable
	}

	BinaryInstruction struct {
		Operation   BinaryOperation
		OperandType NumericType
		First       *Variable
		Second      *Variable
		Receiver    *Variable
	}

	NegateInstruction struct {
		OperandType NumericType
		Operand     *Variable
		Receiver    *Variable
	}

	AssignInstruction struct {
		Assignee *Variable
		Receiver *Variable
	}

	CastInstruction struct {
		TargetType ValueType
		Value      *Variable
		Receiver   *Variable
	}

	CastNumberInstruction struct {
		SourceType NumericType
		TargetType NumericType
		Value      *Variable
		Receiver   *Variable
	}

	BranchingInstruction struct {
		Condition   BranchingCondition
		Operand     *Variable
		Consequent  *BasicBlock
		Alternative *BasicBlock
	}

	BinaryBranchingInstruction struct {
		Condition   BinaryBranchingCondition
		First       *Variable
		Second      *Variable
		Consequent  *BasicBlock
		Alternative *BasicBlock
	}

	JumpInstruction struct {
		Target *BasicBlock
	}

	SwitchInstruction struct {
		Condition     *Variable
		Entries       []SwitchEntry
		DefaultTarget *BasicBlock
	}

	// ExitInstruction returns ValueToReturn, or nothing when it is nil.
	ExitInstruction struct {
		ValueToReturn *Variable
	}

	RaiseInstruction struct {
		Exception *Variable
	}

	ConstructArrayInstruction struct {
		ItemType ValueType
		Size     *Variable
		Receiver *Variable
	}

	// ConstructInstruction allocates an instance of the class named Type.
	ConstructInstruction struct {
		Type     string
		Receiver *Variable
	}

	ConstructMultiArrayInstruction struct {
		ItemType   ValueType
		Dimensions []*Variable
		Receiver   *Variable
	}

	// GetFieldInstruction reads Field; Instance is nil for static fields.
	GetFieldInstruction struct {
		Instance *Variable
		Field    FieldReference
		Receiver *Variable
	}

	// PutFieldInstruction writes Field; Instance is nil for static fields.
	PutFieldInstruction struct {
		Instance *Variable
		Field    FieldReference
		Value    *Variable
	}

	ArrayLengthInstruction struct {
		Array    *Variable
		Receiver *Variable
	}

	CloneArrayInstruction struct {
		Array    *Variable
		Receiver *Variable
	}

	GetElementInstruction struct {
		Array    *Variable
		Index    *Variable
		Receiver *Variable
	}

	PutElementInstruction struct {
		Array *Variable
		Index *Variable
		Value *Variable
	}

	// InvokeInstruction calls Method; Instance is nil for static calls and
	// Receiver is nil when the result is discarded.
	InvokeInstruction struct {
		Type      InvocationType
		Instance  *Variable
		Method    MethodReference
		Arguments []*Variable
		Receiver  *Variable
	}

	IsInstanceInstruction struct {
		Type     ValueType
		Value    *Variable
		Receiver *Variable
	}
)

func (*EmptyInstruction) Kind() InstrKind               { return InstrEmpty }
func (*ClassConstantInstruction) Kind() InstrKind       { return InstrClassConstant }
func (*NullConstantInstruction) Kind() InstrKind        { return InstrNullConstant }
func (*IntegerConstantInstruction) Kind() InstrKind     { return InstrIntegerConstant }
func (*LongConstantInstruction) Kind() InstrKind        { return InstrLongConstant }
func (*FloatConstantInstruction) Kind() InstrKind       { return InstrFloatConstant }
func (*DoubleConstantInstruction) Kind() InstrKind      { return InstrDoubleConstant }
func (*StringConstantInstruction) Kind() InstrKind      { return InstrStringConstant }
func (*BinaryInstruction) Kind() InstrKind              { return InstrBinary }
func (*NegateInstruction) Kind() InstrKind              { return InstrNegate }
func (*AssignInstruction) Kind() InstrKind              { return InstrAssign }
func (*CastInstruction) Kind() InstrKind                { return InstrCast }
func (*CastNumberInstruction) Kind() InstrKind          { return InstrCastNumber }
func (*BranchingInstruction) Kind() InstrKind           { return InstrBranching }
func (*BinaryBranchingInstruction) Kind() InstrKind     { return InstrBinaryBranching }
func (*JumpInstruction) Kind() InstrKind                { return InstrJump }
func (*SwitchInstruction) Kind() InstrKind              { return InstrSwitch }
func (*ExitInstruction) Kind() InstrKind                { return InstrExit }
func (*RaiseInstruction) Kind() InstrKind               { return InstrRaise }
func (*ConstructArrayInstruction) Kind() InstrKind      { return InstrConstructArray }
func (*ConstructInstruction) Kind() InstrKind           { return InstrConstruct }
func (*ConstructMultiArrayInstruction) Kind() InstrKind { return InstrConstructMultiArray }
func (*GetFieldInstruction) Kind() InstrKind            { return InstrGetField }
func (*PutFieldInstruction) Kind() InstrKind            { return InstrPutField }
func (*ArrayLengthInstruction) Kind() InstrKind         { return InstrArrayLength }
func (*CloneArrayInstruction) Kind() InstrKind          { return InstrCloneArray }
func (*GetElementInstruction) Kind() InstrKind          { return InstrGetElement }
func (*PutElementInstruction) Kind() InstrKind          { return InstrPutElement }
func (*InvokeInstruction) Kind() InstrKind              { return InstrInvoke }
func (*IsInstanceInstruction) Kind() InstrKind          { return InstrIsInstance }

func (i *EmptyInstruction) Accept(v InstructionVisitor)               { v.VisitEmpty(i) }
func (i *ClassConstantInstruction) Accept(v InstructionVisitor)       { v.VisitClassConstant(i) }
func (i *NullConstantInstruction) Accept(v InstructionVisitor)        { v.VisitNullConstant(i) }
func (i *IntegerConstantInstruction) Accept(v InstructionVisitor)     { v.VisitIntegerConstant(i) }
func (i *LongConstantInstruction) Accept(v InstructionVisitor)        { v.VisitLongConstant(i) }
func (i *FloatConstantInstruction) Accept(v InstructionVisitor)       { v.VisitFloatConstant(i) }
func (i *DoubleConstantInstruction) Accept(v InstructionVisitor)      { v.VisitDoubleConstant(i) }
func (i *StringConstantInstruction) Accept(v InstructionVisitor)      { v.VisitStringConstant(i) }
func (i *BinaryInstruction) Accept(v InstructionVisitor)              { v.VisitBinary(i) }
func (i *NegateInstruction) Accept(v InstructionVisitor)              { v.VisitNegate(i) }
func (i *AssignInstruction) Accept(v InstructionVisitor)              { v.VisitAssign(i) }
func (i *CastInstruction) Accept(v InstructionVisitor)                { v.VisitCast(i) }
func (i *CastNumberInstruction) Accept(v InstructionVisitor)          { v.VisitCastNumber(i) }
func (i *BranchingInstruction) Accept(v InstructionVisitor)           { v.VisitBranching(i) }
func (i *BinaryBranchingInstruction) Accept(v InstructionVisitor)     { v.VisitBinaryBranching(i) }
func (i *JumpInstruction) Accept(v InstructionVisitor)                { v.VisitJump(i) }
func (i *SwitchInstruction) Accept(v InstructionVisitor)              { v.VisitSwitch(i) }
func (i *ExitInstruction) Accept(v InstructionVisitor)                { v.VisitExit(i) }
func (i *RaiseInstruction) Accept(v InstructionVisitor)               { v.VisitRaise(i) }
func (i *ConstructArrayInstruction) Accept(v InstructionVisitor)      { v.VisitConstructArray(i) }
func (i *ConstructInstruction) Accept(v InstructionVisitor)           { v.VisitConstruct(i) }
func (i *ConstructMultiArrayInstruction) Accept(v InstructionVisitor) { v.VisitConstructMultiArray(i) }
func (i *GetFieldInstruction) Accept(v InstructionVisitor)            { v.VisitGetField(i) }
func (i *PutFieldInstruction) Accept(v InstructionVisitor)            { v.VisitPutField(i) }
func (i *ArrayLengthInstruction) Accept(v InstructionVisitor)         { v.VisitArrayLength(i) }
func (i *CloneArrayInstruction) Accept(v InstructionVisitor)          { v.VisitCloneArray(i) }
func (i *GetElementInstruction) Accept(v InstructionVisitor)          { v.VisitGetElement(i) }
func (i *PutElementInstruction) Accept(v InstructionVisitor)          { v.VisitPutElement(i) }
func (i *InvokeInstruction) Accept(v InstructionVisitor)              { v.VisitInvoke(i) }
func (i *IsInstanceInstruction) Accept(v InstructionVisitor)          { v.VisitIsInstance(i) }

func (*EmptyInstruction) instruction()               {}
func (*ClassConstantInstruction) instruction()       {}
func (*NullConstantInstruction) instruction()        {}
func (*IntegerConstantInstruction) instruction()     {}
func (*LongConstantInstruction) instruction()        {}
func (*FloatConstantInstruction) instruction()       {}
func (*DoubleConstantInstruction) instruction()      {}
func (*StringConstantInstruction) instruction()      {}
func (*BinaryInstruction) instruction()              {}
func (*NegateInstruction) instruction()              {}
func (*AssignInstruction) instruction()              {}
func (*CastInstruction) instruction()                {}
func (*CastNumberInstruction) instruction()          {}
func (*BranchingInstruction) instruction()           {}
func (*BinaryBranchingInstruction) instruction()     {}
func (*JumpInstruction) instruction()                {}
func (*SwitchInstruction) instruction()              {}
func (*ExitInstruction) instruction()                {}
func (*RaiseInstruction) instruction()               {}
func (*ConstructArrayInstruction) instruction()      {}
func (*ConstructInstruction) instruction()           {}
func (*ConstructMultiArrayInstruction) instruction() {}
func (*GetFieldInstruction) instruction()            {}
func (*PutFieldInstruction) instruction()            {}
func (*ArrayLengthInstruction) instruction()         {}
func (*CloneArrayInstruction) instruction()          {}
func (*GetElementInstruction) instruction()          {}
func (*PutElementInstruction) instruction()          {}
func (*InvokeInstruction) instruction()              {}
func (*IsInstanceInstruction) instruction()          {}
