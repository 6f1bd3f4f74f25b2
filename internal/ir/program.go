package ir

// Variable is a virtual register of a program.
type Variable struct {
	Index     int
	DebugName string
}

// BasicBlock is a straight-line sequence of instructions.
type BasicBlock struct {
	Index        int
	Instructions []Instruction

	program *Program
}

// Program returns the program owning the block.
func (b *BasicBlock) Program() *Program {
	if b == nil {
		return nil
	}
	return b.program
}

// Add appends instructions to the block.
func (b *BasicBlock) Add(ins ...Instruction) {
	b.Instructions = append(b.Instructions, ins...)
}

// Program is a method body: blocks in order, block 0 is the entry.
type Program struct {
	Blocks    []*BasicBlock
	Variables []*Variable
}

// NewProgram returns an empty program.
func NewProgram() *Program {
	return &Program{}
}

// CreateBlock appends a new empty block.
func (p *Program) CreateBlock() *BasicBlock {
	b := &BasicBlock{Index: len(p.Blocks), program: p}
	p.Blocks = append(p.Blocks, b)
	return b
}

// CreateVariable appends a new variable.
func (p *Program) CreateVariable(debugName string) *Variable {
	v := &Variable{Index: len(p.Variables), DebugName: debugName}
	p.Variables = append(p.Variables, v)
	return v
}

// BlockCount returns the number of blocks.
func (p *Program) BlockCount() int {
	if p == nil {
		return 0
	}
	return len(p.Blocks)
}

// BlockAt returns the i-th block or nil when out of range.
func (p *Program) BlockAt(i int) *BasicBlock {
	if p == nil || i < 0 || i >= len(p.Blocks) {
		return nil
	}
	return p.Blocks[i]
}

// VariableAt returns the i-th variable or nil when out of range.
func (p *Program) VariableAt(i int) *Variable {
	if p == nil || i < 0 || i >= len(p.Variables) {
		return nil
	}
	return p.Variables[i]
}

// Owns reports whether b is one of p's blocks.
func (p *Program) Owns(b *BasicBlock) bool {
	return b != nil && p != nil && b.program == p && b.Index >= 0 && b.Index < len(p.Blocks) && p.Blocks[b.Index] == b
}

// OwnsVariable reports whether v is one of p's variables.
func (p *Program) OwnsVariable(v *Variable) bool {
	return v != nil && p != nil && v.Index >= 0 && v.Index < len(p.Variables) && p.Variables[v.Index] == v
}

// InstructionCount returns the total number of instructions in p.
func (p *Program) InstructionCount() int {
	if p == nil {
		return 0
	}
	n := 0
	for _, b := range p.Blocks {
		n += len(b.Instructions)
	}
	return n
}
