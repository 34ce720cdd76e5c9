package jack

// SymbolType is the storage class of a variable.
type SymbolType string

const (
	InvalidSymbol  SymbolType = ""
	StaticSymbol   SymbolType = "static"
	FieldSymbol    SymbolType = "field"
	ArgumentSymbol SymbolType = "argument"
	VarSymbol      SymbolType = "var"
)

type Symbol struct {
	Name         string
	SymbolType   SymbolType
	VariableType string
	Index        MachineWord
}

// Segment is the VM segment a variable of this storage class lives in.
func (s Symbol) Segment() VMSegmentType {
	switch s.SymbolType {
	case StaticSymbol:
		return StaticVMSegment
	case FieldSymbol:
		return ThisVMSegment
	case ArgumentSymbol:
		return ArgumentVMSegment
	case VarSymbol:
		return LocalVMSegment
	}
	return InvalidVMSegmentType
}

// IsObject reports whether the declared type names a class rather than one
// of the primitive types.
func (s Symbol) IsObject() bool {
	switch KeywordType(s.VariableType) {
	case IntKeyword, CharKeyword, BooleanKeyword:
		return false
	}
	return true
}
