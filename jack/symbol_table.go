package jack

type Scope string

const (
	FunctionScope Scope = "function"
	ClassScope    Scope = "class"
)

func scopeOf(kind SymbolType) Scope {
	if kind == StaticSymbol || kind == FieldSymbol {
		return ClassScope
	}
	return FunctionScope
}

// SymbolTable holds the class scope and the scope of the subroutine being
// compiled. Lookups consult the subroutine scope first.
type SymbolTable struct {
	classScopeTable    map[string]Symbol
	functionScopeTable map[string]Symbol
	counts             map[SymbolType]MachineWord
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		classScopeTable:    make(map[string]Symbol),
		functionScopeTable: make(map[string]Symbol),
		counts:             make(map[SymbolType]MachineWord),
	}
}

func (s *SymbolTable) table(kind SymbolType) map[string]Symbol {
	if scopeOf(kind) == ClassScope {
		return s.classScopeTable
	}
	return s.functionScopeTable
}

// Define registers name with the next free index of its storage class.
// Redefining a name within the same scope is an error.
func (s *SymbolTable) Define(name, variableType string, kind SymbolType) (Symbol, error) {
	table := s.table(kind)
	if _, ok := table[name]; ok {
		return Symbol{}, &DuplicateDefinitionError{Name: name, Kind: kind}
	}
	symbol := Symbol{
		Name:         name,
		SymbolType:   kind,
		VariableType: variableType,
		Index:        s.counts[kind],
	}
	s.counts[kind]++
	table[name] = symbol
	return symbol, nil
}

// StartSubroutine drops every argument and local of the previous subroutine.
func (s *SymbolTable) StartSubroutine() {
	s.functionScopeTable = make(map[string]Symbol)
	s.counts[ArgumentSymbol] = 0
	s.counts[VarSymbol] = 0
}

func (s *SymbolTable) Count(kind SymbolType) MachineWord {
	return s.counts[kind]
}

func (s *SymbolTable) Lookup(name string) (Symbol, bool) {
	if symbol, ok := s.functionScopeTable[name]; ok {
		return symbol, true
	}
	symbol, ok := s.classScopeTable[name]
	return symbol, ok
}

func (s *SymbolTable) KindOf(name string) (SymbolType, bool) {
	symbol, ok := s.Lookup(name)
	return symbol.SymbolType, ok
}

func (s *SymbolTable) TypeOf(name string) (string, bool) {
	symbol, ok := s.Lookup(name)
	return symbol.VariableType, ok
}

func (s *SymbolTable) IndexOf(name string) (MachineWord, error) {
	symbol, ok := s.Lookup(name)
	if !ok {
		return 0, &UndefinedIdentifierError{Name: name}
	}
	return symbol.Index, nil
}
