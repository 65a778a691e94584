package apecrunch

import (
	"unicode"
)

// VarTable maps variable names to Numbers. Names are case-sensitive and
// unique; assigning an existing name replaces its value. The zero VarTable
// is not usable; create one with NewVarTable.
type VarTable struct {
	vars map[string]*Number
}

// NewVarTable creates an empty variable table.
func NewVarTable() *VarTable {
	return &VarTable{vars: make(map[string]*Number)}
}

// Get returns the value of a variable and whether it is defined.
func (t *VarTable) Get(name string) (*Number, bool) {
	v, ok := t.vars[name]
	return v, ok
}

// Set defines or replaces a variable. The name must start with a letter and
// continue with letters, digits, or underscores, and must not be a reserved
// function or constant name.
func (t *VarTable) Set(name string, value *Number) error {
	if !ValidName(name) {
		return &InvalidNameError{Name: name}
	}
	if Reserved(name) {
		return &ReservedNameError{Name: name}
	}
	t.vars[name] = value
	return nil
}

// Len returns the number of defined variables.
func (t *VarTable) Len() int {
	return len(t.vars)
}

// Names returns the defined variable names in sorted order.
func (t *VarTable) Names() []string {
	names := make([]string, 0, len(t.vars))
	for k := range t.vars {
		names = append(names, k)
	}
	sortstrs(names)
	return names
}

// Snapshot returns a copy of the table's contents. Numbers are immutable, so
// the snapshot shares them.
func (t *VarTable) Snapshot() map[string]*Number {
	snap := make(map[string]*Number, len(t.vars))
	for k, v := range t.vars {
		snap[k] = v
	}
	return snap
}

// Restore replaces the table's contents with a snapshot.
func (t *VarTable) Restore(snap map[string]*Number) {
	t.vars = make(map[string]*Number, len(snap))
	for k, v := range snap {
		t.vars[k] = v
	}
}

// ValidName reports whether name matches the variable grammar: a letter
// followed by letters, digits, or underscores. Note that the tokenizer also
// accepts a leading underscore for identifiers; such names can be referenced
// in expressions but never assigned.
func ValidName(name string) bool {
	for i, r := range name {
		switch {
		case unicode.IsLetter(r):
		case i > 0 && (r == '_' || unicode.IsDigit(r)):
		default:
			return false
		}
	}
	return name != ""
}
