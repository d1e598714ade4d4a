package domain

import "github.com/mohae/deepcopy"

// VariableType is the declared type of a workflow variable.
type VariableType string

const (
	VarString  VariableType = "string"
	VarNumber  VariableType = "number"
	VarBoolean VariableType = "boolean"
	VarList    VariableType = "list"
	VarObject  VariableType = "object"
	VarAny     VariableType = "any"
)

// Scope controls the visibility of a variable.
type Scope string

const (
	ScopeLocal  Scope = "local"
	ScopeGlobal Scope = "global"
)

// Variable is a named value referenced from node fields through {name} placeholders.
type Variable struct {
	Name  string       `json:"name" yaml:"name" mapstructure:"name"`
	Value any          `json:"value" yaml:"value" mapstructure:"value"`
	Type  VariableType `json:"type" yaml:"type" mapstructure:"type"`
	Scope Scope        `json:"scope" yaml:"scope" mapstructure:"scope"`
}

// Clone returns a deep copy of the variable.
func (v Variable) Clone() Variable {
	v.Value = deepcopy.Copy(v.Value)
	return v
}

// CloneVariables deep-copies a variable list.
func CloneVariables(vars []Variable) []Variable {
	out := make([]Variable, len(vars))
	for i, v := range vars {
		out[i] = v.Clone()
	}
	return out
}
