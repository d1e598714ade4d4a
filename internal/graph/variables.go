package graph

import (
	"fmt"

	"github.com/aretw0/tapestry/pkg/domain"
)

// Variables returns a deep copy of the document variables.
func (s *Store) Variables() []domain.Variable {
	return domain.CloneVariables(s.variables)
}

// Variable returns the variable with the given name.
func (s *Store) Variable(name string) (domain.Variable, bool) {
	i := s.variableIndex(name)
	if i < 0 {
		return domain.Variable{}, false
	}
	return s.variables[i].Clone(), true
}

func (s *Store) variableIndex(name string) int {
	for i := range s.variables {
		if s.variables[i].Name == name {
			return i
		}
	}
	return -1
}

// SetVariable inserts v, or updates the existing variable of the same name.
// It reports whether a new variable was inserted.
func (s *Store) SetVariable(v domain.Variable) (bool, error) {
	if v.Name == "" {
		return false, fmt.Errorf("%w: empty variable name", domain.ErrInvalidName)
	}
	if v.Scope == "" {
		v.Scope = domain.ScopeLocal
	}
	v = v.Clone()
	if i := s.variableIndex(v.Name); i >= 0 {
		s.variables[i] = v
		s.touch()
		return false, nil
	}
	s.variables = append(s.variables, v)
	s.touch()
	return true, nil
}

// AddVariables appends every variable whose name is not taken yet.
// It returns the names that were dropped because they already existed.
func (s *Store) AddVariables(vars []domain.Variable) (dropped []string) {
	for _, v := range vars {
		if v.Name == "" {
			continue
		}
		if s.variableIndex(v.Name) >= 0 {
			dropped = append(dropped, v.Name)
			continue
		}
		s.variables = append(s.variables, v.Clone())
	}
	if len(vars) > len(dropped) {
		s.touch()
	}
	return dropped
}

// DeleteVariable removes a variable by name.
func (s *Store) DeleteVariable(name string) error {
	i := s.variableIndex(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrVariableNotFound, name)
	}
	s.variables = append(s.variables[:i:i], s.variables[i+1:]...)
	s.touch()
	return nil
}

// RenameVariable changes the declared name of a variable.
// References inside node data are not touched here.
func (s *Store) RenameVariable(oldName, newName string) error {
	if newName == "" {
		return fmt.Errorf("%w: empty variable name", domain.ErrInvalidName)
	}
	i := s.variableIndex(oldName)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrVariableNotFound, oldName)
	}
	if oldName == newName {
		return nil
	}
	if s.variableIndex(newName) >= 0 {
		return fmt.Errorf("%w: %s", domain.ErrVariableExists, newName)
	}
	s.variables[i].Name = newName
	s.touch()
	return nil
}
