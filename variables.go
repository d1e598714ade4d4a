package tapestry

import (
	"fmt"

	"github.com/aretw0/tapestry/internal/varref"
	"github.com/aretw0/tapestry/pkg/domain"
	"github.com/aretw0/tapestry/pkg/schema"
)

// SetVariable inserts a variable or, when the name exists, updates it.
// The value must match the declared type.
func (e *Editor) SetVariable(v domain.Variable) error {
	if !varref.ValidName(v.Name) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidName, v.Name)
	}
	val, err := domain.NormalizeValue(v.Value)
	if err != nil {
		return fmt.Errorf("variable %s: %w", v.Name, err)
	}
	v.Value = val
	if err := schema.ValidateVariable(v); err != nil {
		return err
	}
	if _, err := e.store.SetVariable(v); err != nil {
		return err
	}
	e.emitMutation(domain.OpSetVariable, nil, nil)
	return nil
}

// DeleteVariable removes a declared variable. Placeholders referring to it
// stay in place as literal text.
func (e *Editor) DeleteVariable(name string) error {
	if err := e.store.DeleteVariable(name); err != nil {
		return err
	}
	e.emitMutation(domain.OpDeleteVariable, nil, nil)
	return nil
}

// Variables returns a copy of the declared variables.
func (e *Editor) Variables() []domain.Variable {
	return e.store.Variables()
}

// FindUsages lists every property field, at any depth, holding a {name} or
// {name[index]} placeholder. Each field is reported once.
func (e *Editor) FindUsages(name string) []Usage {
	return varref.FindUsages(e.store.Nodes(), name)
}

// RenameVariable renames a variable and rewrites every placeholder that
// references it, keeping index expressions verbatim. Pending edits are
// recorded first so the rename is one undoable step. It returns the number of
// rewritten fields. References to an undeclared name are rewritten too.
func (e *Editor) RenameVariable(oldName, newName string) (int, error) {
	if !varref.ValidName(oldName) || !varref.ValidName(newName) {
		return 0, fmt.Errorf("%w: %q -> %q", domain.ErrInvalidName, oldName, newName)
	}
	if oldName == newName {
		return 0, nil
	}
	_, declared := e.store.Variable(oldName)
	if _, taken := e.store.Variable(newName); declared && taken {
		return 0, fmt.Errorf("%w: %s", domain.ErrVariableExists, newName)
	}

	e.Record()

	if declared {
		if err := e.store.RenameVariable(oldName, newName); err != nil {
			return 0, err
		}
	}

	changes := varref.Rewrite(e.store.Nodes(), oldName, newName)
	fields := 0
	touched := make([]string, 0, len(changes))
	for _, c := range changes {
		if err := e.store.SetField(c.NodeID, c.Key, c.Value); err != nil {
			// unreachable: values originate from the store
			return fields, fmt.Errorf("rewrite %s.%s: %w", c.NodeID, c.Key, err)
		}
		fields += c.Fields
		if len(touched) == 0 || touched[len(touched)-1] != c.NodeID {
			touched = append(touched, c.NodeID)
		}
	}

	e.emitMutation(domain.OpRenameVariable, touched, nil)
	e.Record()
	e.logger.Info("variable renamed", "from", oldName, "to", newName, "fields", fields)
	return fields, nil
}
