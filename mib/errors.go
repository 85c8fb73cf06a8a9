package mib

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnresolved matches every resolution failure caused by nodes whose
// parent could not be found.
var ErrUnresolved = errors.New("unresolved nodes")

// MissingDependenciesError reports unresolved nodes that are explained
// by imports from modules absent from the working set. Supplying those
// modules may fix the run.
type MissingDependenciesError struct {
	// Modules is sorted and free of duplicates.
	Modules    []string
	Unresolved int
}

func (e *MissingDependenciesError) Error() string {
	return fmt.Sprintf("Missing MIB dependencies: %s. Orphaned nodes: %d",
		strings.Join(e.Modules, ", "), e.Unresolved)
}

// Is reports whether target is ErrUnresolved.
func (e *MissingDependenciesError) Is(target error) bool {
	return target == ErrUnresolved
}

// UnresolvedOrphansError reports unresolved nodes that no import
// explains, typically a misspelled parent or an unknown ambient root.
type UnresolvedOrphansError struct {
	// Unresolved counts every node that could not be placed, including
	// those whose ancestors are orphans.
	Unresolved int
	// Orphans lists the nodes whose own parent never resolved, as
	// "MODULE::name -> parent", sorted.
	Orphans []string
}

func (e *UnresolvedOrphansError) Error() string {
	const shown = 5
	msg := fmt.Sprintf("Unresolved nodes: %d", e.Unresolved)
	if len(e.Orphans) == 0 {
		return msg
	}
	list := e.Orphans
	suffix := ""
	if len(list) > shown {
		suffix = fmt.Sprintf(", and %d more", len(list)-shown)
		list = list[:shown]
	}
	return msg + " (" + strings.Join(list, ", ") + suffix + ")"
}

// Is reports whether target is ErrUnresolved.
func (e *UnresolvedOrphansError) Is(target error) bool {
	return target == ErrUnresolved
}
