package domain

import (
	"fmt"
	"strings"
)

// Operation is an svn sub-command that can be run against a working copy
type Operation string

const (
	OpCleanup Operation = "cleanup"
	OpUpdate  Operation = "update"
)

// Operations lists every supported operation in display order
var Operations = []Operation{OpCleanup, OpUpdate}

// ParseOperation converts a sub-command name into an Operation
func ParseOperation(s string) (Operation, error) {
	op := Operation(strings.ToLower(strings.TrimSpace(s)))
	if !op.Valid() {
		return "", fmt.Errorf("unsupported operation %q", s)
	}
	return op, nil
}

// Valid reports whether the operation is one svnbatch knows how to run
func (o Operation) Valid() bool {
	return o == OpCleanup || o == OpUpdate
}

// Title returns the capitalised name shown in the UI
func (o Operation) Title() string {
	switch o {
	case OpCleanup:
		return "Cleanup"
	case OpUpdate:
		return "Update"
	default:
		return string(o)
	}
}

func (o Operation) String() string { return string(o) }

// PathEntry is one registered working copy.
// The JSON names match the paths file written by earlier versions of the tool.
type PathEntry struct {
	Path                string `json:"path"`
	IncludeInOperations bool   `json:"includeInOperations"`
}

// Selectable reports whether the entry takes part in batch operations
func (e PathEntry) Selectable() bool {
	return e.IncludeInOperations && e.Path != ""
}
