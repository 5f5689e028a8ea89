package gvars

import "fmt"

// ErrorKind classifies the errors raised by the namespace. Each kind is itself
// an error, so callers can test for a kind with errors.Is.
type ErrorKind int

const (
	// ReadOnlyVariable is raised by a checked assignment to a read-only
	// variable.
	ReadOnlyVariable ErrorKind = iota + 1
	// UnboundVariable is raised when a variable has no value, including when
	// an automatic variable's evaluator failed to assign one.
	UnboundVariable
	// NotAFunction is raised by the stub held in a fopy cell whose variable is
	// bound to a value that cannot be called.
	NotAFunction
	// InvalidHandle is raised for a handle that was never issued.
	InvalidHandle
	// AlreadyBound is raised when an automatic descriptor is installed on a
	// variable that already has a value.
	AlreadyBound
	// AlreadyAutomatic is raised when a second automatic descriptor is
	// installed on a variable.
	AlreadyAutomatic
	// InvalidValue is raised when nil is assigned. Variables cannot be
	// unbound.
	InvalidValue
)

var kindText = map[ErrorKind]string{
	ReadOnlyVariable: "variable is read-only",
	UnboundVariable:  "variable must have an assigned value",
	NotAFunction:     "variable must be a function",
	InvalidHandle:    "invalid variable handle",
	AlreadyBound:     "variable already has a value",
	AlreadyAutomatic: "variable is already automatic",
	InvalidValue:     "value must not be nil",
}

func (k ErrorKind) Error() string {
	if s, ok := kindText[k]; ok {
		return s
	}
	return fmt.Sprintf("error kind %d", int(k))
}

// Internal reports whether errors of this kind indicate misuse of the
// namespace by kernel code rather than a condition a user can recover from.
func (k ErrorKind) Internal() bool {
	switch k {
	case InvalidHandle, AlreadyBound, AlreadyAutomatic, InvalidValue:
		return true
	default:
		return false
	}
}

// Error describes a failed namespace operation.
type Error struct {
	Kind   ErrorKind
	Handle Handle
	// Name is empty when the handle was never issued.
	Name string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	var msg string
	switch {
	case e.Name != "":
		msg = fmt.Sprintf("%s: %v", e.Name, e.Kind)
	case e.Handle != NoHandle:
		msg = fmt.Sprintf("#%d: %v", e.Handle, e.Kind)
	default:
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}
