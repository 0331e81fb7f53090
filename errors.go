package dsst

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMassNonPositive is returned when a sampled state carries a mass which is zero or negative.
	ErrMassNonPositive = errors.New("spacecraft mass is not positive")
	// ErrUnsupportedForce is returned when a force model has no instantaneous equivalent.
	ErrUnsupportedForce = errors.New("force model has no equivalent instantaneous force")
	// ErrJacobian is returned when the orbit Jacobian cannot be inverted.
	ErrJacobian = errors.New("orbit jacobian is not invertible")
	// ErrInvalidOrbit is returned for elements which do not describe a closed orbit.
	ErrInvalidOrbit = errors.New("invalid orbit")
	// ErrForceModel is returned when a force model produced an unusable contribution.
	ErrForceModel = errors.New("force model failure")
)

// ErrorKind classifies propagation errors.
type ErrorKind uint8

const (
	// KindMassNonPositive is a fatal state error.
	KindMassNonPositive ErrorKind = iota + 1
	// KindConfiguration is raised at setup, before any integration step.
	KindConfiguration
	// KindForceModel is raised from within a force model evaluation.
	KindForceModel
)

func (k ErrorKind) String() string {
	switch k {
	case KindMassNonPositive:
		return "mass"
	case KindConfiguration:
		return "configuration"
	case KindForceModel:
		return "force"
	default:
		return "unknown"
	}
}

// PropagationError carries the context of a failed propagation.
// Element is the offending index in the flat state, or -1 when not applicable.
type PropagationError struct {
	Kind    ErrorKind
	DT      time.Time
	Element int
	Err     error
}

func (e *PropagationError) Error() string {
	msg := fmt.Sprintf("%s error @ %s", e.Kind, e.DT.UTC().Format(time.RFC3339Nano))
	if e.Element >= 0 {
		msg += fmt.Sprintf(" (element %d)", e.Element)
	}
	return msg + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *PropagationError) Unwrap() error {
	return e.Err
}

func newPropagationError(kind ErrorKind, dt time.Time, element int, err error) *PropagationError {
	return &PropagationError{Kind: kind, DT: dt, Element: element, Err: err}
}

// errKind returns the kind of a propagation error, or zero if err is not one.
func errKind(err error) ErrorKind {
	var perr *PropagationError
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return 0
}
