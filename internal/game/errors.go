package game

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is matched by every *TransitionError.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrUnknownNode indicates an operation named a node the model does not have.
var ErrUnknownNode = errors.New("unknown node")

// ErrNodeLocked indicates an operation targeted a locked node.
var ErrNodeLocked = errors.New("node is locked")

// TransitionError reports an operation attempted in the wrong phase. The
// session is left unchanged.
type TransitionError struct {
	Op    string
	Phase Phase
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s not allowed in phase %s", e.Op, e.Phase)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
