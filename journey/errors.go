package journey

import (
	"errors"
	"fmt"
)

// Sentinel errors for journey identity and path operations.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrFormat           = errors.New("invalid journey instance id format")

	ErrCurrentStepNotInPath = fmt.Errorf("%w: current step does not exist in the journey path", ErrInvalidOperation)
	ErrStepBeforeCurrent    = fmt.Errorf("%w: cannot push a step that exists before the current step", ErrInvalidOperation)
	ErrInvalidStateType     = fmt.Errorf("%w: state type is not valid", ErrInvalidOperation)
	ErrNilState             = fmt.Errorf("%w: state is nil", ErrInvalidOperation)
)
