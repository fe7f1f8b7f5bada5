package coordinator

import (
	"errors"
	"fmt"

	"github.com/x-govuk/questions/journey"
)

// Sentinel errors for journey coordination.
var (
	ErrInstanceDeleted     = fmt.Errorf("%w: journey instance has been deleted", journey.ErrInvalidOperation)
	ErrCurrentStepNotFound = fmt.Errorf("%w: current step not found in journey path", journey.ErrInvalidOperation)
	ErrNoStartingState     = fmt.Errorf("%w: cannot create a starting state", journey.ErrInvalidOperation)

	ErrNoValidStep     = errors.New("journey path has no steps")
	ErrJourneyExists   = errors.New("journey already registered")
	ErrJourneyNotFound = errors.New("journey not registered")
	ErrNoInstance      = errors.New("journey instance not found")
)
