package coordinator

import "github.com/x-govuk/questions/observability"

const (
	EventInstanceStart  observability.EventType = "journey.instance.start"
	EventInstanceDelete observability.EventType = "journey.instance.delete"
	EventAdvance        observability.EventType = "journey.advance"
	EventStateUpdate    observability.EventType = "journey.state.update"
	EventPathSet        observability.EventType = "journey.path.set"
	EventInvalidStep    observability.EventType = "journey.step.invalid"
)
