package journey

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Step is one page within a journey path. StepID is the step's URL with
// transient query parameters removed and is what identifies the step.
type Step struct {
	StepID string `json:"stepId"`
	URL    string `json:"url"`
}

// StepFromURL creates a Step for u, deriving the StepID by removing the
// return URL and instance key query parameters.
func StepFromURL(u string) Step {
	return Step{
		StepID: StripQueryParameters(u, ReturnURLQueryParameterName, KeyRouteValueName),
		URL:    u,
	}
}

// URLFor returns the step's URL carrying id's instance key.
func (s Step) URLFor(id InstanceID) string {
	return id.EnsureURLHasKey(s.URL)
}

// PushStepOptions controls how steps adjacent to a pushed step are trimmed.
type PushStepOptions struct {
	// SetAsFirstStep removes every step before the pushed step.
	SetAsFirstStep bool
	// SetAsLastStep removes every step after the pushed step.
	SetAsLastStep bool
}

// Path is the ordered sequence of steps an instance may validly visit. A Path
// is never modified in place; PushStep returns a new Path.
type Path struct {
	steps []Step
}

// NewPath creates a Path holding a copy of steps.
func NewPath(steps ...Step) Path {
	return Path{steps: slices.Clone(steps)}
}

// Steps returns a copy of the path's steps.
func (p Path) Steps() []Step { return slices.Clone(p.steps) }

// Len returns the number of steps.
func (p Path) Len() int { return len(p.steps) }

// First returns the first step, or false when the path is empty.
func (p Path) First() (Step, bool) {
	if len(p.steps) == 0 {
		return Step{}, false
	}
	return p.steps[0], true
}

// Last returns the last step, or false when the path is empty.
func (p Path) Last() (Step, bool) {
	if len(p.steps) == 0 {
		return Step{}, false
	}
	return p.steps[len(p.steps)-1], true
}

// IndexOf returns the position of the step with stepID, or -1.
func (p Path) IndexOf(stepID string) int {
	return slices.IndexFunc(p.steps, func(s Step) bool { return s.StepID == stepID })
}

// ContainsStepID reports whether the path holds a step with stepID.
func (p Path) ContainsStepID(stepID string) bool { return p.IndexOf(stepID) != -1 }

// ContainsStep reports whether the path holds a step with the same id as step.
func (p Path) ContainsStep(step Step) bool { return p.ContainsStepID(step.StepID) }

// Equal reports whether both paths hold the same steps in order.
func (p Path) Equal(other Path) bool { return slices.Equal(p.steps, other.steps) }

// PushStep returns a new Path with step added relative to current.
//
// current must be in the path and step must not precede it. If step is
// already current or immediately after current the sequence is unchanged;
// otherwise everything after current is dropped and step is appended. The
// options are then applied around step's final position.
func (p Path) PushStep(step, current Step, opts PushStepOptions) (Path, error) {
	currentIndex := p.IndexOf(current.StepID)
	if currentIndex == -1 {
		return Path{}, fmt.Errorf("%w: %s", ErrCurrentStepNotInPath, current.StepID)
	}

	stepIndex := p.IndexOf(step.StepID)
	if stepIndex != -1 && stepIndex < currentIndex {
		return Path{}, fmt.Errorf("%w: %s", ErrStepBeforeCurrent, step.StepID)
	}

	steps := slices.Clone(p.steps)
	if stepIndex != currentIndex && stepIndex != currentIndex+1 {
		steps = append(steps[:currentIndex+1], step)
		stepIndex = len(steps) - 1
	}

	if opts.SetAsFirstStep {
		steps = steps[stepIndex:]
		stepIndex = 0
	}
	if opts.SetAsLastStep {
		steps = steps[:stepIndex+1]
	}

	return Path{steps: steps}, nil
}

// MarshalJSON encodes the path as an array of steps.
func (p Path) MarshalJSON() ([]byte, error) {
	if p.steps == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p.steps)
}

// UnmarshalJSON decodes an array of steps.
func (p *Path) UnmarshalJSON(data []byte) error {
	var steps []Step
	if err := json.Unmarshal(data, &steps); err != nil {
		return err
	}
	p.steps = steps
	return nil
}
