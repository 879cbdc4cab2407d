package pipeline

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by MetadataStore.Lookup and BlobStore.Fetch when
// the requested record or object does not exist. The orchestrator treats it
// as a skippable-item condition, never as a run failure.
var ErrNotFound = errors.New("not found")

// Step names the external call a fault came from.
type Step string

const (
	StepLookup Step = "lookup"
	StepFetch  Step = "fetch"
	StepEmbed  Step = "embed"
	StepUpsert Step = "upsert"
	StepUpdate Step = "update"
)

// StepError tags an infrastructure fault with the step that produced it.
// Every fatal fault surfaced by a run is wrapped in one of these, so the
// ingress adapters and logs always know the failure category.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func stepErr(step Step, err error) error {
	return &StepError{Step: step, Err: err}
}
