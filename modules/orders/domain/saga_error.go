package domain

import "fmt"

// SagaError is a hard failure: the run stopped at Stage without reaching a deal
// (or, for enrichment, before any remote write).
type SagaError struct {
	Stage Stage
	Err   error
}

func (e *SagaError) Error() string {
	return fmt.Sprintf("order saga failed at %s: %v", e.Stage, e.Err)
}

func (e *SagaError) Unwrap() error { return e.Err }
