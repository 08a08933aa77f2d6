package service

import "fmt"

// ClassificationError marks a failed model call: endpoint unreachable, request
// rejected, non-2xx status, or missing credential. The orchestrator recovers
// from it via the heuristic extractor; it never reaches the route layer.
type ClassificationError struct {
	Err error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classification failed: %v", e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

func classificationErrorf(format string, args ...any) *ClassificationError {
	return &ClassificationError{Err: fmt.Errorf(format, args...)}
}
