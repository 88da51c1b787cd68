package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrRunNotFound is returned by run stores for unknown run identifiers.
var ErrRunNotFound = errors.New("processing run not found")

// FormatError means a file failed structural validation (wrong column count,
// size out of bounds, extension/content mismatch). The file is rejected
// before any processing begins and no run is created.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid file format: %s", e.Reason)
}

// ParseError means a file passed format detection but could not be parsed,
// or no rows survived the cleaning pipeline. The run transitions to Failed.
type ParseError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %s", e.Path, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// VariantProcessingError wraps a single variant's classification failure.
// It is recovered locally by the orchestrator: logged, recorded on the run,
// and processing continues with the next variant.
type VariantProcessingError struct {
	RSID string
	Err  error
}

func (e *VariantProcessingError) Error() string {
	return fmt.Sprintf("variant %s: %v", e.RSID, e.Err)
}

func (e *VariantProcessingError) Unwrap() error { return e.Err }

// AnnotationLookupError wraps a failed batch lookup against the annotation
// store. A failed lookup is distinct from "no annotation found": it surfaces
// as a run-level warning rather than silently pretending no evidence exists.
type AnnotationLookupError struct {
	Source string
	Err    error
}

func (e *AnnotationLookupError) Error() string {
	return fmt.Sprintf("%s lookup failed: %v", e.Source, e.Err)
}

func (e *AnnotationLookupError) Unwrap() error { return e.Err }
