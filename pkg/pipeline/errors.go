package pipeline

import (
	"errors"
	"fmt"
)

// Error kinds. Stage failures wrap one of these so callers can decide how to
// report them with errors.Is.
//
// Problems that have a safe default are not errors: a law without a citation
// gets an empty key, an unresolved author is dropped from cpfs and a key
// cited by several laws is reported as a linker.Ambiguity.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrIngest        = errors.New("ingest error")
	ErrLookup        = errors.New("lookup error")
	ErrPersistence   = errors.New("persistence error")
)

// Stage names used in errors, logs and metrics.
const (
	StageConfigure = "configure"
	StageLoad      = "load"
	StagePrepare   = "prepare"
	StageExtract   = "extract"
	StageLink      = "link"
	StageEnrich    = "enrich"
	StagePersist   = "persist"
)

// StageError reports the stage that aborted a run.
type StageError struct {
	Stage string
	Kind  error
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *StageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func stageError(stage string, kind, err error) error {
	return &StageError{Stage: stage, Kind: kind, Err: err}
}
