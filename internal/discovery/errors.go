// Package discovery implements the channel discovery pipeline: keyword
// search sessions, the qualification filter chain, activity scoring, and
// the orchestrator that fans keywords out to concurrent workers.
package discovery

import (
	"errors"
	"fmt"
)

// ConfigError reports a missing or invalid startup requirement. It is
// fatal: the process should refuse to run rather than limp along.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}

// TransientFetchError wraps an external call that still failed after
// client-side retries. The affected batch is dropped and the run keeps
// going.
type TransientFetchError struct {
	Op  string
	Err error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("%s fetch failed: %v", e.Op, e.Err)
}

func (e *TransientFetchError) Unwrap() error { return e.Err }

// DataIncompleteError marks a single response item that is missing or
// corrupting a required field. Only that item is skipped.
type DataIncompleteError struct {
	Kind  string
	ID    string
	Field string
}

func (e *DataIncompleteError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s item missing %s", e.Kind, e.Field)
	}
	return fmt.Sprintf("%s %s: bad %s", e.Kind, e.ID, e.Field)
}

// WorkerFailure records one keyword session's terminal error. It never
// propagates past the orchestrator's result aggregation.
type WorkerFailure struct {
	Keyword string
	Err     error
}

func (e *WorkerFailure) Error() string {
	return fmt.Sprintf("keyword %q: %v", e.Keyword, e.Err)
}

func (e *WorkerFailure) Unwrap() error { return e.Err }

// IsTransient reports whether err has a TransientFetchError in its chain.
func IsTransient(err error) bool {
	var t *TransientFetchError
	return errors.As(err, &t)
}

// IsDataIncomplete reports whether err has a DataIncompleteError in its
// chain.
func IsDataIncomplete(err error) bool {
	var d *DataIncompleteError
	return errors.As(err, &d)
}
