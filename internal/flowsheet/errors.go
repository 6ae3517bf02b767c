// Package flowsheet implements the plant graph: unit operations as
// nodes, streams as edges, sensors as read-only measurement hooks, and
// the step cycle that advances every unit in a declared evaluation
// order. Connection legality is enforced at wiring time; a flowsheet
// that assembled without error has a structurally sound graph.
package flowsheet

import (
	"errors"
	"fmt"
)

// ErrNotImplemented marks unit-operation variants whose physical
// behavior is not yet written. Constructing one fails immediately
// rather than failing mid-run inside a step.
var ErrNotImplemented = errors.New("unit operation behavior not implemented")

// ConnectionError reports illegal graph wiring: a self-connection, a
// boundary-node violation, or an endpoint that does not exist.
type ConnectionError struct {
	Stream string
	Unit   string
	Reason string
}

func (e *ConnectionError) Error() string {
	if e.Unit == "" {
		return fmt.Sprintf("stream %q: %s", e.Stream, e.Reason)
	}
	return fmt.Sprintf("stream %q at unit %q: %s", e.Stream, e.Unit, e.Reason)
}

// OrderError reports an evaluation order that is not an exact
// permutation of the registered unit ids.
type OrderError struct {
	ID     string
	Reason string
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("evaluation order: %s: %q", e.Reason, e.ID)
}
