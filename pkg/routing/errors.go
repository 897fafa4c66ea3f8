package routing

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEdgesInArea means the bounding box around the snapped endpoints
	// contained no reaches. Terminal, never retried here.
	ErrNoEdgesInArea = errors.New("no river edges in the routing area")

	// ErrNoRouteFound means the network does not connect the two points in
	// either direction.
	ErrNoRouteFound = errors.New("no route found between the snapped points")

	// ErrUpstreamOnlySuggestSwap means no downstream route exists from
	// start to end, but one exists the other way around. Callers should
	// offer to swap put-in and take-out (or enable upstream travel).
	ErrUpstreamOnlySuggestSwap = errors.New("route exists only in the opposite direction, try swapping start and end")
)

// Endpoint names which end of the trip an error refers to.
type Endpoint string

const (
	EndpointStart Endpoint = "start"
	EndpointEnd   Endpoint = "end"
)

// InputError rejects a request before any graph work happens.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// SnapError reports which endpoint could not be fixed onto the network and
// why. Wraps river.ErrOutOfRange when the distance rule was violated.
type SnapError struct {
	Endpoint Endpoint
	Err      error
}

func (e *SnapError) Error() string {
	return fmt.Sprintf("cannot snap %s point to network: %v", e.Endpoint, e.Err)
}

func (e *SnapError) Unwrap() error { return e.Err }
