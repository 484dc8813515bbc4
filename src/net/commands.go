package net

import (
	"github.com/gridsim/simnode/src/message"
)

// EpochRequest is the signal that opens a new synchronization round. It is
// sent by the simulation supervisor, once per epoch, with a strictly
// increasing epoch number.
type EpochRequest struct {
	FromID    string
	Epoch     int
	MessageID string
}

// EpochResponse acknowledges an EpochRequest.
type EpochResponse struct {
	FromID   string
	Accepted bool
}

// InputRequest carries one peer's contribution to the epoch it claims to
// belong to. The transport gives no ordering or uniqueness guarantees; the
// receiving node deduplicates and drops out-of-window requests.
type InputRequest struct {
	FromID    string
	Epoch     int
	Value     float64
	MessageID string
}

// InputResponse indicates whether the input was folded into the receiver's
// epoch aggregate. Accepted=false is not an error; duplicates and stale
// inputs are dropped silently.
type InputResponse struct {
	FromID   string
	Accepted bool
}

// ResultRequest pushes a completed epoch's result to a downstream component.
type ResultRequest struct {
	FromID string
	Result message.ResultMessage
}

// ResultResponse acknowledges a ResultRequest.
type ResultResponse struct {
	FromID  string
	Success bool
}

// StatusRequest reports a component's per-epoch status to the simulation
// supervisor.
type StatusRequest struct {
	FromID string
	Status message.StatusMessage
}

// StatusResponse acknowledges a StatusRequest.
type StatusResponse struct {
	FromID string
}
