// Package emitter defines the narrow contract through which a simnode
// publishes the result of a completed epoch, and implementations of it.
package emitter

// OutputEmitter serializes and transmits the result computed for an epoch.
// It is invoked exactly once per completed epoch, after the output value is
// computed and before the coordinator resets for the next epoch. An error is
// final for that epoch; the caller does not retry.
type OutputEmitter interface {
	Emit(epoch int, causalIDs []string, value float64) error
}
