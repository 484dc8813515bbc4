// Package store records the results a simnode has emitted, for observation
// through the HTTP service. The coordinator never reads its own state back
// from a store; a restarted node always begins with a fresh epoch.
package store

import "github.com/gridsim/simnode/src/message"

// Store is the interface for recording and retrieving emitted epoch results.
type Store interface {
	CacheSize() int

	// SetResult records the result emitted for an epoch.
	SetResult(result *message.ResultMessage) error

	// GetResult retrieves the result emitted for an epoch. It returns a
	// common.StoreErr with code KeyNotFound or TooLate when the epoch is not
	// available.
	GetResult(epoch int) (*message.ResultMessage, error)

	// LastEpoch returns the highest epoch with a recorded result, or -1.
	LastEpoch() int

	Close() error
}
