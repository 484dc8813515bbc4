package node

import (
	"fmt"

	"github.com/gridsim/simnode/src/config"
)

// FoldFunc is the binary operation that merges a new peer value into the
// epoch aggregate.
type FoldFunc func(acc, v float64) float64

// NewFold returns the FoldFunc corresponding to a configured operator name.
func NewFold(name string) (FoldFunc, error) {
	switch name {
	case config.FoldMultiply:
		return func(acc, v float64) float64 { return acc * v }, nil
	case config.FoldSum:
		return func(acc, v float64) float64 { return acc + v }, nil
	default:
		return nil, fmt.Errorf("unknown fold operator: %s", name)
	}
}
