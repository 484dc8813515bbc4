package node

import (
	"fmt"
	"math"

	"github.com/gridsim/simnode/src/config"
	"github.com/gridsim/simnode/src/peers"
	"github.com/sirupsen/logrus"
)

// Coordinator is the epoch synchronization and input-aggregation state
// machine. It owns the identity of the current epoch, tracks which of the
// configured peers have reported, folds accepted inputs into the running
// aggregate, and decides when the epoch is complete.
//
// The Coordinator is not safe for concurrent use; the Node serializes all
// calls behind its coreLock.
type Coordinator struct {
	moniker string
	peers   *peers.PeerSet

	baseValue float64
	mode      string
	fold      FoldFunc
	seed      float64

	currentEpoch  int
	lastCompleted int
	started       bool
	reported      map[string]bool
	aggregate     float64
	causalIDs     []string

	logger *logrus.Entry
}

// NewCoordinator is a factory method that returns a Coordinator. The fold
// operator and its seed come from the configuration; the seed is the neutral
// value the aggregate is reset to at the start of every epoch.
func NewCoordinator(moniker string,
	peerSet *peers.PeerSet,
	conf *config.Config,
	fold FoldFunc,
	logger *logrus.Entry,
) *Coordinator {

	return &Coordinator{
		moniker:   moniker,
		peers:     peerSet,
		baseValue: conf.BaseValue,
		mode:      conf.Mode,
		fold:      fold,
		seed:      conf.FoldSeed,
		reported:  make(map[string]bool),
		aggregate: conf.FoldSeed,
		causalIDs: []string{},
		logger:    logger,
	}
}

// StartEpoch opens a new synchronization round. The epoch number must be
// strictly greater than the last completed epoch, and the previous round
// must have been reset. Both conditions are driver-contract invariants, so a
// violation panics rather than returning an error.
func (c *Coordinator) StartEpoch(epoch int, messageID string) {
	if c.started {
		panic(fmt.Sprintf("StartEpoch(%d) while epoch %d is still open", epoch, c.currentEpoch))
	}
	if epoch <= c.lastCompleted {
		panic(fmt.Sprintf("StartEpoch(%d) is not greater than last completed epoch %d", epoch, c.lastCompleted))
	}

	c.currentEpoch = epoch
	c.started = true
	c.reported = make(map[string]bool)
	c.aggregate = c.seed
	c.causalIDs = []string{}

	if messageID != "" {
		c.causalIDs = append(c.causalIDs, messageID)
	}

	c.logger.WithField("epoch", epoch).Debug("StartEpoch")
}

// HandleInput folds one peer contribution into the current epoch. It reports
// whether the input was accepted. Inputs tagged with another epoch, coming
// from a component outside the peer-set, or duplicating an already-reported
// peer are dropped without touching any state; dropping is observable in the
// logs only, never an error.
func (c *Coordinator) HandleInput(from string, epoch int, value float64, messageID string) bool {
	if !c.started || epoch != c.currentEpoch {
		c.logger.WithFields(logrus.Fields{
			"from":          from,
			"epoch":         epoch,
			"current_epoch": c.currentEpoch,
		}).Debug("Ignoring input for another epoch")
		return false
	}

	if !c.peers.Contains(from) {
		c.logger.WithField("from", from).Debug("Ignoring input from unregistered component")
		return false
	}

	if c.reported[from] {
		c.logger.WithFields(logrus.Fields{
			"from":  from,
			"epoch": epoch,
		}).Info("Ignoring duplicate input")
		return false
	}

	c.reported[from] = true
	c.aggregate = round3(c.fold(c.aggregate, value))
	c.causalIDs = append(c.causalIDs, messageID)

	c.logger.WithFields(logrus.Fields{
		"from":      from,
		"epoch":     epoch,
		"value":     value,
		"aggregate": c.aggregate,
		"reported":  len(c.reported),
		"expected":  c.peers.Len(),
	}).Debug("Input accepted")

	return true
}

// Complete indicates whether every expected peer has reported for the
// current epoch. With an empty peer-set, an open epoch is complete
// immediately.
func (c *Coordinator) Complete() bool {
	return c.started && len(c.reported) == c.peers.Len()
}

// ComputeOutput derives the epoch's output value from the current state. In
// aggregator mode (non-empty peer-set) the output is the aggregate, rescaled
// by the base value and rounded to 3 decimals only when the mode flag is
// "Correct". In standalone mode (empty peer-set) the output is the
// deterministic fallback base*epoch/1000, rounded to 3 decimals.
func (c *Coordinator) ComputeOutput() float64 {
	if c.peers.Len() > 0 {
		if c.mode == config.ModeCorrect {
			return round3(c.aggregate * c.baseValue)
		}
		return c.aggregate
	}

	return round3(c.baseValue * float64(c.currentEpoch) / 1000)
}

// Reset clears all epoch-scoped state, leaving the peer-set and
// configuration untouched. It is idempotent. When the epoch being reset had
// reached completion, it is recorded as the last completed epoch, so a
// second StartEpoch with the same number fails fast.
func (c *Coordinator) Reset() {
	if c.started && c.Complete() {
		c.lastCompleted = c.currentEpoch
	}

	c.started = false
	c.reported = make(map[string]bool)
	c.aggregate = c.seed
	c.causalIDs = []string{}
}

// CurrentEpoch returns the active epoch number, or the last one when no
// epoch is open.
func (c *Coordinator) CurrentEpoch() int {
	return c.currentEpoch
}

// LastCompleted returns the number of the last epoch that reached
// completion.
func (c *Coordinator) LastCompleted() int {
	return c.lastCompleted
}

// Started indicates whether an epoch is currently open.
func (c *Coordinator) Started() bool {
	return c.started
}

// Aggregate returns the running aggregate of the current epoch.
func (c *Coordinator) Aggregate() float64 {
	return c.aggregate
}

// ReportedCount returns the number of peers that have reported for the
// current epoch.
func (c *Coordinator) ReportedCount() int {
	return len(c.reported)
}

// CausalIDs returns a copy of the ids of the messages that triggered this
// epoch's processing, in arrival order.
func (c *Coordinator) CausalIDs() []string {
	ids := make([]string, len(c.causalIDs))
	copy(ids, c.causalIDs)
	return ids
}

// Peers returns the configured peer-set.
func (c *Coordinator) Peers() *peers.PeerSet {
	return c.peers
}

// round3 rounds to 3 decimal places, the platform-wide precision for
// simulation values.
func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
