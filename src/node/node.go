package node

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gridsim/simnode/src/config"
	"github.com/gridsim/simnode/src/emitter"
	"github.com/gridsim/simnode/src/message"
	"github.com/gridsim/simnode/src/net"
	"github.com/gridsim/simnode/src/peers"
	"github.com/gridsim/simnode/src/store"
	"github.com/sirupsen/logrus"
)

// Node is the top-level component which wraps a Coordinator and maintains it
// in sync with the rest of the simulation. It processes incoming RPCs from
// the transport one at a time, drives the coordinator through the epoch
// cycle, and emits the result of every completed epoch.
type Node struct {
	// The node is implemented as a state machine. The embedded state object
	// provides the utilities to manipulate the state atomically.
	state

	conf   *config.Config
	logger *logrus.Entry

	// The moniker is this component's name within the simulation, and the
	// Source stamped on everything it sends.
	moniker string

	coordinator *Coordinator

	// coreLock guards the coordinator. RPC processing is serial, but the
	// epoch-finishing goroutine touches the coordinator too.
	coreLock sync.Mutex

	trans net.Transport
	netCh <-chan net.RPC

	emitter emitter.OutputEmitter

	store store.Store

	sigintCh   chan os.Signal
	shutdownCh chan struct{}

	start           time.Time
	epochsCompleted int
	inputsAccepted  int
	inputsDropped   int
	emitErrors      int
	lastValue       float64
}

// NewNode instantiates a new Node and initializes all its components.
func NewNode(conf *config.Config,
	peerSet *peers.PeerSet,
	trans net.Transport,
	emit emitter.OutputEmitter,
	st store.Store,
) (*Node, error) {

	logger := conf.Logger().WithField("this_id", conf.Moniker)

	fold, err := NewFold(conf.Fold)
	if err != nil {
		return nil, err
	}

	coordinator := NewCoordinator(conf.Moniker, peerSet, conf, fold, logger)

	node := &Node{
		conf:        conf,
		logger:      logger,
		moniker:     conf.Moniker,
		coordinator: coordinator,
		trans:       trans,
		netCh:       trans.Consumer(),
		emitter:     emit,
		store:       st,
		sigintCh:    make(chan os.Signal),
		shutdownCh:  make(chan struct{}),
	}

	signal.Notify(node.sigintCh, os.Interrupt, syscall.SIGINT)

	return node, nil
}

// Init controls the bootstrap process and sets the node's initial state. The
// node always starts between epochs; there is no state to recover.
func (n *Node) Init() error {
	n.logger.WithFields(logrus.Fields{
		"peers": n.coordinator.Peers().Len(),
		"addr":  n.trans.AdvertiseAddr(),
	}).Debug("Init")

	n.setState(AwaitingStart)

	return nil
}

// Run invokes the main loop of the node. The node is purely reactive; it
// only ever responds to what comes over the transport.
func (n *Node) Run() {
	n.start = time.Now()

	//Accept incoming connections in the background
	go n.trans.Listen()

	for {
		state := n.getState()

		if state == Shutdown {
			return
		}

		select {
		case rpc := <-n.netCh:
			n.logger.WithField("state", state.String()).Debug("Processing RPC")
			n.processRPC(rpc)
		case <-n.sigintCh:
			n.logger.Debug("Reacting to SIGINT")
			n.Shutdown()
		case <-n.shutdownCh:
			return
		}
	}
}

// processRPC dispatches one RPC to the appropriate handler. RPCs are
// processed strictly one at a time; the completion predicate is evaluated
// after every input and never races with another input.
func (n *Node) processRPC(rpc net.RPC) {
	switch cmd := rpc.Command.(type) {
	case *net.EpochRequest:
		n.processEpochRequest(rpc, cmd)
	case *net.InputRequest:
		n.processInputRequest(rpc, cmd)
	case *net.ResultRequest:
		n.processResultRequest(rpc, cmd)
	case *net.StatusRequest:
		n.processStatusRequest(rpc, cmd)
	default:
		n.logger.WithField("cmd", rpc.Command).Error("Unexpected RPC command")
		rpc.Respond(nil, fmt.Errorf("unexpected command"))
	}
}

func (n *Node) processEpochRequest(rpc net.RPC, cmd *net.EpochRequest) {
	n.logger.WithFields(logrus.Fields{
		"from":  cmd.FromID,
		"epoch": cmd.Epoch,
	}).Debug("process EpochRequest")

	n.coreLock.Lock()
	defer n.coreLock.Unlock()

	resp := &net.EpochResponse{
		FromID: n.moniker,
	}

	// An epoch signal repeating the current or an older number is not a
	// contract violation by the wire peer; it is dropped like any other
	// stale message.
	if n.getState() != AwaitingStart || cmd.Epoch <= n.coordinator.LastCompleted() {
		n.logger.WithFields(logrus.Fields{
			"epoch": cmd.Epoch,
			"state": n.getState().String(),
		}).Debug("Ignoring epoch signal")
		rpc.Respond(resp, nil)
		return
	}

	n.coordinator.StartEpoch(cmd.Epoch, cmd.MessageID)
	n.setState(Collecting)
	resp.Accepted = true

	rpc.Respond(resp, nil)

	// With no expected peers the epoch is complete as soon as it opens.
	n.maybeFinishEpoch()
}

func (n *Node) processInputRequest(rpc net.RPC, cmd *net.InputRequest) {
	n.coreLock.Lock()
	defer n.coreLock.Unlock()

	accepted := n.coordinator.HandleInput(cmd.FromID, cmd.Epoch, cmd.Value, cmd.MessageID)
	if accepted {
		n.inputsAccepted++
	} else {
		n.inputsDropped++
	}

	resp := &net.InputResponse{
		FromID:   n.moniker,
		Accepted: accepted,
	}

	rpc.Respond(resp, nil)

	n.maybeFinishEpoch()
}

// processResultRequest treats an upstream component's result as this node's
// input for the epoch it carries. Within the platform, one component's
// result is the next component's input.
func (n *Node) processResultRequest(rpc net.RPC, cmd *net.ResultRequest) {
	n.coreLock.Lock()
	defer n.coreLock.Unlock()

	res := cmd.Result

	accepted := n.coordinator.HandleInput(res.Source, res.Epoch, res.Value, res.MessageID)
	if accepted {
		n.inputsAccepted++
	} else {
		n.inputsDropped++
	}

	resp := &net.ResultResponse{
		FromID:  n.moniker,
		Success: true,
	}

	rpc.Respond(resp, nil)

	n.maybeFinishEpoch()
}

func (n *Node) processStatusRequest(rpc net.RPC, cmd *net.StatusRequest) {
	n.logger.WithFields(logrus.Fields{
		"from":  cmd.FromID,
		"state": cmd.Status.State,
		"epoch": cmd.Status.Epoch,
	}).Debug("process StatusRequest")

	rpc.Respond(&net.StatusResponse{FromID: n.moniker}, nil)
}

// maybeFinishEpoch checks the completion predicate and, when it holds, moves
// the node to the Complete state and hands the epoch over to finishEpoch.
// The caller must hold coreLock.
func (n *Node) maybeFinishEpoch() {
	if n.getState() != Collecting || !n.coordinator.Complete() {
		return
	}

	n.setState(Complete)

	epoch := n.coordinator.CurrentEpoch()

	n.logger.WithFields(logrus.Fields{
		"epoch":     epoch,
		"aggregate": n.coordinator.Aggregate(),
	}).Debug("Epoch complete")

	n.goFunc(func() { n.finishEpoch(epoch) })
}

// finishEpoch waits out the configured output delay, then computes, emits
// and records the epoch's result, reports the outcome to the supervisor, and
// resets the coordinator for the next epoch.
func (n *Node) finishEpoch(epoch int) {
	if n.conf.OutputDelay > 0 {
		select {
		case <-time.After(n.conf.OutputDelay):
		case <-n.shutdownCh:
			return
		}
	}

	n.coreLock.Lock()
	defer n.coreLock.Unlock()

	if n.getState() != Complete || n.coordinator.CurrentEpoch() != epoch {
		return
	}

	value := n.coordinator.ComputeOutput()
	causalIDs := n.coordinator.CausalIDs()

	if err := n.emitter.Emit(epoch, causalIDs, value); err != nil {
		n.logger.WithFields(logrus.Fields{
			"epoch": epoch,
			"error": err,
		}).Error("Emitting epoch result")

		n.emitErrors++
		n.reportStatus(epoch, message.StatusError, err.Error())
	} else {
		n.lastValue = value
		n.epochsCompleted++

		result := &message.ResultMessage{
			Epoch:         epoch,
			Source:        n.moniker,
			MessageID:     message.NewMessageID(n.moniker),
			TriggeringIDs: causalIDs,
			Value:         value,
		}

		if err := n.store.SetResult(result); err != nil {
			n.logger.WithField("error", err).Error("Recording epoch result")
		}

		n.logger.WithFields(logrus.Fields{
			"epoch": epoch,
			"value": value,
		}).Debug("Epoch result emitted")

		n.reportStatus(epoch, message.StatusReady, "")
	}

	n.coordinator.Reset()
	n.setState(AwaitingStart)
}

// reportStatus sends a Ready or Error status message to the supervisor, if
// one is configured. It fires in the background; a lost status message does
// not hold up the epoch cycle.
func (n *Node) reportStatus(epoch int, state string, reason string) {
	if n.conf.SupervisorAddr == "" {
		return
	}

	status := message.StatusMessage{
		Epoch:     epoch,
		Source:    n.moniker,
		MessageID: message.NewMessageID(n.moniker),
		State:     state,
		Reason:    reason,
	}

	n.goFunc(func() {
		args := net.StatusRequest{
			FromID: n.moniker,
			Status: status,
		}

		var resp net.StatusResponse
		if err := n.trans.Status(n.conf.SupervisorAddr, &args, &resp); err != nil {
			n.logger.WithFields(logrus.Fields{
				"supervisor": n.conf.SupervisorAddr,
				"error":      err,
			}).Error("Reporting status")
		}
	})
}

// Shutdown attempts to cleanly shutdown the node. It stops the main loop,
// waits for background routines, and closes the transport and the store.
func (n *Node) Shutdown() {
	if n.getState() == Shutdown {
		return
	}

	n.logger.Debug("Shutdown")

	// Exit any non-shutdown state immediately
	n.setState(Shutdown)

	close(n.shutdownCh)

	// wait for goroutines
	n.waitRoutines()

	// shutdown transport and store
	n.trans.Close()
	n.store.Close()
}

// GetStats returns operational statistics.
func (n *Node) GetStats() map[string]string {
	n.coreLock.Lock()
	defer n.coreLock.Unlock()

	s := map[string]string{
		"moniker":          n.moniker,
		"state":            n.getState().String(),
		"current_epoch":    fmt.Sprint(n.coordinator.CurrentEpoch()),
		"last_completed":   fmt.Sprint(n.coordinator.LastCompleted()),
		"epochs_completed": fmt.Sprint(n.epochsCompleted),
		"inputs_accepted":  fmt.Sprint(n.inputsAccepted),
		"inputs_dropped":   fmt.Sprint(n.inputsDropped),
		"emit_errors":      fmt.Sprint(n.emitErrors),
		"last_value":       fmt.Sprint(n.lastValue),
		"reported":         fmt.Sprint(n.coordinator.ReportedCount()),
		"num_peers":        fmt.Sprint(n.coordinator.Peers().Len()),
	}

	if !n.start.IsZero() {
		s["uptime"] = time.Since(n.start).String()
	}

	return s
}

// GetResult retrieves the result recorded for an epoch from the store.
func (n *Node) GetResult(epoch int) (*message.ResultMessage, error) {
	return n.store.GetResult(epoch)
}

// GetLastEpoch returns the highest epoch with a recorded result, or -1.
func (n *Node) GetLastEpoch() int {
	return n.store.LastEpoch()
}

// GetPeers returns the node's peers.
func (n *Node) GetPeers() []*peers.Peer {
	return n.coordinator.Peers().Peers
}
