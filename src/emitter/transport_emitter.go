package emitter

import (
	"fmt"

	"github.com/gridsim/simnode/src/message"
	"github.com/gridsim/simnode/src/net"
	"github.com/sirupsen/logrus"
)

// TransportEmitter publishes epoch results to a set of downstream components
// over a Transport. Every downstream address receives the same result; a
// single failed push fails the emission.
type TransportEmitter struct {
	source     string
	downstream []string
	trans      net.Transport
	logger     *logrus.Entry
}

// NewTransportEmitter ...
func NewTransportEmitter(source string, downstream []string, trans net.Transport, logger *logrus.Entry) *TransportEmitter {
	return &TransportEmitter{
		source:     source,
		downstream: downstream,
		trans:      trans,
		logger:     logger,
	}
}

// Emit implements the OutputEmitter interface
func (e *TransportEmitter) Emit(epoch int, causalIDs []string, value float64) error {
	result := message.ResultMessage{
		Epoch:         epoch,
		Source:        e.source,
		MessageID:     message.NewMessageID(e.source),
		TriggeringIDs: causalIDs,
		Value:         value,
	}

	// The canonical form must be computable before anything is sent;
	// serialization failure aborts the whole emission.
	if _, err := result.Marshal(); err != nil {
		return err
	}

	args := net.ResultRequest{
		FromID: e.source,
		Result: result,
	}

	for _, target := range e.downstream {
		var resp net.ResultResponse

		if err := e.trans.Result(target, &args, &resp); err != nil {
			e.logger.WithFields(logrus.Fields{
				"target": target,
				"error":  err,
			}).Error("Pushing result downstream")
			return err
		}

		if !resp.Success {
			return fmt.Errorf("result refused by %s", target)
		}

		e.logger.WithFields(logrus.Fields{
			"target": target,
			"epoch":  epoch,
		}).Debug("Result pushed")
	}

	return nil
}
