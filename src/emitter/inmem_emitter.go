package emitter

import (
	"sync"

	"github.com/gridsim/simnode/src/message"
	"github.com/sirupsen/logrus"
)

// InmemEmitter implements the OutputEmitter interface natively. It records
// every emission in memory, which makes it suitable for tests and for
// standalone runs where nothing consumes the output.
type InmemEmitter struct {
	sync.Mutex
	source  string
	results []*message.ResultMessage
	logger  *logrus.Logger
}

// NewInmemEmitter instantiates an InmemEmitter. If no logger, a new one is
// created
func NewInmemEmitter(source string, logger *logrus.Logger) *InmemEmitter {
	if logger == nil {
		logger = logrus.New()
		logger.Level = logrus.DebugLevel
	}

	return &InmemEmitter{
		source: source,
		logger: logger,
	}
}

// Emit implements the OutputEmitter interface
func (e *InmemEmitter) Emit(epoch int, causalIDs []string, value float64) error {
	e.Lock()
	defer e.Unlock()

	res := &message.ResultMessage{
		Epoch:         epoch,
		Source:        e.source,
		MessageID:     message.NewMessageID(e.source),
		TriggeringIDs: causalIDs,
		Value:         value,
	}

	e.results = append(e.results, res)

	e.logger.WithFields(logrus.Fields{
		"epoch": epoch,
		"value": value,
		"ids":   causalIDs,
	}).Debug("InmemEmitter.Emit")

	return nil
}

// Results returns a copy of the recorded emissions.
func (e *InmemEmitter) Results() []*message.ResultMessage {
	e.Lock()
	defer e.Unlock()

	res := make([]*message.ResultMessage, len(e.results))
	copy(res, e.results)
	return res
}
