// Package message defines the wire messages that a simnode produces for the
// rest of the simulation platform, together with their canonical serialized
// form.
package message

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
	"github.com/ugorji/go/codec"
)

// Status message states.
const (
	StatusReady = "Ready"
	StatusError = "Error"
)

// NewMessageID returns a fresh message identifier stamped with the name of
// the component that produced it. Message ids are carried end to end for
// causal traceability.
func NewMessageID(source string) string {
	return fmt.Sprintf("%s-%s", source, uuid.New().String())
}

// ResultMessage carries the value computed by a component for a completed
// epoch. TriggeringIDs lists the ids of the messages that contributed to the
// result, starting with the epoch signal itself.
type ResultMessage struct {
	Epoch         int
	Source        string
	MessageID     string
	TriggeringIDs []string
	Value         float64
}

// Marshal - canonical json encoding of ResultMessage
func (r *ResultMessage) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(r); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// Unmarshal ...
func (r *ResultMessage) Unmarshal(data []byte) error {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	return dec.Decode(r)
}

// StatusMessage reports a component's per-epoch state to the simulation
// supervisor. State is Ready after a successfully emitted epoch, or Error
// with a Reason when the epoch's result could not be produced.
type StatusMessage struct {
	Epoch     int
	Source    string
	MessageID string
	State     string
	Reason    string
}

// Marshal - canonical json encoding of StatusMessage
func (s *StatusMessage) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(s); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// Unmarshal ...
func (s *StatusMessage) Unmarshal(data []byte) error {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	return dec.Decode(s)
}
