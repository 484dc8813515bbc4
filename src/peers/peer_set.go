package peers

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// PeerSet is the set of components this node expects exactly one input from
// in every epoch. It is built once at startup and never mutated; the With*
// methods return new sets.
type PeerSet struct {
	Peers  []*Peer          `json:"peers"`
	ByName map[string]*Peer `json:"-"`

	//cached values
	hash []byte
	hex  string
}

/* Constructors */

// NewPeerSet creates a new PeerSet from a list of Peers
func NewPeerSet(peers []*Peer) *PeerSet {
	peerSet := &PeerSet{
		ByName: make(map[string]*Peer),
	}

	for _, peer := range peers {
		peerSet.ByName[peer.Name] = peer
	}

	peerSet.Peers = peers

	return peerSet
}

// NewPeerSetFromPeerSliceBytes creates a new PeerSet from a peer slice in
// JSON format
func NewPeerSetFromPeerSliceBytes(peerSliceBytes []byte) (*PeerSet, error) {
	peers := []*Peer{}

	b := bytes.NewBuffer(peerSliceBytes)
	dec := json.NewDecoder(b)

	err := dec.Decode(&peers)
	if err != nil {
		return nil, err
	}

	return NewPeerSet(peers), nil
}

// WithNewPeer returns a new PeerSet with a list of peers including the new
// one.
func (peerSet *PeerSet) WithNewPeer(peer *Peer) *PeerSet {
	peers := peerSet.Peers

	//don't add it if it already exists
	if _, ok := peerSet.ByName[peer.Name]; !ok {
		peers = append(peers, peer)
	}

	return NewPeerSet(peers)
}

// WithRemovedPeer returns a new PeerSet with a list of peers excluding the
// provided one
func (peerSet *PeerSet) WithRemovedPeer(peer *Peer) *PeerSet {
	peers := []*Peer{}
	for _, p := range peerSet.Peers {
		if p.Name != peer.Name {
			peers = append(peers, p)
		}
	}
	return NewPeerSet(peers)
}

/* Utilities */

// Contains indicates whether a component name belongs to the PeerSet.
func (peerSet *PeerSet) Contains(name string) bool {
	_, ok := peerSet.ByName[name]
	return ok
}

// Names returns the PeerSet's slice of component names
func (peerSet *PeerSet) Names() []string {
	res := []string{}

	for _, peer := range peerSet.Peers {
		res = append(res, peer.Name)
	}

	return res
}

// Len returns the number of Peers in the PeerSet
func (peerSet *PeerSet) Len() int {
	return len(peerSet.ByName)
}

// Hash uniquely identifies a PeerSet. It is computed by hashing (SHA256) the
// sorted component names together.
func (peerSet *PeerSet) Hash() []byte {
	if len(peerSet.hash) == 0 {
		names := peerSet.Names()
		sort.Strings(names)

		h := sha256.New()
		for _, n := range names {
			h.Write([]byte(n))
			h.Write([]byte{0})
		}
		peerSet.hash = h.Sum(nil)
	}
	return peerSet.hash
}

// Hex is the hexadecimal representation of Hash
func (peerSet *PeerSet) Hex() string {
	if len(peerSet.hex) == 0 {
		peerSet.hex = hex.EncodeToString(peerSet.Hash())
	}
	return peerSet.hex
}

// Marshal marshals the peerset
func (peerSet *PeerSet) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(peerSet.Peers); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
