package peers

// Peer identifies another simulation component whose input this node waits
// for each epoch. Peers are identified by their unique component name. The
// network address is where the peer's transport can be reached; it may be
// empty for peers that only ever push to us.
type Peer struct {
	Name    string `json:"name"`
	NetAddr string `json:"net_addr"`
}

// NewPeer ...
func NewPeer(name, netAddr string) *Peer {
	return &Peer{
		Name:    name,
		NetAddr: netAddr,
	}
}

// ExcludePeer is used to exclude a single peer from a list of peers.
func ExcludePeer(peers []*Peer, name string) (int, []*Peer) {
	index := -1
	otherPeers := make([]*Peer, 0, len(peers))
	for i, p := range peers {
		if p.Name != name {
			otherPeers = append(otherPeers, p)
		} else {
			index = i
		}
	}
	return index, otherPeers
}
