package peers

import (
	"fmt"
	"testing"
)

func fakePeers(n int) []*Peer {
	peers := []*Peer{}
	for i := 0; i < n; i++ {
		peers = append(peers, NewPeer(fmt.Sprintf("Component%d", i), fmt.Sprintf("addr%d", i)))
	}
	return peers
}

func TestPeerSetMembership(t *testing.T) {
	peerSet := NewPeerSet(fakePeers(3))

	if peerSet.Len() != 3 {
		t.Fatalf("Len should be 3, not %d", peerSet.Len())
	}

	if !peerSet.Contains("Component1") {
		t.Fatalf("PeerSet should contain Component1")
	}

	if peerSet.Contains("Stranger") {
		t.Fatalf("PeerSet should not contain Stranger")
	}
}

func TestPeerSetImmutability(t *testing.T) {
	peerSet := NewPeerSet(fakePeers(2))

	bigger := peerSet.WithNewPeer(NewPeer("Component2", "addr2"))
	if peerSet.Len() != 2 {
		t.Fatalf("WithNewPeer should not mutate the receiver")
	}
	if bigger.Len() != 3 {
		t.Fatalf("bigger Len should be 3, not %d", bigger.Len())
	}

	smaller := peerSet.WithRemovedPeer(peerSet.Peers[0])
	if peerSet.Len() != 2 {
		t.Fatalf("WithRemovedPeer should not mutate the receiver")
	}
	if smaller.Len() != 1 {
		t.Fatalf("smaller Len should be 1, not %d", smaller.Len())
	}
}

func TestPeerSetHash(t *testing.T) {
	//hash is order-insensitive
	ps1 := NewPeerSet([]*Peer{NewPeer("A", "a"), NewPeer("B", "b")})
	ps2 := NewPeerSet([]*Peer{NewPeer("B", "b"), NewPeer("A", "a")})

	if ps1.Hex() != ps2.Hex() {
		t.Fatalf("hashes should be equal regardless of peer order")
	}

	ps3 := NewPeerSet([]*Peer{NewPeer("A", "a")})
	if ps1.Hex() == ps3.Hex() {
		t.Fatalf("hashes of different sets should differ")
	}
}
