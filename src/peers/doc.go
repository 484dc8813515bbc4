// Package peers defines the concept of a simulation peer and implements
// functions to manage collections of peers.
//
// A peer is another component of the same epoch-synchronized simulation whose
// output this node consumes. The peer-set configured at startup defines the
// universe of components the node must hear from before it can close an
// epoch; it never changes while the node is running.
//
// Peers are identified by their unique component name. A peer may also
// specify an IP address and port where its transport can be reached, which
// the node uses when it needs to push results downstream.
//
// Upon starting up, simnode expects to find a peers.json file in its data
// directory, unless a peer-set is handed to it directly. An empty peers.json
// is valid: it puts the node in standalone mode, producing a value every
// epoch without waiting for any input.
package peers
