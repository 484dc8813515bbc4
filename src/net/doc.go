// Package net implements different transports to exchange simulation
// messages between components.
//
// This package contains two implementations of the Transport interface,
// which is used by simnodes to send and receive RPC requests (EpochRequest,
// InputRequest, ResultRequest, StatusRequest):
//
// - Inmem: in-memory transport used only for testing
//
// - TCP: communicating over plain TCP
//
// The TCP transport is suitable when components are in the same local
// network, or when users are able to configure their connections
// appropriately to avoid NAT issues.
//
// To use a TCP transport, set the following configuration options in the
// simnode Config object (cf config package):
//
// - BindAddr: the IP:PORT of the TCP socket that simnode binds to.
//
// - AdvertiseAddr: (optional) The address that is advertised to other
// components. If BindAddr is a local address not reachable by other peers, it
// is useful to set AdvertiseAddr to the reachable public address.
//
// The transport gives no delivery or ordering guarantees; retransmissions can
// legitimately produce duplicate requests, which the receiving node is
// expected to deduplicate.
package net
