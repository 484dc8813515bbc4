package net

// Transport provides an interface for network transports to allow a simnode
// to exchange simulation messages with other components.
type Transport interface {

	// Starts the transport listening
	Listen()

	// Consumer returns a channel that can be used to
	// consume and respond to RPC requests.
	Consumer() <-chan RPC

	// LocalAddr is used to return our local address
	LocalAddr() string

	// AdvertiseAddr is used to return our advertise address where other
	// components can reach us
	AdvertiseAddr() string

	// Epoch, Input, Result, and Status send the appropriate RPC to the
	// target component.

	Epoch(target string, args *EpochRequest, resp *EpochResponse) error

	Input(target string, args *InputRequest, resp *InputResponse) error

	Result(target string, args *ResultRequest, resp *ResultResponse) error

	Status(target string, args *StatusRequest, resp *StatusResponse) error

	// Close permanently closes a transport, stopping
	// any associated goroutines and freeing other resources.
	Close() error
}
