// Package config defines the configuration for a simnode.
//
// Regardless of how simnode is started, directly from Go code or as a
// standalone process from the command line, it uses the Config object defined
// in this package to store and forward configuration options. On top of these
// configuration options, simnode relies on a data directory, defined by
// Config.DataDir, where it expects to find one additional configuration file:
//
//	peers.json // a JSON file containing the list of input components.
//
// An empty peers.json puts the node in standalone mode: no inputs are
// expected, and the node produces a deterministic fallback value every epoch.
package config
