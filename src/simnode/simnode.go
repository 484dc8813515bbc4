package simnode

import (
	"fmt"
	"os"

	"github.com/gridsim/simnode/src/config"
	"github.com/gridsim/simnode/src/emitter"
	"github.com/gridsim/simnode/src/net"
	"github.com/gridsim/simnode/src/node"
	"github.com/gridsim/simnode/src/peers"
	"github.com/gridsim/simnode/src/service"
	"github.com/gridsim/simnode/src/store"
	"github.com/sirupsen/logrus"
)

// Simnode is a struct containing the components of a simulation node:
// transport, peer-set, store, emitter, the node itself, and the HTTP
// service. It is used to instantiate, initialize, and run these components
// together from a single Config object.
type Simnode struct {
	Config    *config.Config
	Node      *node.Node
	Transport net.Transport
	Peers     *peers.PeerSet
	Store     store.Store
	Emitter   emitter.OutputEmitter
	Service   *service.Service

	logger *logrus.Entry
}

// NewSimnode is a factory method that returns a Simnode object with a Config
// object.
func NewSimnode(config *config.Config) *Simnode {
	engine := &Simnode{
		Config: config,
		logger: config.Logger(),
	}

	return engine
}

func (s *Simnode) initPeers() error {
	if !s.Config.LoadPeers {
		if s.Peers == nil {
			s.Peers = peers.NewPeerSet([]*peers.Peer{})
		}

		return nil
	}

	peerStore := peers.NewJSONPeerSet(s.Config.DataDir)

	participants, err := peerStore.PeerSet()
	if err != nil {
		// A node without a peers.json runs standalone
		if !os.IsNotExist(err) {
			return err
		}
		participants = nil
	}

	if participants == nil {
		participants = peers.NewPeerSet([]*peers.Peer{})
	}

	s.Peers = participants

	s.logger.WithFields(logrus.Fields{
		"peers": participants.Names(),
	}).Debug("Loaded peers")

	return nil
}

func (s *Simnode) initTransport() error {
	transport, err := net.NewTCPTransport(
		s.Config.BindAddr,
		s.Config.AdvertiseAddr,
		s.Config.MaxPool,
		s.Config.TCPTimeout,
		s.logger,
	)

	if err != nil {
		return err
	}

	s.Transport = transport

	return nil
}

func (s *Simnode) initStore() error {
	if !s.Config.Store {
		s.Store = store.NewInmemStore(s.Config.CacheSize)

		s.logger.Debug("Created new in-mem store")
	} else {
		var err error

		s.logger.WithField("path", s.Config.DatabaseDir).Debug("Attempting to load or create database")

		s.Store, err = store.NewBadgerStore(s.Config.CacheSize, s.Config.DatabaseDir)
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *Simnode) initEmitter() error {
	if len(s.Config.DownstreamAddrs) == 0 {
		s.Emitter = emitter.NewInmemEmitter(s.Config.Moniker, nil)

		s.logger.Debug("No downstream components; results are kept in memory")

		return nil
	}

	s.Emitter = emitter.NewTransportEmitter(
		s.Config.Moniker,
		s.Config.DownstreamAddrs,
		s.Transport,
		s.logger,
	)

	return nil
}

func (s *Simnode) initNode() error {
	n, err := node.NewNode(
		s.Config,
		s.Peers,
		s.Transport,
		s.Emitter,
		s.Store,
	)

	if err != nil {
		return err
	}

	if err := n.Init(); err != nil {
		return fmt.Errorf("failed to initialize node: %s", err)
	}

	s.Node = n

	return nil
}

func (s *Simnode) initService() error {
	if !s.Config.NoService && s.Config.ServiceAddr != "" {
		s.Service = service.NewService(s.Config.ServiceAddr, s.Node, s.logger)
	}
	return nil
}

// Init initializes all the components of a Simnode in the right order.
func (s *Simnode) Init() error {
	if err := s.initPeers(); err != nil {
		s.logger.WithError(err).Error("simnode.go:Init() initPeers")
		return err
	}

	if err := s.initStore(); err != nil {
		s.logger.WithError(err).Error("simnode.go:Init() initStore")
		return err
	}

	if err := s.initTransport(); err != nil {
		s.logger.WithError(err).Error("simnode.go:Init() initTransport")
		return err
	}

	if err := s.initEmitter(); err != nil {
		s.logger.WithError(err).Error("simnode.go:Init() initEmitter")
		return err
	}

	if err := s.initNode(); err != nil {
		s.logger.WithError(err).Error("simnode.go:Init() initNode")
		return err
	}

	if err := s.initService(); err != nil {
		s.logger.WithError(err).Error("simnode.go:Init() initService")
		return err
	}

	return nil
}

// Run starts the optional HTTP service in the background and invokes the
// node's main loop. This is a blocking call; it returns when the node is
// shut down.
func (s *Simnode) Run() {
	if s.Service != nil {
		go s.Service.Serve()
	}

	s.Node.Run()
}

// Shutdown cleanly stops the node and its transport.
func (s *Simnode) Shutdown() {
	if s.Node != nil {
		s.Node.Shutdown()
	}
}
