package commands

import (
	"github.com/gridsim/simnode/src/simnode"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//NewRunCmd returns the command that starts a simnode
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run node",
		PreRunE: loadConfig,
		RunE:    runSimnode,
	}
	AddRunFlags(cmd)
	return cmd
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runSimnode(cmd *cobra.Command, args []string) error {
	engine := simnode.NewSimnode(_config)

	if err := engine.Init(); err != nil {
		_config.Logger().Error("Cannot initialize engine:", err)
		return err
	}

	engine.Run()

	return nil
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

//AddRunFlags adds flags to the Run command
func AddRunFlags(cmd *cobra.Command) {

	cmd.Flags().String("datadir", _config.DataDir, "Top-level directory for configuration and data")
	cmd.Flags().String("log", _config.LogLevel, "debug, info, warn, error, fatal, panic")
	cmd.Flags().Bool("log-to-file", _config.LogToFile, "Duplicate log output to simnode.log in datadir")
	cmd.Flags().String("moniker", _config.Moniker, "Component name within the simulation")

	// Network
	cmd.Flags().StringP("listen", "l", _config.BindAddr, "Listen IP:Port for simnode")
	cmd.Flags().StringP("advertise", "a", _config.AdvertiseAddr, "Advertise IP:Port for simnode")
	cmd.Flags().DurationP("timeout", "t", _config.TCPTimeout, "TCP Timeout")
	cmd.Flags().Int("max-pool", _config.MaxPool, "Connection pool size max")

	// Simulation
	cmd.Flags().String("supervisor", _config.SupervisorAddr, "IP:Port of the simulation supervisor")
	cmd.Flags().StringSlice("downstream", _config.DownstreamAddrs, "IP:Port of downstream components (repeatable)")
	cmd.Flags().Float64("base-value", _config.BaseValue, "Component base value")
	cmd.Flags().String("mode", _config.Mode, "Component mode flag; \"Correct\" rescales the aggregate")
	cmd.Flags().String("fold", _config.Fold, "Aggregation operator: multiply or sum")
	cmd.Flags().Float64("fold-seed", _config.FoldSeed, "Neutral value the aggregate starts from")
	cmd.Flags().Duration("output-delay", _config.OutputDelay, "Wait between epoch completion and emission")
	cmd.Flags().Bool("load-peers", _config.LoadPeers, "Read the peer-set from peers.json in datadir")

	// Service
	cmd.Flags().StringP("service-listen", "s", _config.ServiceAddr, "Listen IP:Port for HTTP service")
	cmd.Flags().Bool("no-service", _config.NoService, "Disable the HTTP service")

	// Store
	cmd.Flags().Bool("store", _config.Store, "Use badgerDB to record emitted results")
	cmd.Flags().String("db", _config.DatabaseDir, "Database directory")
	cmd.Flags().Int("cache-size", _config.CacheSize, "Number of items in in-mem caches")
}

func loadConfig(cmd *cobra.Command, args []string) error {

	err := bindFlagsLoadViper(cmd)
	if err != nil {
		return err
	}

	// If --datadir was explicitely set, but not --db, this will update the
	// default database dir to be inside the new datadir
	_config.SetDataDir(_config.DataDir)

	logFields := logrus.Fields{
		"DataDir":        _config.DataDir,
		"BindAddr":       _config.BindAddr,
		"AdvertiseAddr":  _config.AdvertiseAddr,
		"ServiceAddr":    _config.ServiceAddr,
		"SupervisorAddr": _config.SupervisorAddr,
		"Downstream":     _config.DownstreamAddrs,
		"MaxPool":        _config.MaxPool,
		"Store":          _config.Store,
		"LoadPeers":      _config.LoadPeers,
		"LogLevel":       _config.LogLevel,
		"Moniker":        _config.Moniker,
		"BaseValue":      _config.BaseValue,
		"Mode":           _config.Mode,
		"Fold":           _config.Fold,
		"FoldSeed":       _config.FoldSeed,
		"OutputDelay":    _config.OutputDelay,
		"TCPTimeout":     _config.TCPTimeout,
		"CacheSize":      _config.CacheSize,
	}

	if _config.Store {
		logFields["DatabaseDir"] = _config.DatabaseDir
	}

	_config.Logger().WithFields(logFields).Debug("RUN")

	return nil
}

// Bind all flags and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	// Register flags with viper. Include flags from this command and all other
	// persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// look for config file in [datadir]/simnode.toml (.json, .yaml also work)
	viper.SetConfigName("simnode")       // name of config file (without extension)
	viper.AddConfigPath(_config.DataDir) // search root directory

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		_config.Logger().Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.Logger().Debugf("No config file found in: %s", _config.DataDir)
	} else {
		return err
	}

	// second unmarshal to read from config file
	return viper.Unmarshal(_config)
}
