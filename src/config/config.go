package config

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gridsim/simnode/src/common"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Default filenames.
const (
	// DefaultBadgerFile is the default name of the folder containing the
	// Badger database
	DefaultBadgerFile = "badger_db"

	// DefaultLogFile is the name of the log file created in the datadir when
	// file logging is enabled
	DefaultLogFile = "simnode.log"
)

// ModeCorrect is the value of the mode flag that activates rescaling of the
// epoch aggregate by the base value.
const ModeCorrect = "Correct"

// Fold operator names.
const (
	FoldMultiply = "multiply"
	FoldSum      = "sum"
)

// Default configuration values.
const (
	DefaultLogLevel    = "debug"
	DefaultBindAddr    = "127.0.0.1:1756"
	DefaultServiceAddr = "127.0.0.1:8000"
	DefaultTCPTimeout  = 1000 * time.Millisecond
	DefaultMaxPool     = 2
	DefaultCacheSize   = 5000
	DefaultStore       = false
	DefaultMoniker     = "ComplexComponent"
	DefaultBaseValue   = 1.0
	DefaultMode        = ""
	DefaultFold        = FoldMultiply
	DefaultFoldSeed    = 1.0
	DefaultOutputDelay = 0 * time.Second
)

// Config contains all the configuration properties of a simnode.
type Config struct {
	// DataDir is the top-level directory containing simnode configuration
	// and data
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// LogToFile duplicates log output to a simnode.log file in the datadir.
	LogToFile bool `mapstructure:"log-to-file"`

	// Moniker is the unique component name of this node within the
	// simulation. It is the identity peers know us by, and the Source
	// stamped on every outbound message.
	Moniker string `mapstructure:"moniker"`

	// BindAddr is the local address:port where this node listens for
	// messages from other components.
	BindAddr string `mapstructure:"listen"`

	// AdvertiseAddr is used to change the address that we advertise to other
	// components.
	AdvertiseAddr string `mapstructure:"advertise"`

	// NoService disables the HTTP API service.
	NoService bool `mapstructure:"no-service"`

	// ServiceAddr is the address:port of the optional HTTP service.
	ServiceAddr string `mapstructure:"service-listen"`

	// SupervisorAddr is the address of the simulation supervisor, where
	// per-epoch Ready and Error statuses are reported. Empty disables status
	// reporting.
	SupervisorAddr string `mapstructure:"supervisor"`

	// DownstreamAddrs are the addresses of the components that consume this
	// node's epoch results.
	DownstreamAddrs []string `mapstructure:"downstream"`

	// BaseValue is the component's configured base value. In aggregator mode
	// it rescales the epoch aggregate (when Mode is "Correct"); in
	// standalone mode it seeds the per-epoch fallback formula.
	BaseValue float64 `mapstructure:"base-value"`

	// Mode is the component's mode flag. The only recognised value is
	// "Correct"; anything else leaves the aggregate unscaled.
	Mode string `mapstructure:"mode"`

	// Fold selects the binary operator used to combine peer inputs into the
	// epoch aggregate: "multiply" or "sum".
	Fold string `mapstructure:"fold"`

	// FoldSeed is the neutral value the aggregate is reset to at the start
	// of every epoch. Use 1 with multiply and 0 with sum unless the
	// simulation calls for something else.
	FoldSeed float64 `mapstructure:"fold-seed"`

	// OutputDelay is a pure wait between completion of an epoch and emission
	// of its result, used to throttle downstream load.
	OutputDelay time.Duration `mapstructure:"output-delay"`

	// MaxPool controls how many connections are pooled per target by the
	// transport.
	MaxPool int `mapstructure:"max-pool"`

	// TCPTimeout is the timeout of transport connections.
	TCPTimeout time.Duration `mapstructure:"timeout"`

	// Store activates persistent storage of emitted results.
	Store bool `mapstructure:"store"`

	// DatabaseDir is the directory containing database files.
	DatabaseDir string `mapstructure:"db"`

	// CacheSize is the max number of items in in-memory caches.
	CacheSize int `mapstructure:"cache-size"`

	// LoadPeers determines whether to read the peer-set from a peers.json
	// file in the datadir.
	LoadPeers bool `mapstructure:"load-peers"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:     DefaultDataDir(),
		LogLevel:    DefaultLogLevel,
		Moniker:     DefaultMoniker,
		BindAddr:    DefaultBindAddr,
		ServiceAddr: DefaultServiceAddr,
		BaseValue:   DefaultBaseValue,
		Mode:        DefaultMode,
		Fold:        DefaultFold,
		FoldSeed:    DefaultFoldSeed,
		OutputDelay: DefaultOutputDelay,
		MaxPool:     DefaultMaxPool,
		TCPTimeout:  DefaultTCPTimeout,
		Store:       DefaultStore,
		DatabaseDir: DefaultDatabaseDir(),
		CacheSize:   DefaultCacheSize,
		LoadPeers:   true,
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB) *Config {
	config := NewDefaultConfig()
	config.logger = common.NewTestLogger(t)
	return config
}

// SetDataDir sets the top-level simnode directory, and updates the database
// directory if it is currently set to the default value. If the database
// directory is not currently the default, it means the user has explicitely
// set it to something else, so avoid changing it again here.
func (c *Config) SetDataDir(dataDir string) {
	c.DataDir = dataDir
	if c.DatabaseDir == DefaultDatabaseDir() {
		c.DatabaseDir = filepath.Join(dataDir, DefaultBadgerFile)
	}
}

// Logger returns a formatted logrus Entry, with prefix set to "simnode".
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)

		if c.LogToFile {
			logFile := filepath.Join(c.DataDir, DefaultLogFile)
			c.logger.Hooks.Add(lfshook.NewHook(
				lfshook.PathMap{
					logrus.DebugLevel: logFile,
					logrus.InfoLevel:  logFile,
					logrus.WarnLevel:  logFile,
					logrus.ErrorLevel: logFile,
					logrus.FatalLevel: logFile,
					logrus.PanicLevel: logFile,
				},
				new(prefixed.TextFormatter),
			))
		}
	}
	return c.logger.WithField("prefix", "simnode")
}

// DefaultDatabaseDir returns the default path for the badger database files.
func DefaultDatabaseDir() string {
	return filepath.Join(DefaultDataDir(), DefaultBadgerFile)
}

// DefaultDataDir return the default directory name for top-level simnode
// config based on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".Simnode")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "Simnode")
		} else {
			return filepath.Join(home, ".simnode")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
