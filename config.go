package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"code.cryptopower.dev/group/govledger/pagestore"
	"github.com/decred/dcrd/dcrutil/v4"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "govledger.conf"
	defaultLogDirname     = "logs"
	defaultLogLevel       = "info"
	defaultMaxLogZips     = 8
	defaultListen         = "127.0.0.1:7980"
)

var defaultAppDataDir = dcrutil.AppDataDir("govledger", false)

type config struct {
	AppDataDir string `short:"A" long:"appdata" description:"Directory holding the page store and logs"`
	ConfigFile string `short:"C" long:"configfile" description:"Path to configuration file"`
	DBDriver   string `long:"dbdriver" description:"Page store driver {bdb, badgerdb}"`
	LogDir     string `long:"logdir" description:"Directory to log output"`
	MaxLogZips int    `long:"maxlogzips" description:"Number of zipped log files to keep (0 keeps all)"`
	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`
	Principal  string `short:"p" long:"principal" description:"Caller identity for one-shot commands"`
	Listen     string `long:"listen" description:"Interface/port for the serve command"`
}

func defaultConfig() config {
	return config{
		AppDataDir: defaultAppDataDir,
		ConfigFile: filepath.Join(defaultAppDataDir, defaultConfigFilename),
		DBDriver:   pagestore.DriverBolt,
		MaxLogZips: defaultMaxLogZips,
		DebugLevel: defaultLogLevel,
		Listen:     defaultListen,
	}
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = strings.Replace(path, "~", home, 1)
		}
	}

	return filepath.Clean(os.ExpandEnv(path))
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// loadConfig initializes and parses the config using a config file and
// command line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
//
// The last step happens when the returned parser is run against the command
// line, so command line options take precedence over the config file.
func loadConfig(args []string) (*config, *flags.Parser, error) {
	cfg := defaultConfig()

	// Pre-parse the command line options to see if an alternative config
	// file or data directory was specified.  Errors, including requests for
	// help, are reported by the final parse.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.PassDoubleDash|flags.IgnoreUnknown)
	preParser.ParseArgs(args)

	appDataDir := cleanAndExpandPath(preCfg.AppDataDir)
	configFile := cleanAndExpandPath(preCfg.ConfigFile)
	if preCfg.AppDataDir != cfg.AppDataDir && preCfg.ConfigFile == cfg.ConfigFile {
		configFile = filepath.Join(appDataDir, defaultConfigFilename)
	}
	cfg.AppDataDir = appDataDir
	cfg.ConfigFile = configFile

	parser := flags.NewParser(&cfg, flags.Default)
	if fileExists(configFile) {
		err := flags.NewIniParser(parser).ParseFile(configFile)
		if err != nil {
			return nil, nil, fmt.Errorf("error parsing config file %s: %v", configFile, err)
		}
	}

	return &cfg, parser, nil
}

// validate checks the fully parsed configuration and fills in derived
// values.
func (cfg *config) validate() error {
	cfg.AppDataDir = cleanAndExpandPath(cfg.AppDataDir)

	switch cfg.DBDriver {
	case pagestore.DriverBolt, pagestore.DriverBadger:
	default:
		return fmt.Errorf("unsupported page store driver %q", cfg.DBDriver)
	}

	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(cfg.AppDataDir, defaultLogDirname)
	}
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)

	if cfg.MaxLogZips < 0 {
		return fmt.Errorf("maxlogzips must not be negative")
	}
	return nil
}
