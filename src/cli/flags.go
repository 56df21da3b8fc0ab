package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ogri-la/wowhead-scraper-go/src/repair"
	"github.com/ogri-la/wowhead-scraper-go/src/types"
)

// SubCommand represents CLI subcommands
type SubCommand string

const (
	ScrapeSubCommand   SubCommand = "scrape"
	ValidateSubCommand SubCommand = "validate"
	LoadSubCommand     SubCommand = "load"
)

var KnownSubCommands = []SubCommand{ScrapeSubCommand, ValidateSubCommand, LoadSubCommand}

// ConfigName is the config file looked for in the working directory, without extension
const ConfigName = "wowhead-scraper"

// EnvPrefix prefixes environment variables, e.g. WOWHEAD_SCRAPER_DATA_DIR
const EnvPrefix = "WOWHEAD_SCRAPER"

// Config is the resolved configuration: flags over environment over config file over defaults
type Config struct {
	SiteVersion types.SiteVersion
	DataDir     string
	CacheDir    string
	Delay       time.Duration
	MaxAttempts int
	Repair      string
	DB          string
}

// Flags holds all CLI flags and configuration
type Flags struct {
	SubCommand  SubCommand
	LogLevel    slog.Level
	Config      Config
	ShowHelp    bool
	ShowVersion bool
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseFlags parses command line arguments and returns configuration
func ParseFlags(args []string, version string) (*Flags, error) {
	flags := &Flags{}

	// Global flags
	defaults := flag.NewFlagSet("wowhead-scraper", flag.ContinueOnError)
	defaults.BoolVarP(&flags.ShowHelp, "help", "h", false, "print this help and exit")
	defaults.BoolVarP(&flags.ShowVersion, "version", "V", false, "print program version and exit")
	defaults.String("config", "", "config file (default ./"+ConfigName+".yaml)")
	defaults.String("log-level", "info", "verbosity level. one of: debug, info, warn, error")
	defaults.String("site-version", string(types.ClassicSite), "site version to scrape. one of: classic, tbc, wotlk, cata")
	defaults.String("data-dir", "data", "directory of the flat files")

	// Determine subcommand
	var subcommand string
	if len(args) > 1 {
		subcommand = args[1]
	}

	var flagset *flag.FlagSet
	switch SubCommand(subcommand) {
	case ScrapeSubCommand:
		flagset = flag.NewFlagSet("scrape", flag.ContinueOnError)
		flagset.String("cache-dir", "cache", "directory of cached http responses")
		flagset.Duration("delay", 3*time.Second, "wait before every request")
		flagset.Int("max-attempts", 0, "attempts per request before giving up, 0 retries until success")
		flagset.String("repair", "heuristic", "json repair engine. one of: heuristic, json5")
		flagset.AddFlagSet(defaults)

	case ValidateSubCommand:
		flagset = flag.NewFlagSet("validate", flag.ContinueOnError)
		flagset.AddFlagSet(defaults)

	case LoadSubCommand:
		flagset = flag.NewFlagSet("load", flag.ContinueOnError)
		flagset.String("db", "wowhead.db", "sqlite database to load the flat files into")
		flagset.AddFlagSet(defaults)

	default:
		flagset = defaults
	}

	// Parse flags
	if err := flagset.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	// Handle help and version
	if flags.ShowHelp {
		printUsage(flagset)
		os.Exit(0)
	}

	if flags.ShowVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Validate subcommand
	if subcommand == "" || !slices.Contains(KnownSubCommands, SubCommand(subcommand)) {
		printUsage(flagset)
		return nil, fmt.Errorf("unknown subcommand: %s", subcommand)
	}

	v, err := loadConfig(flagset)
	if err != nil {
		return nil, err
	}

	logLevel, exists := logLevels[v.GetString("log-level")]
	if !exists {
		return nil, fmt.Errorf("unknown log level: %s", v.GetString("log-level"))
	}

	siteVersion, err := types.ParseSiteVersion(v.GetString("site-version"))
	if err != nil {
		return nil, err
	}

	config := Config{
		SiteVersion: siteVersion,
		DataDir:     v.GetString("data-dir"),
		CacheDir:    v.GetString("cache-dir"),
		Delay:       v.GetDuration("delay"),
		MaxAttempts: v.GetInt("max-attempts"),
		Repair:      v.GetString("repair"),
		DB:          v.GetString("db"),
	}
	if _, err := repair.New(config.Repair); err != nil {
		return nil, err
	}
	if config.Delay < 0 || config.MaxAttempts < 0 {
		return nil, fmt.Errorf("delay and max-attempts can't be negative")
	}

	flags.SubCommand = SubCommand(subcommand)
	flags.LogLevel = logLevel
	flags.Config = config
	return flags, nil
}

// loadConfig layers the config file and environment under the parsed flags
func loadConfig(flagset *flag.FlagSet) (*viper.Viper, error) {
	v := viper.New()

	configFile, _ := flagset.GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flagset); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		// no config file is fine unless one was asked for
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		slog.Debug("read config file", "path", v.ConfigFileUsed())
	}

	return v, nil
}

// printUsage prints usage information
func printUsage(flagset *flag.FlagSet) {
	fmt.Println("usage: wowhead-scraper <scrape|validate|load> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  scrape    Scrape profession data into flat files")
	fmt.Println("  validate  Check existing flat files against the validation rules")
	fmt.Println("  load      Load existing flat files into a SQLite database")
	fmt.Println()
	fmt.Println("Options:")
	flagset.PrintDefaults()
	fmt.Println()
	fmt.Println("Options can also be set in " + ConfigName + ".yaml or as " + EnvPrefix + "_<OPTION> environment variables.")
}
