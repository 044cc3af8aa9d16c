package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	appcs "github.com/zjrosen/coordsys/internal/application/coordsystem"
	"github.com/zjrosen/coordsys/internal/config"
	"github.com/zjrosen/coordsys/internal/flags"
	"github.com/zjrosen/coordsys/internal/infrastructure/sqlite"
	"github.com/zjrosen/coordsys/internal/log"
	"github.com/zjrosen/coordsys/internal/paths"
	"github.com/zjrosen/coordsys/internal/tracing"
)

// defaultLocalConfig is where a default config is written when none is found.
const defaultLocalConfig = ".coordsys/config.yaml"

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config

	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "coordsys",
	Short: "Coordinate system registry and mapping path resolver",
	Long: `coordsys stores the coordinate systems of a genome assembly, the declared
mappings between them and the feature tables placed on them, and resolves the
chain of coordinate systems needed to convert between any two of them.

All commands print JSON to stdout.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	cobra.OnInitialize(initConfig)
	cobra.OnFinalize(closeLogging)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/coordsys/config.yaml)")
	rootCmd.PersistentFlags().String("db", "",
		"path to the coordinate system database")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log (path from COORDSYS_LOG, default debug.log)")

	// Bind flags to viper
	_ = viper.BindPFlag("db_path", rootCmd.PersistentFlags().Lookup("db"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("db_path", defaults.DBPath)
	viper.SetDefault("log_level", defaults.LogLevel)
	viper.SetDefault("cache.enabled", defaults.Cache.Enabled)
	viper.SetDefault("cache.ttl_seconds", defaults.Cache.TTLSeconds)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	for name, enabled := range defaults.Flags {
		viper.SetDefault("flags."+name, enabled)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .coordsys/config.yaml (current directory)
		// 2. ~/.config/coordsys/config.yaml (user config)
		if _, err := os.Stat(defaultLocalConfig); err == nil {
			viper.SetConfigFile(defaultLocalConfig)
		} else {
			viper.AddConfigPath(config.ConfigDir())
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .coordsys/config.yaml
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			if writeErr := config.WriteDefaultConfig(defaultLocalConfig); writeErr == nil {
				viper.SetConfigFile(defaultLocalConfig)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// setupLogging initializes the debug log when --debug or COORDSYS_DEBUG is set.
func setupLogging(_ *cobra.Command, _ []string) error {
	if !debugFlag && os.Getenv("COORDSYS_DEBUG") == "" {
		log.SetEnabled(false)
		return nil
	}
	logPath := os.Getenv("COORDSYS_LOG")
	if logPath == "" {
		logPath = "debug.log"
	}

	cleanup, err := log.Init(logPath)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	logCleanup = cleanup
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetMinLevel(level)
	}
	log.Info(log.CatConfig, "coordsys starting", "version", version, "config", viper.ConfigFileUsed())
	return nil
}

func closeLogging() {
	if logCleanup != nil {
		logCleanup()
		logCleanup = nil
	}
}

// configFilePath returns the config file in use, or the default local path when
// none was loaded.
func configFilePath() string {
	if path := viper.ConfigFileUsed(); path != "" {
		return path
	}
	return defaultLocalConfig
}

// openService validates c, opens the database and loads the registry. A configured
// seed file is imported when the database holds no coordinate systems yet.
// The returned cleanup closes everything opened here.
func openService(ctx context.Context, c config.Config) (*appcs.Service, func(), error) {
	if err := config.Validate(c); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	provider, err := tracing.NewProvider(tracing.Config{
		Enabled:      c.Tracing.Enabled,
		Exporter:     c.Tracing.Exporter,
		FilePath:     c.Tracing.FilePath,
		OTLPEndpoint: c.Tracing.OTLPEndpoint,
		SampleRate:   c.Tracing.SampleRate,
		ServiceName:  tracing.DefaultServiceName,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("initializing tracing: %w", err)
	}
	shutdownTracing := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.ErrorErr(log.CatTrace, "Failed to flush traces", err)
		}
	}

	db, err := sqlite.NewDB(paths.ResolveDBPath(c.DBPath))
	if err != nil {
		shutdownTracing()
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	svc, err := appcs.NewService(ctx, appcs.Config{
		Store:        db.CoordSystemRepository(),
		Tracer:       provider.Tracer(),
		Flags:        flags.New(c.Flags),
		CacheEnabled: c.Cache.Enabled,
		CacheTTL:     time.Duration(c.Cache.TTLSeconds) * time.Second,
	})
	if err != nil {
		_ = db.Close()
		shutdownTracing()
		return nil, nil, fmt.Errorf("loading registry: %w", err)
	}

	cleanup := func() {
		svc.Close()
		if err := db.Close(); err != nil {
			log.ErrorErr(log.CatDB, "Failed to close database", err)
		}
		shutdownTracing()
	}

	if c.SeedFile != "" && len(svc.Systems()) == 0 {
		if err := importSeedFile(ctx, svc, paths.ExpandHome(c.SeedFile)); err != nil {
			cleanup()
			return nil, nil, err
		}
	}
	return svc, cleanup, nil
}

func importSeedFile(ctx context.Context, svc *appcs.Service, path string) error {
	seed, err := appcs.LoadSeedFile(path)
	if err != nil {
		return fmt.Errorf("loading seed: %w", err)
	}
	result, err := svc.Import(ctx, seed)
	if err != nil {
		return fmt.Errorf("importing seed: %w", err)
	}
	log.Info(log.CatCLI, "Seeded empty database", "seed", path, "systems", result.SystemsStored)
	return nil
}

// withService runs fn against a service opened from the loaded configuration.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc *appcs.Service) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, cleanup, err := openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(ctx, svc)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
