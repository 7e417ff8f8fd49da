package main

import (
	"fmt"
	"os"

	"github.com/ochairo/tckwatch/internal/domain/entities"
	"github.com/ochairo/tckwatch/internal/external-adapters/yaml"
	"github.com/ochairo/tckwatch/internal/external-adapters/zaplog"
	"github.com/spf13/pflag"
)

// commonOptions are accepted by every command
type commonOptions struct {
	configPath string
	verbose    bool
}

func addCommonFlags(fs *pflag.FlagSet) *commonOptions {
	opts := &commonOptions{}
	fs.StringVar(&opts.configPath, "config", "", "Config file (default: "+yaml.DefaultConfigFile+" when present)")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	return opts
}

// parseFlags parses args and exits on error, like flag.ExitOnError
func parseFlags(fs *pflag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration and creates the stderr logger
func setup(opts *commonOptions) (*entities.Config, *zaplog.Logger) {
	cfg, err := yaml.NewConfigParser().ParseFile(opts.configPath)
	if err != nil {
		fatalf("Error loading config: %v", err)
	}

	level := cfg.LogLevel
	if opts.verbose {
		level = "debug"
	}
	logger, err := zaplog.New(os.Stderr, level)
	if err != nil {
		fatalf("Error creating logger: %v", err)
	}
	return cfg, logger
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
