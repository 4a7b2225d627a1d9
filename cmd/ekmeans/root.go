package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hupe1980/ekmeans"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// rootOptions holds the flags shared by all commands.
type rootOptions struct {
	ConfigFile string `yaml:"-"`
	LogFormat  string `yaml:"log_format"`
	LogLevel   string `yaml:"log_level"`
}

func newRootCmd() *cobra.Command {
	ro := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ekmeans",
		Short: "Balanced k-means clustering",
		Long: `ekmeans assigns points to k centers so that every cluster holds
about the same number of points, then moves each center to the mean of
its members until no point changes cluster.`,
		SilenceUsage: true,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&ro.ConfigFile, "config", "", "YAML file with flag defaults")
	f.StringVar(&ro.LogFormat, "log-format", "text", "log format (text or json)")
	f.StringVar(&ro.LogLevel, "log-level", "info", "log level (debug, info, warn or error)")

	cmd.AddCommand(newRunCmd(ro), newGenerateCmd(ro))

	return cmd
}

// logger builds the logger selected by --log-format and --log-level.
func (ro *rootOptions) logger(w io.Writer) (*ekmeans.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(ro.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", ro.LogLevel)
	}

	switch strings.ToLower(ro.LogFormat) {
	case "text":
		return ekmeans.NewTextLogger(w, level), nil
	case "json":
		return ekmeans.NewJSONLogger(w, level), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", ro.LogFormat)
	}
}

// loadConfig fills ro and target from the config file, if any. Flags given
// on the command line take precedence over the file.
func (ro *rootOptions) loadConfig(cmd *cobra.Command, target any) error {
	if ro.ConfigFile == "" {
		return nil
	}

	data, err := os.ReadFile(ro.ConfigFile)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	changed := make(map[string]string)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		changed[f.Name] = f.Value.String()
	})

	if err := yaml.Unmarshal(data, ro); err != nil {
		return fmt.Errorf("parse config %s: %w", ro.ConfigFile, err)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("parse config %s: %w", ro.ConfigFile, err)
	}

	for name, value := range changed {
		if err := cmd.Flags().Set(name, value); err != nil {
			return err
		}
	}

	return nil
}
