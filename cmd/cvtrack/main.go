// Command cvtrack detects and tracks people, dogs or cars in video files,
// either as an HTTP service or over local files.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	cvtrack "github.com/swdee/go-cvtrack"
	"github.com/swdee/go-cvtrack/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCommand creates the cvtrack command and its subcommands
func newRootCommand() *cobra.Command {

	var configPath string

	cmd := &cobra.Command{
		Use:          "cvtrack",
		Short:        "Detect and track objects in video",
		SilenceUsage: true,
	}

	fs := cmd.PersistentFlags()
	fs.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	fs.String("log-level", "info", "Log level: trace, debug, info, warn, error")
	fs.String("log-format", "text", "Log format: text or json")
	fs.StringSlice("codecs", cvtrack.DefaultCodecs, "FourCC codecs to try in order when writing video")
	fs.String("cascade", "", "Path to the car Haar cascade XML file")
	fs.String("cpus", "", "Pin the process to CPU cores, eg: 0-3")

	cmd.AddCommand(newServeCommand(&configPath), newProcessCommand(&configPath))

	return cmd
}

// loadConfig loads the configuration file and environment then applies any
// flags set on the command line
func loadConfig(cmd *cobra.Command, path string) (*config.Config, error) {

	cfg, err := config.Load(path)

	if err != nil {
		return nil, err
	}

	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.SetupLogging(); err != nil {
		return nil, err
	}

	if cfg.Server.CPUs != "" {
		cores, err := cvtrack.ParseCPUList(cfg.Server.CPUs)

		if err != nil {
			return nil, err
		}

		if err := cvtrack.SetCPUAffinity(cores); err != nil {
			return nil, err
		}

		mask, err := cvtrack.GetCPUAffinity()

		if err != nil {
			return nil, err
		}

		log.Printf("Set CPU affinity to cores %v, mask %#x", cores, mask)
	}

	return cfg, nil
}

// applyFlags overrides configuration values with flags explicitly set
func applyFlags(fs *pflag.FlagSet, cfg *config.Config) error {

	var errs []error

	fs.Visit(func(f *pflag.Flag) {

		var err error

		switch f.Name {
		case "log-level":
			cfg.Log.Level = f.Value.String()
		case "log-format":
			cfg.Log.Format = f.Value.String()
		case "codecs":
			cfg.Video.Codecs, err = fs.GetStringSlice(f.Name)
		case "cascade":
			cfg.Detectors.Car.CascadePath = f.Value.String()
		case "cpus":
			cfg.Server.CPUs = f.Value.String()
		case "addr":
			cfg.Server.Addr = f.Value.String()
		case "upload-dir":
			cfg.Server.UploadDir = f.Value.String()
		case "output-dir":
			cfg.Server.OutputDir = f.Value.String()
		case "pool-size":
			cfg.Server.PoolSize, err = fs.GetInt(f.Name)
		case "max-upload-mb":
			cfg.Server.MaxUploadMB, err = fs.GetInt64(f.Name)
		case "keep-files":
			cfg.Server.KeepFiles, err = fs.GetBool(f.Name)
		}

		if err != nil {
			errs = append(errs, fmt.Errorf("flag --%s: %w", f.Name, err))
		}
	})

	if len(errs) > 0 {
		return errs[0]
	}

	return nil
}
