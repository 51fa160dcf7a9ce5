package main

import (
	"flag"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/robotalks/fmtx/pkg/daemon"
	fx "github.com/robotalks/fmtx/pkg/framework"
)

var (
	configFile string

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the transmitter daemon",
		Args:  cobra.NoArgs,
		RunE:  runDaemon,
	}
)

func init() {
	runCmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML configuration file")
	// Registered against the defaults for help text, re-applied in runDaemon
	// on top of the loaded file.
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	daemon.Default().SetupFlags(fs)
	runCmd.Flags().AddGoFlagSet(fs)
}

// loadConfig loads the config file and applies the flags set explicitly.
func loadConfig(flags *pflag.FlagSet) (*daemon.Config, error) {
	conf, err := daemon.Load(configFile)
	if err != nil {
		return nil, err
	}
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	conf.SetupFlags(fs)
	flags.Visit(func(f *pflag.Flag) {
		if fs.Lookup(f.Name) != nil && err == nil {
			err = fs.Set(f.Name, f.Value.String())
		}
	})
	if err != nil {
		return nil, err
	}
	return conf, conf.Validate()
}

func runDaemon(cmd *cobra.Command, args []string) error {
	conf, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	d, err := daemon.New(conf)
	if err != nil {
		return err
	}
	runner := fx.NewRunner().HandleSignals()
	runner.Go(fx.NamedRun("daemon", fx.RunFunc(d.Run)))
	return runner.Wait()
}
