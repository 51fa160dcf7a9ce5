package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fmtxd",
	Short: "FM transmitter daemon",
	Long: `fmtxd drives an FM transmitter chip and exposes it as a device
on MQTT, websocket and TCP registries.

Configuration is layered: built-in defaults, then the YAML file given by
--config, then FMTX_* environment variables, then command line flags.`,
	SilenceUsage: true,
}

func init() {
	// glog registers its flags on flag.CommandLine.
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	rootCmd.AddCommand(runCmd, scriptsCmd, versionCmd)
}

func main() {
	// Keeps glog from complaining about logging before flag.Parse.
	flag.CommandLine.Parse(nil)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
