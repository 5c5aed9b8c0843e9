package cmd

import (
	"fmt"
	"os"

	"github.com/trailwatch/apiscan/cmd/apiscan"
	"github.com/trailwatch/apiscan/cmd/tools"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "apiscan",
	Short: "Static API-usage scanner for linked binaries and their object files",
	Long: `apiscan reconstructs the call/reference graph of a linked binary and the
unlinked object files that produced it, and reports which API categories
(filesystem, network, process, ...) each source package uses.

This CLI is the entry point for the scanner, its sandboxed-build
companion, and related tooling.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the RootCmd.
func Execute() {
	err := RootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.apiscan.yaml)")
	RootCmd.AddCommand(apiscan.ScanCmd, apiscan.SandboxCheckCmd, tools.ToolsCmd)
	cobra.OnInitialize(initConfig)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".apiscan")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
