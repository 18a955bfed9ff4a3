// Package cmd provides the command-line interface of the ARAP simulator.
package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "arap",
	Short: "ARAP simulates anonymous routing driven by ant colonies.",
	Long: `ARAP simulates a network where messages travel through onion-layered ` +
		`relay chains chosen by ant colony optimization. ` +
		`Explorer ants measure the round trip of every relay and load ants ` +
		`carry the traffic.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		levelName, _ := cmd.Flags().GetString("log-level")

		level, err := logrus.ParseLevel(levelName)
		if err != nil {
			return err
		}

		logrus.SetLevel(level)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info",
		"Log level: trace, debug, info, warn or error.")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
