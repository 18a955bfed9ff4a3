package cmd

import (
	"fmt"

	"github.com/sarchlab/arap/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a parameter file.",
	Long: "`validate --config params.yaml` loads the parameter file, applies " +
		"the .env overrides and reports the first invalid parameter.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("config")

		c, err := config.Load(path, envFile)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(),
			"%s is valid: %d nodes, %d hops, stop at %gs\n",
			path, c.Nodes, c.Hops, c.StopTime)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("config", "", "The parameter file.")
	_ = validateCmd.MarkFlagRequired("config")
}
