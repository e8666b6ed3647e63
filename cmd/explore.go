package cmd

import (
	"github.com/alecthomas/repr"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(explorerCmd)
}

var explorerCmd = &cobra.Command{
	Use:   "explore TARGET",
	Short: "Explore a target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		targetName := args[0]

		m, _, err := load(nil)
		if err != nil {
			return err
		}

		if !m.HasTarget(targetName) {
			return errors.Errorf("unknown target %q", targetName)
		}

		repr.Println(m.GetTarget(targetName))

		return nil
	},
}
