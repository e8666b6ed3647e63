package cmd

import (
	"fmt"
	"path/filepath"
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dbywalec/pymake/parser"
	"github.com/dbywalec/pymake/runner"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [VAR=value ...] [goal ...]",
	Short: "Execute a makefile into its data model",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, goals, err := load(args)
		if err != nil {
			return err
		}

		if len(goals) == 0 {
			goals = cfg.Goals
		}
		if len(goals) == 0 {
			if first := m.FirstTarget(); first != "" {
				goals = []string{first}
			}
		}

		fmt.Printf("goals: %v\n", goals)

		names := m.TargetNames()
		sort.Strings(names)
		fmt.Printf("targets: %v\n", names)

		for _, g := range goals {
			if !m.HasTarget(g) {
				log.Warnf("no rule for goal %q", g)
			}
		}

		return nil
	},
}

// load executes command-line overrides, then the makefile itself, and
// returns the populated model with the residual goals.
func load(args []string) (*runner.Makefile, []string, error) {
	path, err := filepath.Abs(file)
	if err != nil {
		return nil, nil, err
	}

	m := runner.New()
	m.Workdir = filepath.Dir(path)

	stmts, goals := runner.ParseCommandLineArgs(args)
	if err := stmts.Execute(m, nil); err != nil {
		return nil, nil, err
	}

	loc := parser.Location{Path: "<command-line>"}
	if err := m.Include(filepath.Base(path), true, loc); err != nil {
		return nil, nil, err
	}

	return m, goals, nil
}
