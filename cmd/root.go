package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	level string
	file  string
	cfg   Config
)

func init() {
	rootCmd.PersistentFlags().StringVar(&level, "log", "", "Log level")
	rootCmd.PersistentFlags().StringVarP(&file, "file", "f", "", "Makefile to read")
}

var rootCmd = &cobra.Command{
	Use:           "pymake",
	SilenceErrors: true,
	SilenceUsage:  true,
	Short:         "Makefile statement engine",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = LoadConfig()

		if level == "" {
			level = cfg.LogLevel
		}
		if file == "" {
			file = cfg.File
		}
		if file == "" {
			file = "Makefile"
		}

		l, err := log.ParseLevel(level)
		if err != nil {
			l = log.InfoLevel
		}

		log.SetLevel(l)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
