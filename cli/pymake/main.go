package main

import (
	"os"

	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"

	"github.com/dbywalec/pymake/cmd"
)

func main() {
	log.SetOutput(os.Stdout)

	log.SetFormatter(&log.TextFormatter{
		ForceColors: isatty.IsTerminal(os.Stdout.Fd()),
	})

	cmd.Execute()
}
