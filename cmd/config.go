package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const configFile = ".pymake.yaml"

// Config carries defaults the flags fall back to. Missing file means
// zero values.
type Config struct {
	LogLevel string   `yaml:"log_level"`
	File     string   `yaml:"file"`
	Goals    []string `yaml:"goals"`
}

func LoadConfig() Config {
	var cfg Config

	b, err := os.ReadFile(configFile)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("reading %v: %v", configFile, err)
		}
		return cfg
	}

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		log.Warnf("parsing %v: %v", configFile, err)
	}

	return cfg
}
