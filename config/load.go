package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/knadh/koanf/parsers/hcl"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const EnvPrefix = "IQBRIDGE_"

// SearchPaths lists where a config file is looked for, in order.
func SearchPaths() []string {
	paths := []string{"/etc/iqbridge/config.hcl"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "iqbridge", "config.hcl"))
	}
	return append(paths, "./config.hcl")
}

// FindPath returns the first existing file from SearchPaths, or "".
func FindPath() string {
	for _, path := range SearchPaths() {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			log.Infof("Found config file: %s", path)
			return path
		}
	}
	log.Info("Config file not found, using defaults")
	return ""
}

// Load layers Default(), the HCL file at path (if any) and IQBRIDGE_*
// environment variables, later layers winning.
func Load(path string) (Conf, error) {
	conf := Default()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), hcl.Parser(true)); err != nil {
			return conf, fmt.Errorf("could not read config file %s: %w", path, err)
		}
	}
	err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(k, v string) (string, any) {
			key := strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
			k = strings.Replace(key, "_", ".", 1)
			log.Debugf("Found config env var: %s=%v", k, v)
			return k, v
		},
	}), nil)
	if err != nil {
		return conf, fmt.Errorf("could not read environment: %w", err)
	}

	if err := k.Unmarshal("", &conf); err != nil {
		return conf, fmt.Errorf("could not decode config: %w", err)
	}
	return conf, conf.Validate()
}
