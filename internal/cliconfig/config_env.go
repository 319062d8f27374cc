package cliconfig

import (
	"os"
	"strings"
)

// ApplyEnvConfig applies configuration from environment variables
// (SETTLE_*). It respects flags that have been explicitly set (changed
// map). Returns an error if any environment variable has an invalid
// format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	if err := s.setDuration("wait", os.Getenv("SETTLE_WAIT"), &cfg.Wait); err != nil {
		return err
	}
	if err := s.setDuration("max-wait", os.Getenv("SETTLE_MAX_WAIT"), &cfg.MaxWait); err != nil {
		return err
	}

	s.setStrings("paths", splitList(os.Getenv("SETTLE_PATHS")), &cfg.Paths)

	s.setBoolFromString("run-at-start", os.Getenv("SETTLE_RUN_AT_START"), &cfg.RunAtStart)
	s.setBoolFromString("verbose", os.Getenv("SETTLE_VERBOSE"), &cfg.Verbose)

	return nil
}

// splitList splits a comma-separated environment value into its
// non-empty elements.
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
