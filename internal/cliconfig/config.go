// Package cliconfig holds configuration handling for the settle CLI:
// defaults, validation, and the file/env/flag precedence rules.
package cliconfig

import (
	"fmt"
	"time"
)

// Config holds CLI configuration for settle.
type Config struct {
	// Wait is the quiet period required before the command runs.
	Wait time.Duration

	// MaxWait caps the total delay between the first event of a burst
	// and the command run. Zero disables the ceiling.
	MaxWait time.Duration

	// Command is the program to run when a burst settles, with its
	// arguments.
	Command []string

	// Paths are the files or directories to watch.
	Paths []string

	// RunAtStart runs the command once immediately after startup.
	RunAtStart bool

	// Verbose enables debug logging.
	Verbose bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Wait:  500 * time.Millisecond,
		Paths: []string{"."},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Wait <= 0 {
		return fmt.Errorf("wait must be positive")
	}
	if c.MaxWait != 0 && c.MaxWait < c.Wait {
		return fmt.Errorf("max-wait must be >= wait")
	}
	if len(c.Command) == 0 {
		return fmt.Errorf("a command is required")
	}
	if len(c.Paths) == 0 {
		return fmt.Errorf("at least one path to watch is required")
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag hasn't
// been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setStrings sets a string slice if non-empty and flag not changed.
func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag
// not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
