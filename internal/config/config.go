// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package config validates and normalizes the server's CLI-derived
// configuration.
package config

import (
	"fmt"
	"net"
	"runtime"
	"strconv"
	"time"
)

// Config is the fully resolved, validated server configuration.
type Config struct {
	Address          string
	Port             int
	Threads          int
	GovernorCeiling  int64
	RejuvenateTasks  int
	RejuvenateEvery  time.Duration
	MetricsAddress   string
	LogLevel         string
	ShutdownDeadline time.Duration
	EnableHealth     bool
}

// DefaultThreads is the worker count used when --threads is omitted,
// matching the fixed default the wire contract documents.
const DefaultThreads = 4

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks field invariants and resolves derived defaults in place
// (e.g. --threads=0 expands to runtime.NumCPU()).
func (c *Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("address must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Threads < 0 {
		return fmt.Errorf("threads must not be negative")
	}
	if c.Threads == 0 {
		c.Threads = runtime.NumCPU()
	}
	if c.GovernorCeiling < 0 {
		return fmt.Errorf("governor ceiling must not be negative")
	}
	if c.RejuvenateTasks < 0 {
		return fmt.Errorf("rejuvenate-tasks must not be negative")
	}
	if c.RejuvenateEvery < 0 {
		return fmt.Errorf("rejuvenate-interval must not be negative")
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("unrecognized log level %q", c.LogLevel)
	}
	if c.ShutdownDeadline <= 0 {
		c.ShutdownDeadline = 30 * time.Second
	}
	return nil
}

// ListenAddress joins Address and Port into a dial string.
func (c Config) ListenAddress() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}
