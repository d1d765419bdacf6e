// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package snmpbridge

import (
	"time"

	"golang.org/x/crypto/ssh"
)

// Store configuration options using the functional options pattern

// Username sets the username for NETCONF authentication
func Username(username string) func(*NetconfStore) {
	return func(s *NetconfStore) {
		s.username = username
	}
}

// Password sets the password for NETCONF authentication
func Password(password string) func(*NetconfStore) {
	return func(s *NetconfStore) {
		s.password = password
	}
}

// Port sets the NETCONF port (default: 830)
func Port(port int) func(*NetconfStore) {
	return func(s *NetconfStore) {
		s.Port = port
	}
}

// ConnectTimeout sets the SSH dial timeout (default: 30s)
func ConnectTimeout(timeout time.Duration) func(*NetconfStore) {
	return func(s *NetconfStore) {
		s.ConnectTimeout = timeout
	}
}

// SSHConfig supplies a complete SSH client configuration, overriding the
// password-derived one. Use this for public-key authentication or custom
// host key verification.
func SSHConfig(config *ssh.ClientConfig) func(*NetconfStore) {
	return func(s *NetconfStore) {
		s.sshConfig = config
	}
}

// StoreLogger sets a custom logger for the store (default: NoOpLogger)
func StoreLogger(logger Logger) func(*NetconfStore) {
	return func(s *NetconfStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Bridge configuration options using the functional options pattern

// WithLogger sets a custom logger for the bridge and its bindings
// (default: NoOpLogger)
func WithLogger(logger Logger) func(*Bridge) {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Binding registration options

// WithDefault overrides the schema-declared default value for a scalar
// binding, mirroring an SMIv2 DEFVAL annotation. The value must be in the
// canonical string form of the leaf's type.
func WithDefault(defval string) func(*Binding) {
	return func(bd *Binding) {
		bd.defval = defval
		bd.hasDefault = true
	}
}

// ReadOnly marks a binding as not writable; set requests are rejected with
// StatusNotWritable before any type checking or store access.
func ReadOnly() func(*Binding) {
	return func(bd *Binding) {
		bd.readOnly = true
	}
}
