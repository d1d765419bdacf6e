// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package snmpbridge

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Juniper/go-netconf/netconf"
	"golang.org/x/crypto/ssh"
)

// Default store configuration values
const (
	DefaultPort           = 830
	DefaultConnectTimeout = 30 * time.Second
)

// Store is the narrow config-store RPC surface the bridge consumes. All
// staging happens against the candidate configuration; Commit and
// DiscardChanges resolve it. Each call maps to one synchronous RPC.
//
// The bridge never interprets store payloads beyond extracting leaf values
// and rpc-error elements; everything else belongs to the store.
type Store interface {
	// GetConfig reads the running configuration restricted by a subtree
	// filter and returns the rpc-reply data XML.
	GetConfig(ctx context.Context, filter string) (string, error)

	// EditConfigCandidate merges a config fragment into the candidate
	// configuration without making it durable.
	EditConfigCandidate(ctx context.Context, fragment string) error

	// Commit durably commits the candidate configuration.
	Commit(ctx context.Context) error

	// DiscardChanges discards the candidate, restoring the running view.
	DiscardChanges(ctx context.Context) error

	// Close terminates the store session.
	Close() error
}

// NetconfStore implements Store over a NETCONF session to a remote
// configuration datastore.
//
// The store creates its session lazily: NewNetconfStore validates the
// configuration but does not dial. The connection is established on the
// first RPC call. Each RPC is a blocking synchronous exchange; no timeout
// is enforced at this layer beyond the SSH transport's own connect
// timeout.
//
// Example:
//
//	store, err := snmpbridge.NewNetconfStore(
//	    "192.168.1.1",
//	    snmpbridge.Username("admin"),
//	    snmpbridge.Password("secret"),
//	)
//	if err != nil {
//	    log.Fatal(err)  // Configuration error
//	}
//	defer store.Close()
type NetconfStore struct {
	// Connection parameters
	Target string
	Port   int

	username string // unexported for security
	password string // unexported for security

	// ConnectTimeout bounds the SSH dial
	ConnectTimeout time.Duration

	// sshConfig overrides the password-derived SSH client config when set
	sshConfig *ssh.ClientConfig

	logger Logger

	// mu serializes session access; the bridge is callback-driven and
	// single-threaded, but the store must stay safe if shared
	mu      sync.Mutex
	session *netconf.Session
}

// NewNetconfStore creates a NETCONF-backed store with the specified target
// and options. The session is dialed lazily on first use.
//
// Returns a configured NetconfStore or an error if validation fails.
func NewNetconfStore(target string, opts ...func(*NetconfStore)) (*NetconfStore, error) {
	store := &NetconfStore{
		Target:         target,
		Port:           DefaultPort,
		ConnectTimeout: DefaultConnectTimeout,
		logger:         &NoOpLogger{},
	}

	for _, opt := range opts {
		opt(store)
	}

	if err := store.validateConfig(); err != nil {
		return nil, err
	}

	store.logger.Info("netconf store created",
		"target", store.Target,
		"port", store.Port,
		"connection", "lazy")

	return store, nil
}

// validateConfig validates store configuration before connection
func (s *NetconfStore) validateConfig() error {
	if strings.TrimSpace(s.Target) == "" {
		return fmt.Errorf("target address cannot be empty")
	}
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535)", s.Port)
	}
	if s.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive, got: %v", s.ConnectTimeout)
	}
	if s.sshConfig == nil && s.username == "" {
		return fmt.Errorf("credentials required: set Username/Password or SSHConfig")
	}
	return nil
}

// address returns the dial target with the port appended when the target
// does not already carry one.
func (s *NetconfStore) address() string {
	if strings.Contains(s.Target, ":") {
		return s.Target
	}
	return fmt.Sprintf("%s:%d", s.Target, s.Port)
}

// ensureConnected establishes the session if not already connected.
// Caller must hold s.mu.
func (s *NetconfStore) ensureConnected() error {
	if s.session != nil {
		return nil
	}

	config := netconf.SSHConfigPassword(s.username, s.password)
	if s.sshConfig != nil {
		// copy so the timeout override never reaches the caller's config
		clone := *s.sshConfig
		config = &clone
	}
	config.Timeout = s.ConnectTimeout

	s.logger.Debug("establishing netconf session",
		"target", s.Target,
		"port", s.Port)

	session, err := netconf.DialSSH(s.address(), config)
	if err != nil {
		return fmt.Errorf("failed to establish netconf session: %w", err)
	}
	s.session = session

	s.logger.Info("netconf session established",
		"target", s.Target,
		"port", s.Port)

	return nil
}

// exec runs one RPC over the session, reconnecting on the next call if the
// exchange fails. Context cancellation is honored before the blocking
// exchange starts; the exchange itself is synchronous by design.
func (s *NetconfStore) exec(ctx context.Context, operation, rpc string) (*netconf.RPCReply, error) {
	if err := checkContextCancellation(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureConnected(); err != nil {
		return nil, storeError(operation, "connection failed", err)
	}

	s.logger.Debug("netconf rpc request",
		"operation", operation,
		"target", s.Target)

	reply, err := s.session.Exec(netconf.RawMethod(rpc))
	if err != nil {
		// session state is unknown after a failed exchange; drop it so the
		// next call reconnects
		s.session.Close()
		s.session = nil
		s.logger.Error("netconf rpc failed",
			"operation", operation,
			"target", s.Target,
			"error", err.Error())
		return nil, storeError(operation, "rpc failed", err)
	}

	if rpcErrs := parseRPCErrors(reply.RawReply); len(rpcErrs) > 0 {
		s.logger.Error("netconf rpc-error reply",
			"operation", operation,
			"target", s.Target,
			"errors", len(rpcErrs),
			"first", rpcErrs[0].Error())
		return nil, storeError(operation, "rpc-error reply", rpcErrs[0])
	}

	return reply, nil
}

// GetConfig reads the running configuration through a subtree filter and
// returns the rpc-reply data XML.
func (s *NetconfStore) GetConfig(ctx context.Context, filter string) (string, error) {
	var rpc strings.Builder
	rpc.WriteString(`<get-config xmlns="urn:ietf:params:xml:ns:netconf:base:1.0"><source><running/></source>`)
	if filter != "" {
		rpc.WriteString(`<filter type="subtree">`)
		rpc.WriteString(filter)
		rpc.WriteString(`</filter>`)
	}
	rpc.WriteString(`</get-config>`)

	reply, err := s.exec(ctx, "get-config", rpc.String())
	if err != nil {
		return "", err
	}
	return reply.Data, nil
}

// EditConfigCandidate merges a config fragment into the candidate
// configuration.
func (s *NetconfStore) EditConfigCandidate(ctx context.Context, fragment string) error {
	var rpc strings.Builder
	rpc.WriteString(`<edit-config xmlns="urn:ietf:params:xml:ns:netconf:base:1.0">`)
	rpc.WriteString(`<target><candidate/></target>`)
	rpc.WriteString(`<default-operation>merge</default-operation>`)
	rpc.WriteString(`<config>`)
	rpc.WriteString(fragment)
	rpc.WriteString(`</config></edit-config>`)

	_, err := s.exec(ctx, "edit-config", rpc.String())
	return err
}

// Commit durably commits the candidate configuration.
func (s *NetconfStore) Commit(ctx context.Context) error {
	_, err := s.exec(ctx, "commit", `<commit xmlns="urn:ietf:params:xml:ns:netconf:base:1.0"/>`)
	return err
}

// DiscardChanges discards the candidate configuration.
func (s *NetconfStore) DiscardChanges(ctx context.Context) error {
	_, err := s.exec(ctx, "discard-changes", `<discard-changes xmlns="urn:ietf:params:xml:ns:netconf:base:1.0"/>`)
	return err
}

// Close closes the NETCONF session and cleans up resources.
//
// Thread-safe: safe to call multiple times (subsequent calls are no-ops).
func (s *NetconfStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil
	}
	session := s.session
	s.session = nil
	session.Close()

	s.logger.Info("netconf session closed",
		"target", s.Target)

	return nil
}

// checkContextCancellation returns the context error, if any, before a
// blocking operation is started.
func checkContextCancellation(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
