// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import "sync"

// =============================================================================
// SESSION REGISTRY
// =============================================================================

// Registry maps server ids to live controllers, at most one per server.
// Reopening a console for a server whose controller already exists reuses
// it, so a backgrounded session keeps its transcript and connection.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Controller
	build    func(serverID string) *Controller
}

// NewRegistry creates a registry. build constructs a controller for a
// server seen for the first time.
func NewRegistry(build func(serverID string) *Controller) *Registry {
	return &Registry{
		sessions: make(map[string]*Controller),
		build:    build,
	}
}

// Acquire returns the controller for serverID, creating it on first use.
// The second return reports whether it already existed.
func (r *Registry) Acquire(serverID string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.sessions[serverID]; ok {
		return c, true
	}
	c := r.build(serverID)
	r.sessions[serverID] = c
	return c, false
}

// Get returns the controller for serverID if one exists.
func (r *Registry) Get(serverID string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.sessions[serverID]
	return c, ok
}

// Release disconnects and removes the controller for serverID. The
// disconnect runs synchronously, so when Release returns no timers or
// transports for that server survive.
func (r *Registry) Release(serverID string) {
	r.mu.Lock()
	c, ok := r.sessions[serverID]
	delete(r.sessions, serverID)
	r.mu.Unlock()
	if ok {
		c.Disconnect()
	}
}

// Shutdown disconnects every session. Used on application exit.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	all := make([]*Controller, 0, len(r.sessions))
	for _, c := range r.sessions {
		all = append(all, c)
	}
	r.sessions = make(map[string]*Controller)
	r.mu.Unlock()
	for _, c := range all {
		c.Disconnect()
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
