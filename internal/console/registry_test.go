// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRegistry(d *fakeDialer, fc *fakeClock) *Registry {
	return NewRegistry(func(serverID string) *Controller {
		return NewController(Options{
			ServerID: serverID,
			Endpoint: func() (string, error) { return "ws://panel.local/console/" + serverID, nil },
			Dialer:   d,
			Clock:    fc,
		})
	})
}

func TestRegistryReusesSessionPerServer(t *testing.T) {
	r := newTestRegistry(&fakeDialer{}, newFakeClock())

	a, existed := r.Acquire("survival")
	require.False(t, existed)
	b, existed := r.Acquire("survival")
	require.True(t, existed)
	require.Same(t, a, b)

	other, existed := r.Acquire("creative")
	require.False(t, existed)
	require.NotSame(t, a, other)
	require.Equal(t, 2, r.Len())
}

func TestRegistryReleaseDisconnectsSynchronously(t *testing.T) {
	d := &fakeDialer{}
	fc := newFakeClock()
	r := newTestRegistry(d, fc)

	c, _ := r.Acquire("survival")
	tr := connectAndWait(t, c, d, 0)

	r.Release("survival")
	require.True(t, tr.isClosed())
	require.Equal(t, StateDisconnected, c.State())
	require.Equal(t, 0, r.Len())

	_, ok := r.Get("survival")
	require.False(t, ok)
}

func TestRegistryShutdownDisconnectsAll(t *testing.T) {
	d := &fakeDialer{}
	fc := newFakeClock()
	r := newTestRegistry(d, fc)

	a, _ := r.Acquire("survival")
	b, _ := r.Acquire("creative")
	connectAndWait(t, a, d, 0)
	connectAndWait(t, b, d, 1)

	r.Shutdown()
	require.Equal(t, StateDisconnected, a.State())
	require.Equal(t, StateDisconnected, b.State())
	require.Equal(t, 0, r.Len())
}
