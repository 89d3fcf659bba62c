// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/auth/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("username") != "admin" || r.PostForm.Get("password") != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "bad credentials"})
			return
		}
		json.NewEncoder(w).Encode(TokenResponse{AccessToken: "tok-123", TokenType: "bearer"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	require.NoError(t, c.Login(context.Background(), "admin", "hunter2"))
	require.Equal(t, "tok-123", c.Token())

	err := c.Login(context.Background(), "admin", "wrong")
	require.ErrorIs(t, err, ErrAuthFailed)
	require.Contains(t, err.Error(), "bad credentials")
}

func TestListServersSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		require.Equal(t, "/api/servers", r.URL.Path)
		json.NewEncoder(w).Encode([]ServerInfo{
			{ID: "survival", Name: "Survival", Status: "running"},
			{ID: "creative", Name: "Creative", Status: "stopped"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL).WithToken("tok-123")
	servers, err := c.ListServers(context.Background())
	require.NoError(t, err)
	require.Len(t, servers, 2)
	require.True(t, servers[0].Running())
	require.False(t, servers[1].Running())
}

func TestGetServerMapsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "no such server"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL).WithToken("tok")
	_, err := c.GetServer(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrServerNotFound)
}

func TestCheckConsoleReady(t *testing.T) {
	status := "stopped"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ServerInfo{ID: "survival", Status: status})
	}))
	defer srv.Close()

	c := NewClient(srv.URL).WithToken("tok")
	err := c.CheckConsoleReady(context.Background(), "survival")
	require.ErrorIs(t, err, ErrServerNotRunning)

	status = "running"
	require.NoError(t, c.CheckConsoleReady(context.Background(), "survival"))
}

func TestConsoleURLSchemeAndQuery(t *testing.T) {
	c := NewClient("https://panel.example.com").WithToken("tok-123")
	raw, err := c.ConsoleURL("survival")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "wss", u.Scheme)
	require.Equal(t, "/api/servers/survival/console", u.Path)
	require.Equal(t, "tok-123", u.Query().Get("token"))
	require.NotEmpty(t, u.Query().Get("session"))

	// Plain http downgrades to ws.
	c2 := NewClient("http://localhost:8000").WithToken("tok")
	raw2, err := c2.ConsoleURL("survival")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(raw2, "ws://localhost:8000/"))
}

func TestConsoleURLFreshSessionPerAttempt(t *testing.T) {
	c := NewClient("https://panel.example.com").WithToken("tok")
	a, err := c.ConsoleURL("survival")
	require.NoError(t, err)
	b, err := c.ConsoleURL("survival")
	require.NoError(t, err)
	require.NotEqual(t, a, b, "each attempt gets its own session id")
}

func TestConsoleURLRequiresToken(t *testing.T) {
	c := NewClient("https://panel.example.com")
	_, err := c.ConsoleURL("survival")
	require.ErrorIs(t, err, ErrAuthFailed)
}

func TestUnmappedStatusBecomesPanelError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL).WithToken("tok")
	_, err := c.ListServers(context.Background())
	var perr *PanelError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, http.StatusBadGateway, perr.Status)
	require.Contains(t, perr.Message, "upstream down")
}
