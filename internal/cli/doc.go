// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses command-line arguments and routes them to the
// connect, servers, config, and history commands. Parsing is
// hand-rolled: the surface is small and the default command takes a
// bare positional server id, which flag packages handle poorly.
package cli
