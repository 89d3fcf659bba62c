// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranscriptPreservesArrivalOrder(t *testing.T) {
	var tr Transcript
	tr.Append(EntryLog, "line one\n")
	tr.Append(EntryBanner, "-- retrying (1/5) in 1s --")
	tr.Append(EntryLog, "line two\n")

	require.Equal(t, "line one\n-- retrying (1/5) in 1s --\nline two\n", tr.String())
}

func TestTranscriptNormalizesNonLogEntries(t *testing.T) {
	var tr Transcript
	tr.Append(EntryBanner, "-- connected --")
	tr.Append(EntryResult, "done")
	tr.Append(EntryLog, "partial chunk without newline")

	entries := tr.Entries()
	require.Equal(t, "-- connected --\n", entries[0].Text)
	require.Equal(t, "done\n", entries[1].Text)
	require.Equal(t, "partial chunk without newline", entries[2].Text, "log text is verbatim")
}

func TestTranscriptReplaceDiscardsHistory(t *testing.T) {
	var tr Transcript
	tr.Append(EntryLog, "old\n")
	tr.Append(EntryBanner, "-- connected --")
	require.Equal(t, 0, tr.Replaces())

	tr.Replace("authoritative buffer\n")
	require.Equal(t, 1, tr.Replaces())
	require.Equal(t, 1, tr.Len())
	require.Equal(t, "authoritative buffer\n", tr.String())

	tr.Replace("second resync\n")
	require.Equal(t, 2, tr.Replaces())
}

func TestTranscriptEntriesReturnsCopy(t *testing.T) {
	var tr Transcript
	tr.Append(EntryLog, "a\n")
	got := tr.Entries()
	got[0].Text = "mutated"
	require.Equal(t, "a\n", tr.Entries()[0].Text)
}
