// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")

	require.NoError(t, AtomicWriteFile(path, []byte("hello"), 0600))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c.txt")
	require.NoError(t, AtomicWriteFile(path, []byte("x"), 0600))
	require.FileExists(t, path)
}

func TestAtomicWriteFile_OverwritesWithoutLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")

	require.NoError(t, AtomicWriteFile(path, []byte("first version"), 0600))
	require.NoError(t, AtomicWriteFile(path, []byte("second"), 0600))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "second", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files should be cleaned up")
}

// =============================================================================
// STRING TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	require.Equal(t, "José", TruncateRunes("José", 10))
	require.Equal(t, "Excav...", TruncateRunes("Excavación", 8))
	require.Equal(t, "Ex", TruncateRunes("Excavación", 2))
	require.Equal(t, "", TruncateRunes("x", 0))
}

func TestTruncateWidth(t *testing.T) {
	require.Equal(t, "Muñoz", TruncateWidth("Muñoz", 5))
	require.Equal(t, "Muñ...", TruncateWidth("Muñoz Soto", 6))
	require.Equal(t, "", TruncateWidth("abc", 0))

	// Wide characters take two columns.
	require.LessOrEqual(t, StringWidth(TruncateWidth("日本語テキスト", 7)), 7)
}

func TestPadRight(t *testing.T) {
	require.Equal(t, "Ana  ", PadRight("Ana", 5))
	require.Equal(t, 6, StringWidth(PadRight("Peña", 6)))
	require.Equal(t, "toolong", PadRight("toolong", 3))
}

func TestFirstLine(t *testing.T) {
	require.Equal(t, "first", FirstLine("  first \nsecond"))
	require.Equal(t, "only", FirstLine("only"))
}
