// Package testutils holds helpers shared by tests across packages.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFile creates name with content in a fresh temp dir and returns its path.
// It fails the test immediately on error.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "failed to write %s", name)
	return path
}

// ReservationDialogue is a complete, valid guest conversation up to the final confirmation prompt.
var ReservationDialogue = []string{
	"Ich möchte einen Tisch reservieren",
	"ja",
	"Erika Mustermann",
	"Erika@Example.de",
	"4",
	"15.10.2025 19:30",
	"Fensterplatz",
}
