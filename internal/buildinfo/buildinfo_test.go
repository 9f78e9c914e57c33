package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrintBuildData(t *testing.T) {
	oldV, oldD, oldC := Version, Date, Commit
	t.Cleanup(func() { Version, Date, Commit = oldV, oldD, oldC })

	Version, Date, Commit = "v1.2.3", "2025-01-02", "abc123"

	var buf bytes.Buffer
	PrintBuildData(&buf)
	require.Equal(t, "Build version: v1.2.3\nBuild date: 2025-01-02\nBuild commit: abc123\n", buf.String())
}

func TestPrintBuildData_Defaults(t *testing.T) {
	var buf bytes.Buffer
	PrintBuildData(&buf)
	require.Contains(t, buf.String(), "Build version: N/A")
}
