package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func isolate(t *testing.T) {
	t.Helper()
	color.NoColor = true
	dir := t.TempDir()
	t.Setenv("IDEATION_MEMORY_BACKEND", "local")
	t.Setenv("IDEATION_MEMORY_LOCAL_PATH", filepath.Join(dir, "memory.db"))
	t.Setenv("IDEATION_APP_OUTPUT_DIR", dir)
	t.Setenv("IDEATION_APP_LOG_DIR", "")
}

func TestAddAndPending(t *testing.T) {
	isolate(t)

	out, err := execute(t, "add", "Dental clinics lose revenue to no-shows")
	require.NoError(t, err)
	assert.Contains(t, out, `Queued "Dental clinics lose revenue to no-shows"`)

	out, err = execute(t, "pending", "-l", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "Pending ideas: 1")
	assert.Contains(t, out, "Dental clinics lose revenue to no-shows")
}

func TestListRejectsUnknownStatus(t *testing.T) {
	isolate(t)

	_, err := execute(t, "list", "-s", "archived")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--status")

	out, err := execute(t, "list", "-s", "all")
	require.NoError(t, err)
	assert.Contains(t, out, "Ideas (all): 0")
}

func TestReportRendersMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	require.NoError(t, os.WriteFile(path, []byte("# Evaluation Report\n\nScore: **7.5**\n"), 0o644))

	out, err := execute(t, "report", "--style", "notty", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Evaluation Report")
	assert.Contains(t, out, "7.5")
}

func TestRejectsInvalidMode(t *testing.T) {
	isolate(t)

	_, err := execute(t, "-m", "swarm", "some problem")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "evaluation.mode")
}
