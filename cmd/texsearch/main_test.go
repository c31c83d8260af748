package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"init", "update", "query", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := NewVersionCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)

	require.NoError(t, cmd.RunE(cmd, nil))
	assert.True(t, strings.HasPrefix(out.String(), "texsearch "))
}

func TestInitCommandAborts(t *testing.T) {
	cmd := NewInitCmd()
	cmd.Flags().String("config", "", "")
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetIn(strings.NewReader("n\n"))

	t.Chdir(t.TempDir())
	require.NoError(t, cmd.RunE(cmd, nil))
	assert.Contains(t, out.String(), "Aborted")
}
