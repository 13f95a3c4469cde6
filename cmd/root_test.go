package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRootCmd_Exists verifies the root command is wired.
func TestRootCmd_Exists(t *testing.T) {
	require.NotNil(t, rootCmd, "Root command should exist")
	assert.Equal(t, "gyadmin", rootCmd.Use,
		"Command name should be gyadmin")
}

// TestRootCmd_Subcommands verifies clone, extract and init are
// registered.
func TestRootCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}

	for _, name := range []string{"clone", "extract", "init"} {
		assert.True(t, names[name],
			"%s subcommand should be registered", name)
	}
}

// TestGetExtractCmd_Flags verifies the scope flags exist.
func TestGetExtractCmd_Flags(t *testing.T) {
	cmd := getExtractCmd()

	for _, name := range []string{
		"global", "income", "programs", "feedback", "profile",
	} {
		flag := cmd.Flags().Lookup(name)
		require.NotNil(t, flag,
			"--%s flag should exist", name)
	}
}

// TestExtractScope_All verifies no scope flags means everything runs.
func TestExtractScope_All(t *testing.T) {
	assert.True(t, extractScope{}.all())
	assert.False(t, extractScope{income: true}.all())
}

// TestGetInitCmd_Exists verifies getInitCmd returns a valid command.
func TestGetInitCmd_Exists(t *testing.T) {
	cmd := getInitCmd()
	require.NotNil(t, cmd, "Init command should exist")
	assert.Equal(t, "init <profile>", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("force"),
		"--force flag should exist")
}
