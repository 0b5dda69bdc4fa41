// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRootCmdExists tests that root command is properly initialized
func TestRootCmdExists(t *testing.T) {
	assert.NotNil(t, rootCmd, "root command should exist")
	assert.Equal(t, "droidleds", rootCmd.Use)
	assert.Contains(t, rootCmd.Short, "droidleds")
}

// TestRootCmdHasCommands tests that subcommands are registered
func TestRootCmdHasCommands(t *testing.T) {
	expectedCommands := []string{
		"lights-hal",
		"servicemanager",
		"backlight",
		"notification",
	}

	commands := rootCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	for _, expected := range expectedCommands {
		assert.Contains(t, commandNames, expected, "command %s should be registered", expected)
	}
}

func TestGlobalFlags(t *testing.T) {
	for _, name := range []string{"config", "log-level", "log-format"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "flag %s", name)
	}
}

func TestSetVersion(t *testing.T) {
	oldVersion, oldBuild := Version, BuildTime
	t.Cleanup(func() { SetVersion(oldVersion, oldBuild) })

	SetVersion("1.2.3", "today")
	out, err := runCLI(t, context.Background(), "--version")
	require.NoError(t, err)
	assert.Equal(t, "droidleds v1.2.3 (built: today)\n", out)
}

// resetCommand restores every flag to its default and drops any context
// left by a previous run so commands can be executed more than once
func resetCommand(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	// cobra only hands the execute context down to subcommands without one
	cmd.SetContext(nil) //nolint:staticcheck
	for _, c := range cmd.Commands() {
		resetCommand(c)
	}
}

func runCLI(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	resetCommand(rootCmd)
	t.Cleanup(func() { resetCommand(rootCmd) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(ctx)
	return out.String(), err
}
