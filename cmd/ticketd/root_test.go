// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ticketline Contributors

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	// Keep config auto-discovery and bootstrap inside the test sandbox.
	t.Setenv("HOME", t.TempDir())

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "ticketd dev")
}

func TestRootRegistersSubcommands(t *testing.T) {
	root := NewRootCmd()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "version")
}

func TestRootFlags(t *testing.T) {
	root := NewRootCmd()
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("data-dir"))
	assert.NotNil(t, root.PersistentFlags().Lookup("verbose"))
}
