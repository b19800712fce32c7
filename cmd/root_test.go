package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtablet/tabmap/internal/config"
)

func testConfig(display string) *config.Config {
	c := config.DefaultConfig
	c.Display = display
	return &c
}

func TestRootCommandFlags(t *testing.T) {
	output := rootCmd.Flags().Lookup("output")
	require.NotNil(t, output)
	assert.Equal(t, "o", output.Shorthand)

	watch := rootCmd.Flags().Lookup("watch")
	require.NotNil(t, watch)
	assert.Equal(t, "w", watch.Shorthand)
	assert.Equal(t, "false", watch.DefValue)

	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("display"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestSubcommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"outputs", "devices", "setup", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestVersionDefaults(t *testing.T) {
	// Development builds carry the fallbacks; releases override them via
	// -ldflags -X.
	assert.NotEmpty(t, Version)
	assert.Equal(t, "unknown", Commit)
	assert.Equal(t, "unknown", Date)
}

func TestDisplayResolution(t *testing.T) {
	cfgDisplay := testConfig(":5")

	// Flag wins over config.
	displayFlag = ":9"
	defer func() { displayFlag = "" }()
	assert.Equal(t, ":9", display(cfgDisplay))

	displayFlag = ""
	assert.Equal(t, ":5", display(cfgDisplay))

	assert.Equal(t, "", display(testConfig("")))
}
