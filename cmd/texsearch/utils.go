package main

import (
	"github.com/DavidAlphaFox/texsearch/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// flagValue returns a flag's string value whether it is local or
// inherited from the root command, tolerating commands that never
// registered it.
func flagValue(cmd *cobra.Command, name string) string {
	var f *pflag.Flag
	if f = cmd.Flags().Lookup(name); f == nil {
		f = cmd.InheritedFlags().Lookup(name)
	}
	if f == nil {
		return ""
	}
	return f.Value.String()
}

// loadConfig resolves the process configuration for a command, honoring
// the global --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(flagValue(cmd, "config"))
}
