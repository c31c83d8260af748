package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/DavidAlphaFox/texsearch/internal/config"
	"github.com/DavidAlphaFox/texsearch/internal/storage"
	"github.com/spf13/cobra"
)

// InitCommand represents the init command
type InitCommand struct {
	force       bool
	writeConfig bool
}

// NewInitCommand creates a new init command
func NewInitCommand() *InitCommand {
	return &InitCommand{}
}

// CreateCobraCommand creates the cobra command for index initialization
func (i *InitCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty index snapshot",
		Long: `Create an empty index snapshot at the configured path.

An existing snapshot at the same path is overwritten, so the command
asks for confirmation unless --force is given.

Examples:
  # Create the snapshot, answering the confirmation prompt
  texsearch init

  # Recreate without a prompt and also write a default .texsearch.toml
  texsearch init --force --write-config`,
		RunE: i.runInit,
	}

	cmd.Flags().BoolVarP(&i.force, "force", "f", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&i.writeConfig, "write-config", false, "Also write a default .texsearch.toml")

	return cmd
}

// runInit executes the init command
func (i *InitCommand) runInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if !i.force {
		fmt.Fprintf(cmd.OutOrStdout(), "This will reset the index at %s. Continue? [y/n] ", cfg.IndexPath)
		reader := bufio.NewReader(cmd.InOrStdin())
		answer, _ := reader.ReadString('\n')
		if strings.TrimSpace(strings.ToLower(answer)) != "y" {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	if err := storage.Empty().Save(cfg.IndexPath); err != nil {
		return fmt.Errorf("writing empty snapshot: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Empty index written to %s\n", cfg.IndexPath)

	if i.writeConfig {
		if _, err := os.Stat(config.DefaultConfigFile); err == nil && !i.force {
			return fmt.Errorf("configuration file already exists: %s\nUse --force to overwrite", config.DefaultConfigFile)
		}
		if err := os.WriteFile(config.DefaultConfigFile, []byte(config.DefaultConfigTOML), 0644); err != nil {
			return fmt.Errorf("failed to write configuration file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", config.DefaultConfigFile)
	}

	return nil
}

// NewInitCmd creates and returns the init cobra command
func NewInitCmd() *cobra.Command {
	return NewInitCommand().CreateCobraCommand()
}
