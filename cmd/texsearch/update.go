package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/DavidAlphaFox/texsearch/app"
	"github.com/DavidAlphaFox/texsearch/service"
	"github.com/spf13/cobra"
)

// UpdateCommand represents the update command
type UpdateCommand struct {
	quiet bool
}

// NewUpdateCommand creates a new update command
func NewUpdateCommand() *UpdateCommand {
	return &UpdateCommand{}
}

// CreateCobraCommand creates the cobra command for update reconciliation
func (u *UpdateCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Reconcile document store changes into the index",
		Long: `Pull batches of document updates from the store's change feed and
apply them to the index, persisting a snapshot after every batch, until
the change sequence stops advancing.

Only one update run may write the snapshot at a time.`,
		RunE: u.runUpdate,
	}

	cmd.Flags().BoolVarP(&u.quiet, "quiet", "q", false, "Suppress progress output")

	return cmd
}

// runUpdate executes the update command
func (u *UpdateCommand) runUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := service.NewCouchStore(cfg.StoreURL)
	progress := service.NewProgressReporter(cmd.ErrOrStderr(), !u.quiet)
	useCase := app.NewUpdateUseCase(store, progress, cfg.IndexPath, cmd.ErrOrStderr())

	return useCase.Run(ctx)
}

// NewUpdateCmd creates and returns the update cobra command
func NewUpdateCmd() *cobra.Command {
	return NewUpdateCommand().CreateCobraCommand()
}
