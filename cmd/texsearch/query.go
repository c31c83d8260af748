package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/DavidAlphaFox/texsearch/app"
	"github.com/DavidAlphaFox/texsearch/internal/storage"
	"github.com/DavidAlphaFox/texsearch/service"
	"github.com/spf13/cobra"
)

// QueryCommand represents the query command
type QueryCommand struct{}

// NewQueryCommand creates a new query command
func NewQueryCommand() *QueryCommand {
	return &QueryCommand{}
}

// CreateCobraCommand creates the cobra command for the query loop
func (q *QueryCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Answer search requests over stdin/stdout",
		Long: `Load the index snapshot and answer search requests in a line loop:
one JSON request per stdin line, one JSON response per stdout line,
flushed immediately. A malformed or failed request produces an error
envelope; the loop keeps serving.`,
		RunE: q.runQuery,
	}
	return cmd
}

// runQuery executes the query command
func (q *QueryCommand) runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	snap, err := storage.Load(cfg.IndexPath)
	if err != nil {
		return fmt.Errorf("loading index snapshot (run init first?): %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	useCase := app.NewQueryUseCase(
		service.NewHTTPPreprocessor(cfg.PreprocessorURL),
		service.NewCouchStore(cfg.StoreURL),
		service.NewFormatter(),
		snap.Tree,
	)

	in := bufio.NewScanner(cmd.InOrStdin())
	in.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	out := bufio.NewWriter(cmd.OutOrStdout())
	for in.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := in.Bytes()
		if len(line) == 0 {
			continue
		}
		out.Write(useCase.Execute(ctx, line))
		out.WriteByte('\n')
		if err := out.Flush(); err != nil {
			return err
		}
	}
	return in.Err()
}

// NewQueryCmd creates and returns the query cobra command
func NewQueryCmd() *cobra.Command {
	return NewQueryCommand().CreateCobraCommand()
}
