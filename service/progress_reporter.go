package service

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// ProgressReporterImpl reports update reconciliation progress. In an
// interactive terminal each batch gets a progress bar; otherwise a
// plain line announces each batch. Either way a summary line closes
// each batch.
type ProgressReporterImpl struct {
	writer      io.Writer
	interactive bool
	enabled     bool
	bar         *progressbar.ProgressBar
}

// NewProgressReporter creates a new progress reporter
func NewProgressReporter(writer io.Writer, enabled bool) *ProgressReporterImpl {
	if writer == nil {
		writer = os.Stderr // Progress output typically goes to stderr
	}
	return &ProgressReporterImpl{
		writer:      writer,
		interactive: isInteractive(writer),
		enabled:     enabled,
	}
}

func isInteractive(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// StartBatch begins reporting for one batch of updates.
func (p *ProgressReporterImpl) StartBatch(total int) {
	if !p.enabled || total == 0 {
		return
	}
	if !p.interactive {
		fmt.Fprintf(p.writer, "Applying %d updates...\n", total)
		return
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionSetDescription("Applying updates"),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// Step records one processed update, whether applied or skipped.
func (p *ProgressReporterImpl) Step() {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

// FinishBatch closes the current batch and prints its outcome.
func (p *ProgressReporterImpl) FinishBatch(applied, skipped int, lastSeq int64) {
	if !p.enabled {
		return
	}
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
	if skipped > 0 {
		fmt.Fprintf(p.writer, "Batch done: %d applied, %d skipped, sequence %d\n", applied, skipped, lastSeq)
	} else {
		fmt.Fprintf(p.writer, "Batch done: %d applied, sequence %d\n", applied, lastSeq)
	}
}
