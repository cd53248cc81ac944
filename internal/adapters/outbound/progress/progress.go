// Package progress renders orchestrator progress on the terminal.
package progress

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/abdidvp/plugincheck/internal/domain"
)

// Bar implements domain.ProgressReporter with a progressbar on w.
type Bar struct {
	w           io.Writer
	description string

	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

// New returns a Bar on stderr when enabled and stderr is a terminal, and a
// no-op reporter otherwise so piped output stays clean.
func New(enabled bool) domain.ProgressReporter {
	if enabled && IsInteractive(os.Stderr) {
		return NewBar(os.Stderr, "validating")
	}
	return NoOp{}
}

// NewBar builds a reporter on an explicit writer.
func NewBar(w io.Writer, description string) *Bar {
	return &Bar{w: w, description: description}
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (b *Bar) Start(total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(b.w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(18),
		progressbar.OptionSetDescription(b.description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
	)
}

// Advance is called from worker goroutines.
func (b *Bar) Advance(label string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar == nil {
		return
	}
	b.bar.Describe(b.description + " " + label)
	_ = b.bar.Add(1)
}

func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar != nil {
		_ = b.bar.Finish()
	}
}

// Current returns the number of advanced units.
func (b *Bar) Current() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar == nil {
		return 0
	}
	return int(b.bar.State().CurrentNum)
}

// NoOp discards progress.
type NoOp struct{}

func (NoOp) Start(int)      {}
func (NoOp) Advance(string) {}
func (NoOp) Finish()        {}
