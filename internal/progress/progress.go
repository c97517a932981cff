// Package progress draws file-count progress bars on stderr.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Tracker counts processed files and, when attached to a terminal, draws a bar.
// A nil *Tracker is valid and does nothing.
type Tracker struct {
	bar   *progressbar.ProgressBar
	out   io.Writer
	label string
	done  atomic.Int64
}

// NewTracker creates a progress bar writing to w.
func NewTracker(label string, total int, w io.Writer) *Tracker {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Tracker{bar: bar, out: w, label: label}
}

// ForStderr returns a tracker drawing on stderr, or one that only counts when
// stderr is not a terminal or quiet is set.
func ForStderr(label string, total int, quiet bool) *Tracker {
	fd := os.Stderr.Fd()
	if quiet || !(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) {
		return &Tracker{out: io.Discard, label: label}
	}
	return NewTracker(label, total, os.Stderr)
}

// Tick increments the progress by 1. Safe for concurrent use.
func (t *Tracker) Tick() {
	if t == nil {
		return
	}
	t.done.Add(1)
	if t.bar != nil {
		_ = t.bar.Add(1)
	}
}

// Done returns how many ticks were recorded.
func (t *Tracker) Done() int {
	if t == nil {
		return 0
	}
	return int(t.done.Load())
}

// FinishSuccess clears the bar completely.
func (t *Tracker) FinishSuccess() {
	t.clear()
}

// FinishError clears the bar and reports err on the tracker's writer.
func (t *Tracker) FinishError(err error) {
	if t == nil {
		return
	}
	t.clear()
	fmt.Fprintf(t.out, "  %s error: %v\n", t.label, err)
}

func (t *Tracker) clear() {
	if t == nil || t.bar == nil {
		return
	}
	_ = t.bar.Finish()
	_ = t.bar.Clear()
}
