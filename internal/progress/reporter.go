// Package progress provides an advisory progress line for the directory walk.
// The total comes from a counting pre-pass and the walk increments once per
// directory it descends into; the two are allowed to disagree.
package progress

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

// renderInterval throttles redraws so large walks are not slowed by output.
const renderInterval = 100 * time.Millisecond

// Counter is incremented once per directory visited.
type Counter interface {
	Increment()
}

// Reporter renders "done / total folders" with rate, elapsed time and ETA
// on a single self-overwriting line.
type Reporter struct {
	total      int64
	done       int64
	startTime  time.Time
	lastRender time.Time
	out        io.Writer
	enabled    bool
	now        func() time.Time
}

// NewReporter creates a Reporter expecting total directory visits.
//
// Output goes to w only when w is a terminal; otherwise the reporter is
// silent and only counts.
func NewReporter(total int64, w io.Writer) *Reporter {
	return newReporter(total, w, isTerminal(w))
}

func newReporter(total int64, w io.Writer, enabled bool) *Reporter {
	now := time.Now
	return &Reporter{
		total:     total,
		startTime: now(),
		out:       w,
		enabled:   enabled,
		now:       now,
	}
}

// IsTerminal reports whether w is an interactive terminal. Callers use it
// to skip the counting pre-pass when the reporter would stay silent.
func IsTerminal(w io.Writer) bool {
	return isTerminal(w)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Increment records one visited directory and redraws when due.
func (r *Reporter) Increment() {
	r.done++
	if !r.enabled {
		return
	}
	now := r.now()
	if now.Sub(r.lastRender) < renderInterval {
		return
	}
	r.lastRender = now
	fmt.Fprint(r.out, "\r"+r.line(r.done, r.total, now.Sub(r.startTime)))
}

// Done returns the number of increments so far.
func (r *Reporter) Done() int64 {
	return r.done
}

// Finish draws the completed state and ends the line. The final line always
// shows 100% even when the pre-pass total was wrong.
func (r *Reporter) Finish() {
	if !r.enabled {
		return
	}
	final := r.total
	if r.done > final {
		final = r.done
	}
	fmt.Fprintln(r.out, "\r"+r.line(final, final, r.now().Sub(r.startTime)))
}

func (r *Reporter) line(done, total int64, elapsed time.Duration) string {
	rate := calculateRate(done, elapsed)
	return fmt.Sprintf("Scanning: %s / %s folders (%.1f%%) | Rate: %s folders/sec | Elapsed: %s | ETA: %s",
		humanize.Comma(done),
		humanize.Comma(total),
		calculatePercentage(done, total),
		humanize.Comma(int64(rate)),
		formatDuration(elapsed),
		formatDuration(calculateETA(done, total, rate)),
	)
}

// calculateRate returns folders per second, 0 when no time has elapsed.
func calculateRate(done int64, elapsed time.Duration) float64 {
	if elapsed.Seconds() == 0 {
		return 0
	}
	return float64(done) / elapsed.Seconds()
}

// calculateETA returns an unknown (max) duration until a rate exists, and 0
// once done reaches total.
func calculateETA(done, total int64, rate float64) time.Duration {
	remaining := total - done
	if remaining <= 0 {
		return 0
	}
	if done == 0 || rate == 0 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(float64(remaining)/rate) * time.Second
}

// calculatePercentage is clamped to [0, 100]; an empty total counts as done.
func calculatePercentage(done, total int64) float64 {
	if total <= 0 {
		return 100
	}
	pct := float64(done) / float64(total) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// formatDuration formats as "Xh Ym Zs", "Ym Zs" or "Zs".
// Very large durations print as "unknown".
func formatDuration(d time.Duration) string {
	if d >= time.Duration(math.MaxInt64) {
		return "unknown"
	}
	if d < 0 {
		return "0s"
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
