// Package progress draws a terminal progress bar for CLI scans.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Indicator shows how far a scan has got through its players. A disabled
// indicator writes nothing.
type Indicator struct {
	mu        sync.Mutex
	out       io.Writer
	enabled   bool
	message   string
	total     int
	current   int
	label     string
	startTime time.Time
	now       func() time.Time
}

// NewIndicator creates an indicator writing to stderr.
func NewIndicator(message string, total int, enabled bool) *Indicator {
	return &Indicator{
		out:       os.Stderr,
		enabled:   enabled,
		message:   message,
		total:     total,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// SetOutput redirects the indicator.
func (p *Indicator) SetOutput(w io.Writer) {
	p.mu.Lock()
	p.out = w
	p.mu.Unlock()
}

// Start begins the progress indication
func (p *Indicator) Start() {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = p.now()
	fmt.Fprintf(p.out, "%s...\n", p.message)
}

// Step matches the scanner's progress callback: index is 1-based and label
// names the player being scanned.
func (p *Indicator) Step(index, total int, label string) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = index - 1
	p.label = label
	p.render()
}

// render draws the bar for completed steps plus the current label.
func (p *Indicator) render() {
	elapsed := p.now().Sub(p.startTime)
	if p.total <= 0 {
		fmt.Fprintf(p.out, "\r%s %s %s", p.message, spinner(elapsed), p.label)
		return
	}

	percentage := float64(p.current) / float64(p.total) * 100
	var eta string
	if p.current > 0 {
		perStep := elapsed / time.Duration(p.current)
		eta = " ETA " + formatDuration(perStep*time.Duration(p.total-p.current))
	}
	fmt.Fprintf(p.out, "\r%s [%s] %d/%d%s %s\033[K",
		p.message, bar(percentage), p.current+1, p.total, eta, p.label)
}

// Finish completes the progress indication
func (p *Indicator) Finish(summary string) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := p.now().Sub(p.startTime)
	fmt.Fprintf(p.out, "\r%s ✓ %s in %s\033[K\n", p.message, summary, formatDuration(elapsed))
}

// FinishWithError completes the progress indication with an error
func (p *Indicator) FinishWithError(err error) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := p.now().Sub(p.startTime)
	fmt.Fprintf(p.out, "\r%s ✗ Failed after %s: %v\033[K\n", p.message, formatDuration(elapsed), err)
}

func bar(percentage float64) string {
	const width = 30
	filled := int(percentage / 100.0 * width)
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func spinner(elapsed time.Duration) string {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return frames[int(elapsed.Milliseconds()/100)%len(frames)]
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	} else if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	} else if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
