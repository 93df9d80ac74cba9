package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// ProgressBar reports progress over a known number of items, such as
// the cells visited by a bulk state dump.
type ProgressBar struct {
	w       io.Writer
	title   string
	total   int
	current int
	failed  int
	width   int
	mu      sync.Mutex
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(w io.Writer, title string, total int) *ProgressBar {
	return &ProgressBar{
		w:     w,
		title: title,
		total: total,
		width: 30,
	}
}

// Done records one finished item. A non-nil err counts it as failed.
func (p *ProgressBar) Done(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
	if err != nil {
		p.failed++
	}
	p.render()
}

// Finish terminates the progress line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.render()
	fmt.Fprintln(p.w)
}

// Counts returns the finished and failed item counts.
func (p *ProgressBar) Counts() (done, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.failed
}

func (p *ProgressBar) render() {
	if p.total <= 0 {
		fmt.Fprintf(p.w, "\r%s %d", p.title, p.current)
		return
	}

	ratio := float64(p.current) / float64(p.total)
	if ratio > 1 {
		ratio = 1
	}
	filled := int(float64(p.width) * ratio)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)

	fmt.Fprintf(p.w, "\r%s [%s] %3.0f%% (%d/%d", p.title, bar, ratio*100, p.current, p.total)
	if p.failed > 0 {
		fmt.Fprintf(p.w, ", %d failed", p.failed)
	}
	fmt.Fprint(p.w, ")")
}
