package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a status line while a long operation such as a commit
// range scan runs
type Spinner struct {
	writer   io.Writer
	interval time.Duration
	noColor  bool

	mu      sync.Mutex
	message string

	stop    chan struct{}
	wg      sync.WaitGroup
	started bool
	once    sync.Once
}

// SpinnerOptions configures a spinner
type SpinnerOptions struct {
	Message  string
	NoColor  bool
	Interval time.Duration // default 100ms
}

// NewSpinner creates a stopped spinner
func NewSpinner(w io.Writer, opts SpinnerOptions) *Spinner {
	interval := opts.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Spinner{
		writer:   w,
		interval: interval,
		noColor:  opts.NoColor,
		message:  opts.Message,
		stop:     make(chan struct{}),
	}
}

// Start begins animating in the background
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.wg.Add(1)
	go s.animate()
}

// Stop halts the animation and clears the line. It is safe to call more than
// once and without Start.
func (s *Spinner) Stop() {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return
	}
	s.once.Do(func() {
		close(s.stop)
		s.wg.Wait()
		fmt.Fprint(s.writer, "\r\033[K")
	})
}

// Success stops the spinner and prints a green check line
func (s *Spinner) Success(message string) {
	s.Stop()
	paint(s.noColor, color.FgGreen, color.Bold).Fprintf(s.writer, "✓ %s\n", message)
}

// Error stops the spinner and prints a red failure line
func (s *Spinner) Error(message string) {
	s.Stop()
	paint(s.noColor, color.FgRed, color.Bold).Fprintf(s.writer, "❌ %s\n", message)
}

// UpdateMessage changes the text shown next to the spinner
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

func (s *Spinner) animate() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	cyan := paint(s.noColor, color.FgCyan)
	for frame := 0; ; frame = (frame + 1) % len(spinnerFrames) {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			msg := s.message
			s.mu.Unlock()
			cyan.Fprintf(s.writer, "\r%s %s", spinnerFrames[frame], msg)
		}
	}
}

// WithSpinner runs fn behind a spinner and reports its outcome. fn may
// update the spinner's message as it makes progress.
func WithSpinner(w io.Writer, message string, noColor bool, fn func(*Spinner) error) error {
	spinner := NewSpinner(w, SpinnerOptions{Message: message, NoColor: noColor})
	spinner.Start()
	if err := fn(spinner); err != nil {
		spinner.Error(message + " failed")
		return err
	}
	spinner.Success(message)
	return nil
}

// ProgressBar shows progress over a known number of samples
type ProgressBar struct {
	writer  io.Writer
	total   int
	current int
	width   int
	message string
	noColor bool
}

// ProgressBarOptions configures a progress bar
type ProgressBarOptions struct {
	Total   int
	Width   int // default 40
	Message string
	NoColor bool
}

// NewProgressBar creates a bar at zero
func NewProgressBar(w io.Writer, opts ProgressBarOptions) *ProgressBar {
	width := opts.Width
	if width <= 0 {
		width = 40
	}
	return &ProgressBar{writer: w, total: opts.Total, width: width, message: opts.Message, noColor: opts.NoColor}
}

// Add advances the bar by n, clamped to the total
func (p *ProgressBar) Add(n int) {
	p.current = min(p.current+n, p.total)
	p.render()
}

// Current returns the clamped progress count
func (p *ProgressBar) Current() int {
	return p.current
}

// Finish fills the bar, ends the line and prints message when non-empty
func (p *ProgressBar) Finish(message string) {
	p.current = p.total
	p.render()
	fmt.Fprintln(p.writer)
	if message != "" {
		paint(p.noColor, color.FgGreen, color.Bold).Fprintf(p.writer, "✓ %s\n", message)
	}
}

func (p *ProgressBar) render() {
	if p.total <= 0 {
		return
	}
	filled := p.width * p.current / p.total

	var bar strings.Builder
	bar.WriteString("[")
	paint(p.noColor, color.FgCyan).Fprint(&bar, strings.Repeat("█", filled))
	paint(p.noColor, color.FgHiBlack).Fprint(&bar, strings.Repeat("░", p.width-filled))
	bar.WriteString("]")

	suffix := ""
	if p.message != "" {
		suffix = " " + p.message
	}
	fmt.Fprintf(p.writer, "\r%s %3d%% (%d/%d)%s", bar.String(), 100*p.current/p.total, p.current, p.total, suffix)
}
