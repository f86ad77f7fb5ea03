package progress

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

const (
	renderInterval = 100 * time.Millisecond

	defaultTermWidth  = 80
	defaultTermHeight = 24
)

// State is a single line of live progress output.
type State interface {
	String() string
}

// Progress redraws its states in place on a terminal until stopped.
type Progress struct {
	mu sync.Mutex

	// buffered so each redraw reaches the terminal as one write
	w *bufio.Writer

	drawn  int
	ticker *time.Ticker
	states []State
}

func NewProgress(w io.Writer) *Progress {
	p := &Progress{w: bufio.NewWriter(w), ticker: time.NewTicker(renderInterval)}
	go p.run(p.ticker)
	return p
}

// Add appends a state below the ones already rendering.
func (p *Progress) Add(state State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.states = append(p.states, state)
}

func (p *Progress) run(t *time.Ticker) {
	// hide cursor
	fmt.Fprint(p.w, "\033[?25l")
	for range t.C {
		p.render()
	}
}

func (p *Progress) render() {
	_, termHeight, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil {
		termHeight = defaultTermHeight
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprint(p.w, "\033[?2026h")
	defer fmt.Fprint(p.w, "\033[?2026l")

	for i := 0; i < p.drawn-1; i++ {
		fmt.Fprint(p.w, "\033[A")
	}
	fmt.Fprint(p.w, "\033[1G")

	visible := min(len(p.states), termHeight)
	for i := len(p.states) - visible; i < len(p.states); i++ {
		fmt.Fprint(p.w, p.states[i].String(), "\033[K")
		if i < len(p.states)-1 {
			fmt.Fprint(p.w, "\n")
		}
	}

	p.drawn = len(p.states)
	p.w.Flush()
}

func (p *Progress) halt() bool {
	for _, state := range p.states {
		if s, ok := state.(*Spinner); ok {
			s.Stop()
		}
	}

	if p.ticker == nil {
		return false
	}
	p.ticker.Stop()
	p.ticker = nil
	p.render()
	return true
}

// Stop ends rendering, leaving the final states on screen.
func (p *Progress) Stop() bool {
	stopped := p.halt()
	if stopped {
		fmt.Fprintln(p.w)
	}

	// show cursor
	fmt.Fprint(p.w, "\033[?25h")
	p.w.Flush()
	return stopped
}

// StopAndClear ends rendering and erases the progress lines.
func (p *Progress) StopAndClear() bool {
	stopped := p.halt()
	if stopped {
		for i := 0; i < p.drawn-1; i++ {
			fmt.Fprint(p.w, "\033[A")
		}
		fmt.Fprint(p.w, "\033[2K", "\033[1G")
	}

	// show cursor
	fmt.Fprint(p.w, "\033[?25h")
	p.w.Flush()
	return stopped
}
