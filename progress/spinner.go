package progress

import (
	"strings"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner is an indeterminate progress line with a fixed message.
type Spinner struct {
	message string
	frame   int
	stopped time.Time
}

func NewSpinner(message string) *Spinner {
	s := &Spinner{message: strings.TrimSpace(message)}
	go s.spin()
	return s
}

func (s *Spinner) String() string {
	var sb strings.Builder
	if s.message != "" {
		sb.WriteString(s.message)
		sb.WriteString(" ")
	}
	if s.stopped.IsZero() {
		sb.WriteString(spinnerFrames[s.frame])
		sb.WriteString(" ")
	}
	return sb.String()
}

func (s *Spinner) spin() {
	ticker := time.NewTicker(renderInterval)
	defer ticker.Stop()
	for range ticker.C {
		if !s.stopped.IsZero() {
			return
		}
		s.frame = (s.frame + 1) % len(spinnerFrames)
	}
}

func (s *Spinner) Stop() {
	if s.stopped.IsZero() {
		s.stopped = time.Now()
	}
}
