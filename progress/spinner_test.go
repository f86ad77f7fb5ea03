package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestSpinnerString(t *testing.T) {
	s := &Spinner{message: "decoding tensors"}
	if got := s.String(); !strings.HasPrefix(got, "decoding tensors ") {
		t.Errorf("unexpected spinner line %q", got)
	}

	s.Stop()
	if got := s.String(); got != "decoding tensors " {
		t.Errorf("expected bare message after stop, got %q", got)
	}
}

func TestProgressStop(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf)
	p.Add(NewBar("packing", 10, 10))

	if !p.Stop() {
		t.Error("first Stop should report an active renderer")
	}
	if p.Stop() {
		t.Error("second Stop should be a no-op")
	}
	if !strings.Contains(buf.String(), "100%") {
		t.Errorf("final render missing from output: %q", buf.String())
	}
}
