package progress

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/tensorstat/tensorstat/format"
)

type bucket struct {
	updated time.Time
	value   int64
}

type Bar struct {
	message      string
	messageWidth int

	maxValue     int64
	initialValue int64
	currentValue int64

	started time.Time
	stopped time.Time

	maxBuckets int
	buckets    []bucket
}

func NewBar(message string, maxValue, initialValue int64) *Bar {
	b := Bar{
		message:      message,
		messageWidth: -1,
		maxValue:     maxValue,
		initialValue: initialValue,
		currentValue: initialValue,
		started:      time.Now(),
		maxBuckets:   10,
	}

	if initialValue >= maxValue {
		b.stopped = time.Now()
	}

	return &b
}

// formatDuration limits the rendering of a time.Duration to 2 units
func formatDuration(d time.Duration) string {
	if d >= 100*time.Hour {
		return "99h+"
	}

	if d >= time.Hour {
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}

	return d.Round(time.Second).String()
}

func (b *Bar) String() string {
	termWidth, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil {
		termWidth = defaultTermWidth
	}

	var pre, mid, suf strings.Builder

	if b.message != "" {
		message := strings.TrimSpace(b.message)
		if b.messageWidth > 0 && len(message) > b.messageWidth {
			message = message[:b.messageWidth]
		}

		fmt.Fprintf(&pre, "%s", message)
		if padding := b.messageWidth - pre.Len(); padding > 0 {
			pre.WriteString(repeat(" ", padding))
		}

		pre.WriteString(" ")
	}

	fmt.Fprintf(&pre, "%3.0f%% ", math.Floor(b.percent()))

	fmt.Fprintf(&suf, "(%s/%s", format.HumanBytes(b.currentValue), format.HumanBytes(b.maxValue))

	rate := b.rate()
	if b.stopped.IsZero() && rate > 0 {
		fmt.Fprintf(&suf, ", %s/s", format.HumanBytes(int64(rate)))
	}

	suf.WriteString(")")

	var timing string
	if b.stopped.IsZero() && rate > 0 {
		remaining := time.Duration(float64(b.maxValue-b.currentValue)/rate) * time.Second
		timing = fmt.Sprintf("[%s:%s]", formatDuration(time.Since(b.started)), formatDuration(remaining))
	}

	// 44 is the maximum width for the stats on the right of the progress bar
	if pad := 44 - suf.Len() - len(timing); pad > 0 {
		suf.WriteString(repeat(" ", pad))
	}

	suf.WriteString(timing)

	// add 3 extra spaces: 2 boundary characters and 1 space at the end
	f := termWidth - pre.Len() - suf.Len() - 3
	n := int(float64(f) * b.percent() / 100)

	if f > 0 {
		mid.WriteString("▕")
		mid.WriteString(repeat("█", n))
		mid.WriteString(repeat(" ", f-n))
		mid.WriteString("▏")
	}

	return pre.String() + mid.String() + suf.String()
}

func (b *Bar) Set(value int64) {
	if !b.stopped.IsZero() {
		return
	}

	if value >= b.maxValue {
		value = b.maxValue
		b.stopped = time.Now()
	}

	b.currentValue = value

	// throttle bucket updates to once per second
	if len(b.buckets) == 0 || time.Since(b.buckets[len(b.buckets)-1].updated) >= time.Second {
		b.buckets = append(b.buckets, bucket{updated: time.Now(), value: value})
	}

	for len(b.buckets) > b.maxBuckets {
		b.buckets = b.buckets[1:]
	}
}

func (b *Bar) percent() float64 {
	if b.maxValue > 0 {
		return float64(b.currentValue) / float64(b.maxValue) * 100
	}

	return 0
}

// rate returns the transfer rate in bytes per second, averaged over the
// whole run once the bar has stopped and over the recent buckets otherwise.
func (b *Bar) rate() float64 {
	if !b.stopped.IsZero() {
		if elapsed := b.stopped.Sub(b.started).Seconds(); elapsed > 0 {
			return float64(b.currentValue-b.initialValue) / elapsed
		}
		return 0
	}

	if len(b.buckets) >= 2 {
		first, last := b.buckets[0], b.buckets[len(b.buckets)-1]
		if elapsed := last.updated.Sub(first.updated).Seconds(); elapsed > 0 {
			return float64(last.value-first.value) / elapsed
		}
	}

	return 0
}

// repeat is strings.Repeat that tolerates a negative count.
func repeat(s string, n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(s, n)
}
