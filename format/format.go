package format

import "fmt"

var numberScales = []struct {
	value  uint64
	suffix string
}{
	{1_000_000_000_000, "T"},
	{1_000_000_000, "B"},
	{1_000_000, "M"},
	{1_000, "K"},
}

// HumanNumber renders a count with a metric suffix, keeping three
// significant digits.
func HumanNumber(v uint64) string {
	for _, s := range numberScales {
		if v >= s.value {
			scaled := float64(v) / float64(s.value)
			switch {
			case scaled >= 100:
				return fmt.Sprintf("%.0f%s", scaled, s.suffix)
			case scaled >= 10:
				return fmt.Sprintf("%.1f%s", scaled, s.suffix)
			default:
				return fmt.Sprintf("%.2f%s", scaled, s.suffix)
			}
		}
	}
	return fmt.Sprintf("%d", v)
}
