package ui

import (
	"fmt"
	"math"
	"strconv"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// Units formats a duration or time value to at most two decimals, without
// trailing zeros. Sums like 0.1+0.2 print as "0.3".
func Units(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// CriticalMarker returns the marker shown next to critical tasks.
func CriticalMarker(critical bool) string {
	if critical {
		return BoldYellow("⚡")
	}
	return " "
}

// Slack colors a slack value right-aligned to width: red when critical,
// yellow when within twice the tolerance, green otherwise.
func Slack(slack, tolerance float64, width int) string {
	s := fmt.Sprintf("%*s", width, Units(slack))
	switch {
	case slack <= tolerance:
		return BoldRed(s)
	case slack <= 2*tolerance:
		return Yellow(s)
	default:
		return Green(s)
	}
}

// WaveHeader returns the heading for a wave of tasks starting together.
func WaveHeader(index int, start float64, critical bool) string {
	h := fmt.Sprintf("%s %d %s", BoldWhite("WAVE"), index+1, Dim("@ "+Units(start)))
	if critical {
		h += " " + BoldYellow("critical")
	}
	return h
}
