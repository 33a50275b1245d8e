package format

import (
	"strconv"
	"time"
)

// FormatExecutionDuration formats a compute time reported by the endpoint.
// Times below one millisecond are shown in whole microseconds and times below
// one second in milliseconds with microsecond precision (1.5ms). Longer
// times are rounded to the millisecond.
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return strconv.FormatInt(d.Microseconds(), 10) + "µs"
	case d < time.Second:
		ms := float64(d.Microseconds()) / 1000
		return strconv.FormatFloat(ms, 'f', -1, 64) + "ms"
	}
	return d.Round(time.Millisecond).String()
}
