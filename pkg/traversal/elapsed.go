package traversal

import (
	"fmt"
	"time"
)

// FormatElapsed renders d as hours, minutes, seconds and milliseconds,
// dropping leading zero components: "1 h 2 min 3.004 s", "3.004 s", "4 ms".
func FormatElapsed(d time.Duration) string {
	ms := d.Milliseconds()
	hours := ms / (3600 * 1000)
	minutes := (ms / (60 * 1000)) % 60
	seconds := (ms / 1000) % 60
	millis := ms % 1000

	switch {
	case hours != 0:
		return fmt.Sprintf("%d h %d min %d.%03d s", hours, minutes, seconds, millis)
	case minutes != 0:
		return fmt.Sprintf("%d min %d.%03d s", minutes, seconds, millis)
	case seconds != 0:
		return fmt.Sprintf("%d.%03d s", seconds, millis)
	default:
		return fmt.Sprintf("%d ms", millis)
	}
}
