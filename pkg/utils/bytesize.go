package utils

import "fmt"

// ByteCountSI formats a byte count in SI units, e.g. 10485760 -> "10.5 MB".
// Negative counts are treated as zero.
func ByteCountSI(b int64) string {
	const unit = 1000
	if b < 0 {
		b = 0
	}
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "kMGTPE"[exp])
}
