package numutil

import (
	"fmt"
	"strconv"
)

// Integer is any signed or unsigned integer type.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// IntWithCommas returns a string representation of an integer with commas.
//
// Example:
//
//	12345 -> "12,345"
func IntWithCommas[T Integer](i T) string {
	s := fmt.Sprintf("%d", i)

	sign := ""
	if s[0] == '-' {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}

	head := len(s) % 3
	if head == 0 {
		head = 3
	}
	out := s[:head]
	for j := head; j < len(s); j += 3 {
		out += "," + s[j:j+3]
	}
	return sign + out
}

// PerSecond returns how many operations per second n operations in the
// given number of nanoseconds represent, formatted with commas.
func PerSecond(n int, nanos int64) string {
	if nanos <= 0 {
		return "-"
	}
	rate := float64(n) / (float64(nanos) / 1e9)
	return IntWithCommas(int64(rate)) + "/s"
}

// Bytes formats a byte count with a binary unit suffix.
func Bytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
