// Package sizefmt implements the byte-count unit grammar used across the
// CLI surface: parsing --file-limit/--size-limit suffixes and rendering
// --human-readable output and progress-line sizes (spec.md §6).
package sizefmt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// units lists the suffix letters in ascending order, matching the binary
// prefixes (B, K, M, G, T, P, E, Z, Y) spec.md §6 names.
var units = []string{"B", "K", "M", "G", "T", "P", "E", "Z", "Y"}

var suffixPattern = regexp.MustCompile(`^([0-9]+(\.[0-9]+)?)([A-Za-z]+)?$`)

// ToHuman renders n using the largest unit whose multiplier is strictly
// less than n, with one decimal place, per spec.md §6. Values under 1K are
// rendered as a bare byte count with no decimal, matching du-family tools.
func ToHuman(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%dB", n)
	}
	div, idx := int64(1024), 0
	for n/div >= 1024 && idx < len(units)-2 {
		div *= 1024
		idx++
	}
	return fmt.Sprintf("%.1f%s", float64(n)/float64(div), units[idx+1])
}

// FromHuman parses a size string against the unit grammar
// ^([0-9]+(\.[0-9]+)?)([A-Za-z]+)?$, defaulting to bytes when no suffix is
// given (spec.md §6). Unit letters are case-insensitive; only the first
// letter is significant, so "K" and "KB" parse identically.
func FromHuman(s string) (int64, error) {
	s = strings.TrimSpace(s)
	m := suffixPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("sizefmt: invalid size %q", s)
	}
	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("sizefmt: invalid size %q: %w", s, err)
	}

	suffix := strings.ToUpper(m[3])
	if suffix == "" {
		return int64(num), nil
	}

	idx := -1
	for i, u := range units {
		if strings.HasPrefix(suffix, u) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return 0, fmt.Errorf("sizefmt: unknown unit suffix %q", m[3])
	}

	mult := 1.0
	for i := 0; i < idx; i++ {
		mult *= 1024
	}
	return int64(num * mult), nil
}
