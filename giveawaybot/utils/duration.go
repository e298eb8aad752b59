package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var durationToken = regexp.MustCompile(`^(\d+)([a-z]*)`)

var unitSeconds = map[string]int64{
	"":        1,
	"s":       1,
	"sec":     1,
	"secs":    1,
	"second":  1,
	"seconds": 1,
	"m":       60,
	"min":     60,
	"mins":    60,
	"minute":  60,
	"minutes": 60,
	"h":       3600,
	"hr":      3600,
	"hrs":     3600,
	"hour":    3600,
	"hours":   3600,
	"d":       86400,
	"day":     86400,
	"days":    86400,
	"w":       604800,
	"week":    604800,
	"weeks":   604800,
}

// ParseDuration parses human time strings like "30s", "2h30m", "3 days and
// 4 hours" or a bare number of seconds. It is stricter than it looks: every
// token must be a number followed by a known unit, otherwise the whole input
// is rejected.
func ParseDuration(input string) (time.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.ReplaceAll(s, "and", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, fmt.Errorf("empty duration %q", input)
	}

	var total int64
	for len(s) > 0 {
		match := durationToken.FindStringSubmatch(s)
		if match == nil {
			return 0, fmt.Errorf("invalid duration %q", input)
		}
		value, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", input, err)
		}
		mult, ok := unitSeconds[match[2]]
		if !ok {
			return 0, fmt.Errorf("unknown time unit %q in %q", match[2], input)
		}
		total += value * mult
		s = s[len(match[0]):]
	}

	if total <= 0 {
		return 0, fmt.Errorf("non-positive duration %q", input)
	}
	return time.Duration(total) * time.Second, nil
}
