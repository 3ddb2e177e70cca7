package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

const (
	VideoTypeShort      = "short"
	VideoTypeFullLength = "full_length"

	// Shorts threshold: anything at or under 3 minutes counts as short-form.
	ShortsThresholdSeconds = 180
)

// ErrMalformedDuration is returned when a duration token does not match
// the P[nD]T[nH][nM][nS] pattern at all. There is no partial parsing.
var ErrMalformedDuration = errors.New("malformed duration token")

var durationPattern = regexp.MustCompile(`^P(?:(\d+)D)?T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseDuration converts an ISO 8601 duration token like "PT12M34S" or
// "P1DT2H" into total seconds. All components are optional.
func ParseDuration(token string) (int, error) {
	match := durationPattern.FindStringSubmatch(token)
	if match == nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedDuration, token)
	}

	days := atoiOrZero(match[1])
	hours := atoiOrZero(match[2])
	minutes := atoiOrZero(match[3])
	seconds := atoiOrZero(match[4])

	return days*86400 + hours*3600 + minutes*60 + seconds, nil
}

// FormatDuration renders seconds as "H:MM:SS", or "M:SS" when under an
// hour. No leading zero on the leading unit, two digits on the rest.
func FormatDuration(totalSeconds int) string {
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// ClassifyVideoType returns "short" for durations at or under the
// threshold, "full_length" otherwise.
func ClassifyVideoType(durationSeconds int) string {
	if durationSeconds <= ShortsThresholdSeconds {
		return VideoTypeShort
	}
	return VideoTypeFullLength
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}
