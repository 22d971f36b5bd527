package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/athabascarecon/ctrecon/internal/reconerr"
)

func parseBool(key, value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	default:
		return false, reconerr.NewConfigurationError(key, fmt.Errorf("invalid boolean %q", value))
	}
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, reconerr.NewConfigurationError(key, fmt.Errorf("invalid integer %q: %w", value, err))
	}
	return n, nil
}

func parseFloat(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, reconerr.NewConfigurationError(key, fmt.Errorf("invalid number %q: %w", value, err))
	}
	return f, nil
}

func splitTuple(key, value string, n int) ([]string, error) {
	parts := strings.Split(value, ",")
	if len(parts) != n {
		return nil, reconerr.NewConfigurationError(key, fmt.Errorf("expected %d comma-separated values, got %d in %q", n, len(parts), value))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}

func parseIntTuple(key, value string, n int) ([]int, error) {
	parts, err := splitTuple(key, value, n)
	if err != nil {
		return nil, err
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := parseInt(key, p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseFloatTuple(key, value string, n int) ([]float64, error) {
	parts, err := splitTuple(key, value, n)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := parseFloat(key, p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// parseMemory parses a Software.MaximumVolumeMemory value: either the
// literal "Automatic" (resolved by the caller via internal/sysmem) or
// "<N>MB"/"<N>GB", case-insensitive, with or without a space.
func parseMemory(key, value string) (automatic bool, bytes int64, err error) {
	trimmed := strings.TrimSpace(value)
	if strings.EqualFold(trimmed, "Automatic") {
		return true, 0, nil
	}

	upper := strings.ToUpper(trimmed)
	var factor int64
	var numPart string
	switch {
	case strings.HasSuffix(upper, "GB"):
		factor = 1024 * 1024 * 1024
		numPart = trimmed[:len(trimmed)-2]
	case strings.HasSuffix(upper, "MB"):
		factor = 1024 * 1024
		numPart = trimmed[:len(trimmed)-2]
	default:
		return false, 0, reconerr.NewConfigurationError(key, fmt.Errorf("invalid units for %q: must specify MB or GB", value))
	}

	n, convErr := strconv.ParseInt(strings.TrimSpace(numPart), 10, 64)
	if convErr != nil {
		return false, 0, reconerr.NewConfigurationError(key, fmt.Errorf("unable to parse numerical value of %q: %w", value, convErr))
	}
	if n <= 0 {
		return false, 0, reconerr.NewConfigurationError(key, fmt.Errorf("%q must be a positive amount", value))
	}
	return false, n * factor, nil
}
