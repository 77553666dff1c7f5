package astro

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// numberPrefix matches the leading decimal number of a string, the same
	// portion a lenient float parser would consume.
	numberPrefix = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

	// raPattern matches "5h 55m 10.3s" style right ascension text.
	raPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)h\s*(\d+(?:\.\d+)?)m\s*(\d+(?:\.\d+)?)s`)

	// decSeparators turns degree/arcminute/arcsecond markers into whitespace
	// and splits signs off their neighbors.
	decSeparators = strings.NewReplacer(
		"°", " ", "º", " ",
		"′", " ", "’", " ", "'", " ",
		"″", " ", "”", " ", `"`, " ",
		"+", " +",
		"-", " -",
	)
)

// ParseNumber parses the leading numeric portion of s ("0.5 var" → 0.5).
// Leading whitespace is skipped. It reports false when no finite number
// starts the string.
func ParseNumber(s string) (float64, bool) {
	match := numberPrefix.FindString(strings.TrimLeft(s, " \t\r\n"))
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// ParseRAHours parses right ascension text of the form "<h>h <m>m <s>s"
// into decimal hours. Matching is case-insensitive and tolerates missing
// whitespace between components.
func ParseRAHours(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	m := raPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	var parts [3]float64
	for i := range parts {
		v, ok := ParseNumber(m[i+1])
		if !ok {
			return 0, false
		}
		parts[i] = v
	}
	return parts[0] + parts[1]/60 + parts[2]/3600, true
}

// ParseDecDegrees parses declination text such as "+7° 24′ 25″" or
// "-16 42 58" into signed decimal degrees. At least three numeric tokens are
// required; the sign comes from the first token.
func ParseDecDegrees(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	tokens := strings.Fields(decSeparators.Replace(text))
	if len(tokens) < 3 {
		return 0, false
	}

	sign := 1.0
	if strings.HasPrefix(tokens[0], "-") {
		sign = -1
	}

	deg, ok := ParseNumber(tokens[0])
	if !ok {
		return 0, false
	}
	min, ok := ParseNumber(tokens[1])
	if !ok {
		return 0, false
	}
	sec, ok := ParseNumber(tokens[2])
	if !ok {
		return 0, false
	}

	return sign * (math.Abs(deg) + min/60 + sec/3600), true
}
