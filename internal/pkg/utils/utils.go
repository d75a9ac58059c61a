package utils

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

// ErrNotANumber is returned by the numeric parsers for invalid input.
var ErrNotANumber = errors.New("not a non-negative integer")

// ConvertPersianToEnglish converts Persian/Arabic numerals to English.
func ConvertPersianToEnglish(s string) string {
	var result strings.Builder
	for _, r := range s {
		switch {
		case r >= '۰' && r <= '۹':
			result.WriteRune(r - '۰' + '0')
		case r >= '٠' && r <= '٩':
			result.WriteRune(r - '٠' + '0')
		default:
			result.WriteRune(r)
		}
	}
	return result.String()
}

// ParseUint parses an id suffix such as the "12" in "panel_12".
func ParseUint(s string) (uint, bool) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}

// ParseNonNegativeInt accepts a plain integer >= 0, Persian digits included.
func ParseNonNegativeInt(s string) (int, error) {
	s = strings.TrimSpace(ConvertPersianToEnglish(s))
	if !IsNumeric(s) {
		return 0, ErrNotANumber
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, ErrNotANumber
	}
	return v, nil
}

// ParsePrice accepts digits with thousands separators, spaces and a
// trailing currency word. Anything else, including a minus sign, is rejected.
func ParsePrice(s string) (int64, error) {
	s = ConvertPersianToEnglish(s)
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "تومان"))
	s = strings.NewReplacer(",", "", "٬", "", "،", "", " ", "", "_", "").Replace(s)
	if !IsNumeric(s) {
		return 0, ErrNotANumber
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, ErrNotANumber
	}
	return v, nil
}

// FormatNumber adds comma separators to a number.
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var result strings.Builder
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(c)
	}
	if neg {
		return "-" + result.String()
	}
	return result.String()
}

// FormatPrice renders a price rounded to whole toman with separators.
func FormatPrice(p float64) string {
	return FormatNumber(int64(math.Round(p)))
}

// IsNumeric checks if a string consists of ASCII or Unicode digits only.
func IsNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// NormalizePanelURL trims the input, prefixes http:// when no scheme is
// given and strips a trailing slash. ok is false when the result is not
// an http(s) URL with a host.
func NormalizePanelURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, " \t\n") {
		return "", false
	}
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		if strings.Contains(raw, "://") {
			return "", false
		}
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return strings.TrimRight(u.String(), "/"), true
}
