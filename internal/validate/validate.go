package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reEmail  = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID     = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	rePreset = regexp.MustCompile(`^(today|thisWeek|thisMonth|thisYear)$`)
	reStatus = regexp.MustCompile(`^(pending|processing|shipped|delivered|cancelled)$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 50 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Qty parses a quantity form value with a floor of 1 and an abuse cap.
func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	if n > 50 {
		return 50
	}
	return n
}

// ID validates a simple resource identifier (product/category/supplier ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Preset validates an analytics date-range preset.
func Preset(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "today", true
	}
	return s, rePreset.MatchString(s)
}

// Status validates an order status value accepted by the upstream.
func Status(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reStatus.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 50 {
		return "", false
	}
	return s, true
}

// Page parses a page query param, defaulting to 1.
func Page(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Price validates an optional price filter: empty is allowed, otherwise a
// non-negative number.
func Price(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return "", false
	}
	return s, true
}

// Password enforces a simple length window for credential forms. Strength
// rules live upstream; the gateway only blocks obvious junk.
func Password(s string) bool {
	l := len(s)
	return l >= 8 && l <= 72
}
