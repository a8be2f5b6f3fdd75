// internal/datefmt/format.go
//
// Token-substitution date formatter.
//
// Context
// -------
// Widgets render timestamps through a tiny pattern language instead of a
// locale library.  A pattern is plain text with zero or more tokens:
//
//	${year}          2024
//	${month}         March
//	${month:number}  03
//	${month:short}   Mar
//	${day}           7        ${day:0}       07
//	${hour}          9        ${hour:24}     9        ${hour:24:0}  09
//	${hour:12}       9        ${hour:12:0}   09
//	${minute}        5        ${minute:0}    05
//	${ampm}          am       ${ampm:upper}  AM
//
// Notes
// -----
//   - Tokens are matched as literal substrings.  A token's value is
//     computed once per call and every occurrence gets that same value.
//   - Anything that is not a token is copied through unchanged.
//   - Oxford commas, two spaces after periods.
package datefmt

import (
	"strconv"
	"strings"
	"time"
)

// DefaultPattern is used when a caller has no preference.
const DefaultPattern = "${month:short} ${day}, ${year} ${hour:12}:${minute:0}${ampm}"

type token struct {
	lit string
	fn  func(time.Time) string
}

// tokens is walked in order; each entry is a distinct literal, so no token
// is a substring of another and the order only affects cost.
var tokens = []token{
	{"${year}", func(t time.Time) string { return strconv.Itoa(t.Year()) }},

	{"${month}", func(t time.Time) string { return t.Month().String() }},
	{"${month:number}", func(t time.Time) string { return pad2(int(t.Month())) }},
	{"${month:short}", func(t time.Time) string { return t.Month().String()[:3] }},

	{"${day}", func(t time.Time) string { return strconv.Itoa(t.Day()) }},
	{"${day:0}", func(t time.Time) string { return pad2(t.Day()) }},

	{"${hour}", func(t time.Time) string { return strconv.Itoa(t.Hour()) }},
	{"${hour:24}", func(t time.Time) string { return strconv.Itoa(t.Hour()) }},
	{"${hour:12}", func(t time.Time) string { return strconv.Itoa(Hour12(t.Hour())) }},
	{"${hour:24:0}", func(t time.Time) string { return pad2(t.Hour()) }},
	{"${hour:12:0}", func(t time.Time) string { return pad2(Hour12(t.Hour())) }},

	{"${minute}", func(t time.Time) string { return strconv.Itoa(t.Minute()) }},
	{"${minute:0}", func(t time.Time) string { return pad2(t.Minute()) }},

	{"${ampm}", meridiem},
	{"${ampm:upper}", func(t time.Time) string { return strings.ToUpper(meridiem(t)) }},
}

// Format renders t using pattern.  An empty pattern yields an empty string;
// callers wanting the default must pass DefaultPattern explicitly.
func Format(t time.Time, pattern string) string {
	out := pattern
	for _, tok := range tokens {
		if !strings.Contains(out, tok.lit) {
			continue
		}
		out = strings.ReplaceAll(out, tok.lit, tok.fn(t))
	}
	return out
}

// Timestamp formats unix seconds in the local zone.  A zero timestamp means
// "unknown" and renders as the empty string.  An empty pattern falls back to
// DefaultPattern.
func Timestamp(ts int64, pattern string) string {
	if ts == 0 {
		return ""
	}
	if pattern == "" {
		pattern = DefaultPattern
	}
	return Format(time.Unix(ts, 0), pattern)
}

// Hour12 maps a 24-hour clock hour onto the 12-hour dial: 0 → 12, 13 → 1.
func Hour12(h int) int {
	switch {
	case h == 0:
		return 12
	case h > 12:
		return h - 12
	}
	return h
}

func meridiem(t time.Time) string {
	if t.Hour() >= 12 {
		return "pm"
	}
	return "am"
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
