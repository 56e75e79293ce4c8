// Package sanitize provides input sanitizers for user-submitted form values.
// Every canonical field passes through exactly one of these before any
// transform or routing decision sees it.
package sanitize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// htmlTagRegex matches HTML tags
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	numberRegex  = regexp.MustCompile(`-?\d+(\.\d+)?`)
)

// StripHTML removes all HTML tags from a string, making it safe for text-only display.
// This is a defense-in-depth measure; callers should also escape output.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	// Decode common HTML entities
	result = strings.ReplaceAll(result, "&lt;", "<")
	result = strings.ReplaceAll(result, "&gt;", ">")
	result = strings.ReplaceAll(result, "&amp;", "&")
	result = strings.ReplaceAll(result, "&quot;", "\"")
	result = strings.ReplaceAll(result, "&#39;", "'")
	// Re-strip after entity decode to catch encoded tags
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text sanitizes a single-line text field: strips HTML and collapses
// internal whitespace runs to single spaces.
func Text(s string) string {
	fields := strings.Fields(StripHTML(s))
	return strings.Join(fields, " ")
}

// Textarea sanitizes a multi-line text field. Newlines are preserved;
// HTML is stripped from each line.
func Textarea(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(StripHTML(line), " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Email lowercases and validates an email address. Returns the empty
// string when the value does not look like an address at all.
func Email(s string) string {
	v := strings.ToLower(strings.TrimSpace(s))
	if !emailRegex.MatchString(v) {
		return ""
	}
	return v
}

// URL keeps http(s) URLs only. Anything else (javascript:, data:, bare
// words) is dropped.
func URL(s string) string {
	v := strings.TrimSpace(s)
	lower := strings.ToLower(v)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return v
	}
	return ""
}

// Number extracts the first decimal number from the value, tolerating
// currency symbols and thousands separators ("$450,000" -> "450000").
func Number(s string) string {
	cleaned := strings.NewReplacer(",", "", " ", "").Replace(s)
	match := numberRegex.FindString(cleaned)
	if match == "" {
		return ""
	}
	if _, err := strconv.ParseFloat(match, 64); err != nil {
		return ""
	}
	return match
}

// Integer extracts the first whole number from the value, truncating any
// fractional part.
func Integer(s string) string {
	v := Number(s)
	if v == "" {
		return ""
	}
	if dot := strings.IndexByte(v, '.'); dot >= 0 {
		v = v[:dot]
	}
	if v == "" || v == "-" {
		return ""
	}
	return v
}
