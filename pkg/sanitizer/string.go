// Package sanitizer normalizes untrusted input before validation or storage.
package sanitizer

import (
	"regexp"
	"strings"
)

var dotRegex = regexp.MustCompile(`\.{2,}`)

// NormalizeEmail lowercases and trims an email address and consolidates
// consecutive dots in the local part. Comparison and storage must always
// use the normalized form.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	local := parts[0]
	domain := parts[1]

	local = dotRegex.ReplaceAllString(local, ".")
	local = strings.Trim(local, ".")

	return local + "@" + domain
}

// CollapseSpaces trims a string and collapses internal whitespace runs to a
// single space. Used for display names.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
