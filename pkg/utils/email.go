package utils

import "strings"

// NormalizeEmail is applied before every read or write of an email.
func NormalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
