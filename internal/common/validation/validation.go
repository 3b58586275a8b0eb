// internal/common/validation/validation.go
package validation

import (
	"regexp"
	"strings"
)

// Indian mobile numbers: optional +91/0 prefix, then 10 digits starting 6-9.
var phonePattern = regexp.MustCompile(`^(\+91|0)?[6-9]\d{9}$`)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidatePhone checks an Indian mobile number. Spaces and dashes are
// stripped before matching.
func ValidatePhone(value string) bool {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(value)
	return phonePattern.MatchString(cleaned)
}

// ValidateEmail does a light-weight format check.
func ValidateEmail(value string) bool {
	return emailPattern.MatchString(value)
}
