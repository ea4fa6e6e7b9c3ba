package utils

import (
	"regexp"
	"strings"
)

var nonDigitRegexp = regexp.MustCompile(`\D`)

// NormalizePhone оставляет только цифры.
func NormalizePhone(phone string) string {
	return nonDigitRegexp.ReplaceAllString(strings.TrimSpace(phone), "")
}
