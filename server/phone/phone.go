// Package phone turns the phone numbers people type into the E.164 form the
// SMS gateway accepts.
package phone

import (
	"errors"
	"strings"
)

// DefaultCountryCode is used when no country code is configured
const DefaultCountryCode = "91"

// ErrInvalidPhone is returned for any input that doesn't match a known shape
var ErrInvalidPhone = errors.New("invalid phone number")

var separators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

// Normalize converts 'raw' into an E.164 string, e.g.
//	"9876543210"     -> "+919876543210"
//	"919876543210"   -> "+919876543210"
//	"09876543210"    -> "+919876543210"
//	"+919876543210"  -> "+919876543210"
//
// A bare 10 digit number is always treated as domestic. 11 and 12 digit
// numbers that don't carry the trunk prefix or 'countryCode' are rejected
// rather than guessed at.
func Normalize(raw, countryCode string) (string, error) {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}

	cleaned := separators.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return "", ErrInvalidPhone
	}

	digits := strings.TrimPrefix(cleaned, "+")
	if isDigits(digits) {
		switch {
		case len(digits) == 10:
			return "+" + countryCode + digits, nil
		case len(digits) == 12 && strings.HasPrefix(digits, countryCode):
			return "+" + digits, nil
		case len(digits) == 11 && digits[0] == '0':
			return "+" + countryCode + digits[1:], nil
		}
	}

	// Already E.164 shaped, country and length are not checked
	if strings.HasPrefix(cleaned, "+") && isDigits(cleaned[1:]) {
		return cleaned, nil
	}

	return "", ErrInvalidPhone
}

// IsValid reports whether 'raw' can be normalized
func IsValid(raw, countryCode string) bool {
	_, err := Normalize(raw, countryCode)
	return err == nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
