package service

import "strings"

const maskChar = '*'

// MaskCardNumber keeps the last four digits and masks every other digit.
// Separators are stripped first.
func MaskCardNumber(number string) string {
	digits := onlyDigits(number)
	if len(digits) <= 4 {
		return digits
	}
	return strings.Repeat(string(maskChar), len(digits)-4) + digits[len(digits)-4:]
}

// LastFour returns the trailing four digits of number.
func LastFour(number string) string {
	digits := onlyDigits(number)
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

func onlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
