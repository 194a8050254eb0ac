package util

import "strings"

// ValidISIN reports whether s is a structurally valid ISIN: two country
// letters, nine alphanumerics and a Luhn check digit computed over the
// letter-expanded digit string.
func ValidISIN(s string) bool {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 12 {
		return false
	}
	for i := 0; i < 2; i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}

	// Expand letters to two-digit values (A=10 .. Z=35).
	var digits []int
	for i := 0; i < 12; i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits = append(digits, int(c-'0'))
		case c >= 'A' && c <= 'Z':
			v := int(c-'A') + 10
			digits = append(digits, v/10, v%10)
		default:
			return false
		}
	}

	// Luhn: double every second digit from the right.
	sum := 0
	double := true
	for i := len(digits) - 2; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	check := (10 - sum%10) % 10
	return check == digits[len(digits)-1]
}
