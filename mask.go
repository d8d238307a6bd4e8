package mapstream

import (
	"fmt"
	"strings"
	"unicode"
)

// MaskType names a value format with a known masking rule.
type MaskType string

const (
	MaskSSN   MaskType = "ssn"   // 123-45-6789 -> ***-**-6789
	MaskEmail MaskType = "email" // alice@example.com -> a***@example.com
	MaskPhone MaskType = "phone" // (555) 123-4567 -> (***) ***-4567
	MaskCard  MaskType = "card"  // 4111111111111111 -> ************1111
	MaskName  MaskType = "name"  // John Smith -> J*** S****
)

// maskers maps each MaskType to its rule.
var maskers = map[MaskType]func(string) string{
	MaskSSN:   maskSSN,
	MaskEmail: maskEmail,
	MaskPhone: maskPhone,
	MaskCard:  maskCard,
	MaskName:  maskName,
}

// Mask applies the rule for t to s.
func Mask(t MaskType, s string) (string, error) {
	fn, ok := maskers[t]
	if !ok {
		return "", newTransformError(ErrMask, "mask", "", fmt.Errorf("unknown mask type %q", t))
	}
	return fn(s), nil
}

func maskSSN(s string) string {
	digits := digitsOf(s)
	if len(digits) < 4 {
		return stars(s)
	}
	return "***-**-" + digits[len(digits)-4:]
}

func maskEmail(s string) string {
	at := strings.LastIndex(s, "@")
	if at < 1 {
		return stars(s)
	}
	return s[:1] + "***" + s[at:]
}

func maskPhone(s string) string {
	digits := digitsOf(s)
	if len(digits) < 4 {
		return stars(s)
	}
	last4 := digits[len(digits)-4:]
	switch {
	case strings.HasPrefix(s, "(") && len(digits) >= 10:
		return "(***) ***-" + last4
	case len(digits) >= 10:
		return "***-***-" + last4
	default:
		return "***-" + last4
	}
}

func maskCard(s string) string {
	digits := digitsOf(s)
	if len(digits) < 4 {
		return stars(s)
	}
	last4 := digits[len(digits)-4:]
	for _, sep := range []string{" ", "-"} {
		if strings.Contains(s, sep) {
			groups := make([]string, (len(digits)-1)/4)
			for i := range groups {
				groups[i] = "****"
			}
			return strings.Join(append(groups, last4), sep)
		}
	}
	return strings.Repeat("*", len(digits)-4) + last4
}

func maskName(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		words[i] = string(r[0]) + strings.Repeat("*", len(r)-1)
	}
	return strings.Join(words, " ")
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stars(s string) string {
	return strings.Repeat("*", len([]rune(s)))
}
