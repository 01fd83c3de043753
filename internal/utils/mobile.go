package utils

import (
	"regexp"
	"strings"
)

// DefaultMobilePattern accepts E.164 style numbers with an optional leading +.
const DefaultMobilePattern = `^\+?[1-9]\d{6,14}$`

// MobileValidator checks mobile numbers against a configured pattern.
type MobileValidator struct {
	re *regexp.Regexp
}

func NewMobileValidator(pattern string) (*MobileValidator, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultMobilePattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &MobileValidator{re: re}, nil
}

// NormalizeMobile returns the canonical form of a mobile: whitespace removed
// and no leading +. "+1 555 123 4567" and "15551234567" are one subscriber.
func NormalizeMobile(mobile string) string {
	return strings.TrimPrefix(strings.Join(strings.Fields(mobile), ""), "+")
}

func (v *MobileValidator) IsMobile(mobile string) bool {
	return mobile != "" && v.re.MatchString(mobile)
}
