package utils

import (
	"regexp"
)

var pickupTimePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func IsValidValueOfConstant(value string, constantValues []string) bool {
	for _, r := range constantValues {
		if r == value {
			return true
		}
	}
	return false
}

// IsValidPickupTime accepts a 24h HH:MM clock time.
func IsValidPickupTime(value string) bool {
	return pickupTimePattern.MatchString(value)
}
