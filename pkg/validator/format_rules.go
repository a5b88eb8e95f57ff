package validator

import (
	"net/mail"
	"regexp"
	"strings"
)

var personNameRegex = regexp.MustCompile(`^[a-zA-Z\s]+$`)

func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if strings.TrimSpace(value) == "" {
				return false
			}

			addr, err := mail.ParseAddress(value)
			if err != nil {
				return false
			}

			// mail.ParseAddress accepts display names; reject anything that
			// is not a bare address.
			if addr.Address != value {
				return false
			}

			parts := strings.Split(addr.Address, "@")
			if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
				return false
			}

			// Require a dot in the domain for typical web use.
			return strings.Contains(parts[1], ".")
		},
		Error: ValidationError{
			Field:   field,
			Message: "must be a valid email address",
		},
	}
}

// PersonName validates a display name: letters and spaces only.
func PersonName(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return personNameRegex.MatchString(value)
		},
		Error: ValidationError{
			Field:   field,
			Message: "can only contain letters and spaces",
		},
	}
}
