package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inkwellhq/inkwell/pkg/sanitizer"
)

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "User@Example.COM", "user@example.com"},
		{"trims whitespace", "  user@example.com  ", "user@example.com"},
		{"consolidates dots in local part", "first..last@example.com", "first.last@example.com"},
		{"strips leading and trailing dots", ".user.@example.com", "user@example.com"},
		{"leaves domain dots alone", "user@sub.example.com", "user@sub.example.com"},
		{"passes through non-address input", "not-an-email", "not-an-email"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sanitizer.NormalizeEmail(tt.input))
		})
	}
}

func TestCollapseSpaces(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Jane Doe", sanitizer.CollapseSpaces("  Jane   Doe "))
	assert.Equal(t, "", sanitizer.CollapseSpaces("   "))
	assert.Equal(t, "one two three", sanitizer.CollapseSpaces("one\ttwo\nthree"))
}
