package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{"single digit", "7", nil},
		{"large id", "9223372036854775807", nil},
		{"surrounding whitespace", " 42 ", nil},

		{"empty", "", ErrEmptyInput},
		{"whitespace only", "  ", ErrEmptyInput},
		{"negative", "-1", ErrInvalidID},
		{"letters", "abc", ErrInvalidID},
		{"path traversal", "../1", ErrInvalidID},
		{"too long", strings.Repeat("1", 20), ErrInputTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{"simple address", "test@example.com", nil},
		{"subdomain", "user@mail.example.com", nil},
		{"plus tag", "user+tag@example.com", nil},
		{"whitespace trimmed", "  test@example.com  ", nil},

		{"empty string", "", ErrEmptyInput},
		{"missing @", "testexample.com", ErrInvalidEmail},
		{"missing domain", "test@", ErrInvalidEmail},
		{"display name", "Alice <alice@example.com>", ErrInvalidEmail},
		{"angle brackets only", "<alice@example.com>", ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail_TooLong(t *testing.T) {
	err := ValidateEmail(strings.Repeat("a", 250) + "@example.com")
	assert.ErrorIs(t, err, ErrInputTooLong)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"normal filename", "invoice.pdf", "invoice.pdf"},
		{"with spaces", "team photo.jpg", "team photo.jpg"},
		{"path traversal", "../../.ssh/id_rsa", "____.ssh_id_rsa"},
		{"backslash", "c:\\temp\\x.txt", "c:_temp_x.txt"},
		{"control chars", "re\x00port\r\n.csv", "report.csv"},
		{"empty", "", "attachment"},
		{"dots only", "..", "attachment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestSanitizeFilename_LongFilename(t *testing.T) {
	result := SanitizeFilename(strings.Repeat("b", 300) + ".txt")
	assert.Equal(t, 255, len(result))
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxLength int
		expected  string
	}{
		{"normal", "alice", 0, "alice"},
		{"control chars", "ali\x00ce", 0, "alice"},
		{"trim whitespace", "  alice\n", 0, "alice"},
		{"max length", "alice@example.com", 5, "alice"},
		{"empty", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeString(tt.input, tt.maxLength))
		})
	}
}
