// Package validator checks and cleans user input before it reaches the
// backend or the local filesystem.
package validator

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Validation errors
var (
	ErrEmptyInput   = errors.New("input cannot be empty")
	ErrInputTooLong = errors.New("input exceeds maximum length")
	ErrInvalidID    = errors.New("id must be a non-negative integer")
	ErrInvalidEmail = errors.New("invalid email format")
)

const (
	// maxIDLength fits any int64
	maxIDLength = 19
	// maxEmailLength is the RFC 5321 path limit
	maxEmailLength = 254
	// maxFilenameLength is the common filesystem limit
	maxFilenameLength = 255
)

// ValidateID checks an email or attachment id as typed on the command line
func ValidateID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrEmptyInput
	}
	if len(id) > maxIDLength {
		return ErrInputTooLong
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return ErrInvalidID
		}
	}
	return nil
}

// ValidateEmail checks a bare address used as an exact search filter.
// Display names are rejected.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmptyInput
	}
	if utf8.RuneCountInString(email) > maxEmailLength {
		return ErrInputTooLong
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

// SanitizeFilename turns an attachment name into a safe local file name.
// Path separators and traversal sequences are replaced, control
// characters dropped.
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")
	filename = strings.ReplaceAll(filename, "..", "_")
	filename = strings.TrimSpace(stripControl(filename))

	if utf8.RuneCountInString(filename) > maxFilenameLength {
		filename = string([]rune(filename)[:maxFilenameLength])
	}

	if filename == "" || filename == "." || filename == "_" {
		return "attachment"
	}
	return filename
}

// SanitizeString drops control characters, trims whitespace and
// enforces maxLength when positive
func SanitizeString(input string, maxLength int) string {
	input = strings.TrimSpace(stripControl(input))
	if maxLength > 0 && utf8.RuneCountInString(input) > maxLength {
		input = string([]rune(input)[:maxLength])
	}
	return input
}

// stripControl removes ASCII control characters (0-31 and 127)
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}
