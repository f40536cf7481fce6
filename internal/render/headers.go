package render

import (
	"fmt"
	"strings"

	"github.com/jhillyerd/enmime"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/models"
)

// headerNames are shown above the raw source, in this order
var headerNames = []string{"Date", "From", "To", "Cc", "Subject", "Message-ID"}

// Header is one decoded message header
type Header struct {
	Name  string
	Value string
}

// Headers decodes the summary headers from the raw message. Absent headers
// are skipped.
func Headers(email *models.Email) ([]Header, error) {
	if email.RawData == "" {
		return nil, nil
	}
	env, err := enmime.ReadEnvelope(strings.NewReader(email.RawData))
	if err != nil {
		return nil, fmt.Errorf("parse raw message: %w", err)
	}
	out := make([]Header, 0, len(headerNames))
	for _, name := range headerNames {
		if v := env.GetHeader(name); v != "" {
			out = append(out, Header{Name: name, Value: v})
		}
	}
	return out, nil
}
