package mockapi

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/jhillyerd/enmime"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/models"
)

// fromRaw builds the backend's JSON view of a raw message the way the
// capture server does: HTML body first, then plain text, inline parts with a
// Content-ID become inline images and the rest become attachments.
// The returned attachments have no ids yet.
func fromRaw(raw string) (models.Email, []attachment, error) {
	env, err := enmime.ReadEnvelope(strings.NewReader(raw))
	if err != nil {
		return models.Email{}, nil, fmt.Errorf("parse message: %w", err)
	}

	email := models.Email{
		FromAddress:  env.GetHeader("From"),
		ToAddress:    env.GetHeader("To"),
		Subject:      env.GetHeader("Subject"),
		MessageID:    strings.Trim(env.GetHeader("Message-ID"), "<>"),
		RawData:      raw,
		Contents:     []models.EmailContent{},
		Attachments:  []models.EmailAttachment{},
		InlineImages: []models.InlineImage{},
	}
	if env.HTML != "" {
		email.Contents = append(email.Contents, models.EmailContent{ContentType: "HTML", Data: env.HTML})
	}
	if env.Text != "" {
		email.Contents = append(email.Contents, models.EmailContent{ContentType: "PLAIN", Data: env.Text})
	}

	related := append(append([]*enmime.Part{}, env.Inlines...), env.OtherParts...)
	for _, part := range related {
		cid := strings.Trim(part.ContentID, "<>")
		if cid == "" {
			continue
		}
		email.InlineImages = append(email.InlineImages, models.InlineImage{
			ContentID:   cid,
			ContentType: part.ContentType,
			Data:        base64.StdEncoding.EncodeToString(part.Content),
		})
	}

	var parts []attachment
	for _, part := range env.Attachments {
		parts = append(parts, attachment{
			EmailAttachment: models.EmailAttachment{Filename: part.FileName},
			contentType:     part.ContentType,
			data:            part.Content,
		})
	}
	return email, parts, nil
}

// Message is a tiny builder for raw test messages
type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// Raw renders m as a single-part or multipart/alternative message
func (m Message) Raw() string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\n", m.From, m.To, m.Subject)
	switch {
	case m.HTML != "" && m.Text != "":
		b.WriteString("Content-Type: multipart/alternative; boundary=\"alt\"\r\n\r\n")
		fmt.Fprintf(&b, "--alt\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", m.Text)
		fmt.Fprintf(&b, "--alt\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", m.HTML)
		b.WriteString("--alt--\r\n")
	case m.HTML != "":
		fmt.Fprintf(&b, "Content-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", m.HTML)
	default:
		fmt.Fprintf(&b, "Content-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", m.Text)
	}
	return b.String()
}
