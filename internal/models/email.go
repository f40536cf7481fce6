package models

import (
	"mime"
	"strconv"
	"strings"
)

// Content type names used by the content renderer
const (
	ContentTypeHTML  = "html"
	ContentTypePlain = "plain"
	ContentTypeRaw   = "raw"
)

// Email represents a captured email as served by the backend.
// Emails are immutable on the client; they are only ever replaced or removed.
type Email struct {
	ID           int64             `json:"id"`
	FromAddress  string            `json:"fromAddress"`
	ToAddress    string            `json:"toAddress"`
	Subject      string            `json:"subject"`
	ReceivedOn   Timestamp         `json:"receivedOn"`
	RawData      string            `json:"rawData"`
	MessageID    string            `json:"messageId,omitempty"`
	Contents     []EmailContent    `json:"contents"`
	Attachments  []EmailAttachment `json:"attachments"`
	InlineImages []InlineImage     `json:"inlineImages"`
}

// EmailContent is one representation of the message body
type EmailContent struct {
	ContentType string `json:"contentType"`
	Data        string `json:"data"`
}

// EmailAttachment references an attachment downloadable from the backend
type EmailAttachment struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
}

// InlineImage is a MIME part referenced from the HTML body by Content-ID.
// Data is base64 encoded.
type InlineImage struct {
	ContentID   string `json:"contentId"`
	ContentType string `json:"contentType"`
	Data        string `json:"data"`
}

// IDString returns the id in the form used by cache keys and URLs
func (e *Email) IDString() string {
	return strconv.FormatInt(e.ID, 10)
}

// Content returns the first content entry whose type matches contentType
// case-insensitively
func (e *Email) Content(contentType string) (EmailContent, bool) {
	for _, c := range e.Contents {
		if strings.EqualFold(c.ContentType, contentType) {
			return c, true
		}
	}
	return EmailContent{}, false
}

// InlineImage looks up an inline image by its exact Content-ID
func (e *Email) InlineImage(contentID string) (InlineImage, bool) {
	for _, img := range e.InlineImages {
		if img.ContentID == contentID {
			return img, true
		}
	}
	return InlineImage{}, false
}

// MediaType is the lower-cased bare media type of ContentType. Header
// parameters such as name= are dropped.
func (i InlineImage) MediaType() string {
	mediaType, _, err := mime.ParseMediaType(i.ContentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(i.ContentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// DataURI returns the image as a data URI usable in an img src attribute
func (i InlineImage) DataURI() string {
	return "data:" + i.MediaType() + ";base64," + strings.Join(strings.Fields(i.Data), "")
}

// DeleteResult is the outcome of a delete mutation
type DeleteResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
}
