// Package render turns captured emails into safe, displayable content.
package render

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/models"
)

// Tab is one selectable representation of an email
type Tab struct {
	Name  string
	Label string
}

var (
	tabHTML  = Tab{Name: models.ContentTypeHTML, Label: "HTML"}
	tabPlain = Tab{Name: models.ContentTypePlain, Label: "Plain"}
	tabRaw   = Tab{Name: models.ContentTypeRaw, Label: "Raw"}
)

// cidImage matches an img tag whose src is a cid: reference in single or
// double quotes
var cidImage = regexp.MustCompile(`<img[^>]+src=(?:"cid:([^">]+)"|'cid:([^'>]+)')`)

// policy is safe for concurrent use once built
var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowURLSchemes("cid")
	p.AllowDataURIImages()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// DefaultRepresentation is the lower-cased type of the first content
// entry, or raw when there is none
func DefaultRepresentation(email *models.Email) string {
	if len(email.Contents) == 0 {
		return models.ContentTypeRaw
	}
	return strings.ToLower(email.Contents[0].ContentType)
}

// Tabs lists the representations with data. Raw is always present.
func Tabs(email *models.Email) []Tab {
	tabs := make([]Tab, 0, 3)
	if _, ok := email.Content(models.ContentTypeHTML); ok {
		tabs = append(tabs, tabHTML)
	}
	if _, ok := email.Content(models.ContentTypePlain); ok {
		tabs = append(tabs, tabPlain)
	}
	return append(tabs, tabRaw)
}

// ActiveTab returns requested when email offers it, else the default
func ActiveTab(email *models.Email, requested string) string {
	requested = strings.ToLower(requested)
	for _, t := range Tabs(email) {
		if t.Name == requested {
			return requested
		}
	}
	def := DefaultRepresentation(email)
	for _, t := range Tabs(email) {
		if t.Name == def {
			return def
		}
	}
	return models.ContentTypeRaw
}

// HTML returns the sanitised HTML body with inline images resolved.
// It returns "" when the email has no HTML content.
func HTML(email *models.Email) string {
	c, ok := email.Content(models.ContentTypeHTML)
	if !ok {
		return ""
	}
	return Sanitize(ResolveInlineImages(c.Data, email.InlineImages))
}

// ResolveInlineImages replaces cid: references with data URIs of the
// matching inline image. Unknown references are left as they are.
func ResolveInlineImages(html string, images []models.InlineImage) string {
	if len(images) == 0 {
		return html
	}
	return cidImage.ReplaceAllStringFunc(html, func(tag string) string {
		m := cidImage.FindStringSubmatch(tag)
		cid := m[1]
		if cid == "" {
			cid = m[2]
		}
		for _, img := range images {
			if img.ContentID == cid {
				return strings.Replace(tag, "cid:"+cid, img.DataURI(), 1)
			}
		}
		return tag
	})
}

// Sanitize strips scripts, event handlers and other active content
func Sanitize(html string) string {
	return policy.Sanitize(html)
}

// PlainLines normalises line endings and splits data into lines. Each line
// is meant to be rendered as its own escaped block.
func PlainLines(data string) []string {
	return strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n")
}

// Plain returns the plain text body split into lines
func Plain(email *models.Email) []string {
	c, ok := email.Content(models.ContentTypePlain)
	if !ok {
		return nil
	}
	return PlainLines(c.Data)
}

// Raw returns the unmodified message source
func Raw(email *models.Email) string {
	return email.RawData
}
