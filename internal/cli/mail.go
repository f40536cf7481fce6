package cli

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"strings"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/models"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/output"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/pager"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/render"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/validator"
)

const receivedLayout = "2006-01-02 15:04:05"

func (c *ListCmd) Run(ctx *Context) error {
	inbox, err := ctx.backend()
	if err != nil {
		return err
	}

	size := c.Size
	switch {
	case size == 0:
		size = pager.DefaultSize
	case size > pager.MaxSize:
		size = pager.MaxSize
	}

	var page *models.EmailPage
	if c.From != "" {
		from := strings.TrimSpace(c.From)
		if err := validator.ValidateEmail(from); err != nil {
			return fmt.Errorf("--from: %w", err)
		}
		page, err = inbox.SearchEmails(context.Background(), models.SearchRequest{
			Filters: []models.SearchFilter{{
				Key:       "fromAddress",
				Operator:  models.OperatorEqual,
				FieldType: models.FieldTypeString,
				Value:     from,
			}},
			Page: int(c.Page),
			Size: int(size),
		})
		if err != nil {
			return err
		}
	} else {
		page, err = inbox.ListEmails(context.Background(), c.Page, size)
		if err != nil {
			return err
		}
	}

	if ctx.Formatter.JSON {
		return ctx.Formatter.Success(page)
	}

	f := ctx.Formatter
	if page.Empty() {
		f.Printf("%s\n", f.MutedText("No emails"))
		return nil
	}
	table := f.NewTable("ID", "FROM", "TO", "SUBJECT", "RECEIVED")
	for i := range page.Content {
		e := &page.Content[i]
		table.AddRow(
			e.IDString(),
			output.Truncate(e.FromAddress, 30),
			output.Truncate(e.ToAddress, 30),
			output.Truncate(e.Subject, 50),
			e.ReceivedOn.Time.Format(receivedLayout),
		)
	}
	table.Flush()
	if !f.Quiet {
		f.Printf("\nPage %d of %d (%d emails)\n", page.Number+1, page.TotalPages, page.TotalElements)
	}
	return nil
}

func (c *ShowCmd) Run(ctx *Context) error {
	inbox, err := ctx.backend()
	if err != nil {
		return err
	}
	id := strings.TrimSpace(c.ID)
	if err := validator.ValidateID(id); err != nil {
		return fmt.Errorf("invalid id %q: %w", id, err)
	}
	email, err := inbox.GetEmail(context.Background(), id)
	if err != nil {
		return err
	}

	if ctx.Formatter.JSON {
		return ctx.Formatter.Success(email)
	}

	f := ctx.Formatter
	f.Printf("%s %s\n", f.Bold("From:"), email.FromAddress)
	f.Printf("%s %s\n", f.Bold("To:"), email.ToAddress)
	f.Printf("%s %s\n", f.Bold("Subject:"), email.Subject)
	f.Printf("%s %s\n", f.Bold("Received:"), email.ReceivedOn.Time.Format(receivedLayout))
	for _, a := range email.Attachments {
		f.Printf("%s %s %s\n", f.Bold("Attachment:"), f.InfoText(fmt.Sprintf("[%d]", a.ID)), a.Filename)
	}
	f.Printf("\n")

	switch c.Format {
	case models.ContentTypeHTML:
		if _, ok := email.Content(models.ContentTypeHTML); !ok {
			return fmt.Errorf("email %s has no html body", id)
		}
		f.Printf("%s\n", render.HTML(email))
	case models.ContentTypeRaw:
		f.Printf("%s\n", render.Raw(email))
	default:
		for _, line := range render.Plain(email) {
			f.Printf("%s\n", line)
		}
	}
	return nil
}

func (c *DeleteCmd) Run(ctx *Context) error {
	inbox, err := ctx.backend()
	if err != nil {
		return err
	}
	id := strings.TrimSpace(c.ID)
	if err := validator.ValidateID(id); err != nil {
		return fmt.Errorf("invalid id %q: %w", id, err)
	}
	if _, err := inbox.DeleteEmail(context.Background(), id); err != nil {
		return err
	}
	ctx.Formatter.PrintSuccess(fmt.Sprintf("Email %s deleted", id))
	return nil
}

func (c *DeleteAllCmd) Run(ctx *Context) error {
	inbox, err := ctx.backend()
	if err != nil {
		return err
	}
	if !c.Yes {
		return fmt.Errorf("refusing to delete every email without --yes")
	}
	if _, err := inbox.DeleteAllEmails(context.Background()); err != nil {
		return err
	}
	ctx.Formatter.PrintSuccess("All emails deleted")
	return nil
}

func (c *AttachmentCmd) Run(ctx *Context) error {
	inbox, err := ctx.backend()
	if err != nil {
		return err
	}
	emailID := strings.TrimSpace(c.EmailID)
	if err := validator.ValidateID(emailID); err != nil {
		return fmt.Errorf("invalid id %q: %w", emailID, err)
	}
	attachmentID := strings.TrimSpace(c.AttachmentID)
	if err := validator.ValidateID(attachmentID); err != nil {
		return fmt.Errorf("invalid id %q: %w", attachmentID, err)
	}

	att, err := inbox.OpenAttachment(context.Background(), emailID, attachmentID)
	if err != nil {
		return err
	}
	defer att.Body.Close()

	if c.Output == "-" {
		_, err := io.Copy(ctx.Formatter.Writer, att.Body)
		return err
	}

	path := c.Output
	if path == "" {
		path = validator.SanitizeFilename(dispositionFilename(att.Disposition))
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	n, err := io.Copy(file, att.Body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	if ctx.Formatter.JSON {
		return ctx.Formatter.Success(map[string]interface{}{
			"path":  path,
			"bytes": n,
		})
	}
	ctx.Formatter.PrintSuccess(fmt.Sprintf("Saved %s (%d bytes)", path, n))
	return nil
}

// dispositionFilename extracts the filename parameter of a
// Content-Disposition header
func dispositionFilename(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["filename"])
}
