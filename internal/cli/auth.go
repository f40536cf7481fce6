package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/models"
)

func (c *LoginCmd) Run(ctx *Context) error {
	inbox, err := ctx.backend()
	if err != nil {
		return err
	}

	in := bufio.NewReader(ctx.Stdin)
	username := strings.TrimSpace(c.Username)
	if username == "" {
		ctx.Formatter.Printf("Username: ")
		username, err = readLine(in)
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
		username = strings.TrimSpace(username)
	}
	if username == "" {
		return errors.New("username is required")
	}

	password := c.Password
	if password == "" {
		ctx.Formatter.Printf("Password: ")
		password, err = readPassword(ctx.Stdin, in)
		ctx.Formatter.Printf("\n")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}
	if password == "" {
		return errors.New("password is required")
	}

	creds := models.Credentials{Username: username, Password: password}
	if err := inbox.Login(context.Background(), creds); err != nil {
		return err
	}
	ctx.Store.SetCredentials(creds)

	if err := ctx.Keyring.Save(creds); err != nil {
		return err
	}
	ctx.Formatter.PrintSuccess(fmt.Sprintf("Logged in as %s", username))
	return nil
}

func (c *LogoutCmd) Run(ctx *Context) error {
	if _, err := ctx.backend(); err != nil {
		return err
	}
	ctx.Store.ClearCredentials()
	if err := ctx.Keyring.Delete(); err != nil {
		return err
	}
	ctx.Formatter.PrintSuccess("Logged out")
	return nil
}

// readPassword reads without echo from a terminal, or a plain line otherwise
func readPassword(stdin io.Reader, in *bufio.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return readLine(in)
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
