package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/live"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/output"
)

// arrivalBuffer bounds notifications waiting to be printed
const arrivalBuffer = 64

func (c *WatchCmd) Run(ctx *Context) error {
	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return c.watch(runCtx, ctx)
}

func (c *WatchCmd) watch(runCtx context.Context, ctx *Context) error {
	inbox, err := ctx.backend()
	if err != nil {
		return err
	}

	meta, err := inbox.GetMetaData(runCtx)
	if err != nil {
		return err
	}
	if meta.AuthenticationEnabled && !ctx.Store.State().IsAuthenticated {
		return errors.New("backend requires authentication, run login first")
	}

	manager := live.NewManager(live.ManagerOptions{
		Source:         inbox,
		Auth:           ctx.Store,
		HTTPClient:     &http.Client{},
		ReconnectDelay: ctx.Config.ReconnectDelay,
		Logger:         ctx.Logger.Slog(),
	})

	ids := make(chan string, arrivalBuffer)
	unsubscribe := manager.Subscribe(func(id string) {
		select {
		case ids <- id:
		default:
			ctx.Logger.Slog().Warn("dropping arrival notification", "id", id)
		}
	})
	defer unsubscribe()

	done := make(chan error, 1)
	go func() { done <- manager.Run(runCtx) }()

	f := ctx.Formatter
	if !f.Quiet {
		f.Printf("%s\n", f.MutedText("Watching "+ctx.Config.BackendURL+" for new emails (Ctrl+C to stop)"))
	}

	for {
		select {
		case err := <-done:
			return err
		case id := <-ids:
			c.printArrival(runCtx, ctx, id)
		}
	}
}

func (c *WatchCmd) printArrival(runCtx context.Context, ctx *Context, id string) {
	f := ctx.Formatter
	email, err := ctx.Client.GetEmail(runCtx, id)
	if err != nil {
		ctx.Logger.Slog().Warn("could not load new email", "id", id, "error", err)
		if f.JSON {
			f.PrintJSON(map[string]interface{}{"event": "email_received", "id": id})
			return
		}
		f.Printf("%s %s\n", f.InfoText("#"+id), f.MutedText("(unavailable)"))
		return
	}

	if f.JSON {
		f.PrintJSON(map[string]interface{}{"event": "email_received", "id": id, "email": email})
		return
	}
	f.Printf("%s %s  %s -> %s  %s\n",
		f.MutedText(email.ReceivedOn.Time.Format(receivedLayout)),
		f.InfoText("#"+id),
		email.FromAddress,
		email.ToAddress,
		f.Bold(output.Truncate(email.Subject, 60)),
	)
}
