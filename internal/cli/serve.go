package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/jadwal/internal/server"
)

type ServeCmd struct {
	Addr string `help:"Listen address. Overrides JADWAL_SERVER_ADDR."`
}

func (c *ServeCmd) Run(ctx *Context) error {
	p, err := ctx.Planner()
	if err != nil {
		return err
	}

	addr := ctx.Config.ServerAddr
	if c.Addr != "" {
		addr = c.Addr
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx.Printf("Handoff server listening on http://%s/api/v1 (Ctrl+C to stop)\n", addr)
	return server.New(p, ctx.Config).Run(sigCtx, addr)
}
