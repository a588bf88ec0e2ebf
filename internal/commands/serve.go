package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/sourcegraph/conc/pool"

	"buildboard/internal/config"
	"buildboard/internal/exitcode"
	"buildboard/internal/server"
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd runs the JSON API and reloads the roster when its file changes.
type ServeCmd struct {
	addr string
}

func (c *ServeCmd) Name() string      { return "serve" }
func (c *ServeCmd) Aliases() []string { return nil }
func (c *ServeCmd) Synopsis() string  { return "Serve the JSON API" }
func (c *ServeCmd) Usage() string     { return "buildboard serve [--addr <host:port>]" }
func (c *ServeCmd) NeedsStore() bool  { return true }
func (c *ServeCmd) LongRunning() bool { return true }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	c.addr = ""
	fs.StringVar(&c.addr, "addr", "", "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, ws *Workspace, args []string, out, errOut io.Writer) int {
	addr := c.addr
	if addr == "" {
		addr = cfg.Env.HTTPAddr()
	}
	logger := ws.logger()
	srv := server.New(ws.Tasks(), ws.Roster, server.WithLogger(logger), server.WithClock(ws.now))

	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		return ws.Roster.Watch(ctx, logger, func() {
			logger.InfoContext(ctx, "roster reloaded", "path", ws.Roster.Path())
		})
	})
	p.Go(func(ctx context.Context) error {
		return srv.ListenAndServe(ctx, addr)
	})
	if err := p.Wait(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
