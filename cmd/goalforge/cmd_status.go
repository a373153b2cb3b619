package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/PabloGalante/goal-forge/internal/adapters/http"
	"github.com/PabloGalante/goal-forge/internal/liveness"
)

// flipPrinter reports readiness only when it changes.
type flipPrinter struct {
	mu    sync.Mutex
	seen  bool
	ready bool
	print func(ready bool)
}

func (p *flipPrinter) publish(ready bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seen && p.ready == ready {
		return
	}
	p.seen, p.ready = true, ready
	p.print(ready)
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Watch whether the server is reachable until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := cmd.OutOrStdout()
			flips := &flipPrinter{print: func(ready bool) {
				if ready {
					fmt.Fprintln(w, c.now().Format(time.TimeOnly), "server ready")
				} else {
					fmt.Fprintln(w, c.now().Format(time.TimeOnly), "server unreachable, retrying")
				}
			}}

			err := c.app.monitor(liveness.WithPublisher(flips.publish)).Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve goal status and effort logging over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			mon := c.app.monitor()
			mon.Start(ctx)
			defer mon.Stop()

			srv := &http.Server{
				Addr:              ":" + c.app.cfg.Port,
				Handler:           httpadapter.NewServer(c.app.goals, c.app.effort, mon),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				c.app.log.Info("status server listening", "addr", srv.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
