package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-resourceforms/pkg/focus"
	"github.com/goliatone/go-resourceforms/pkg/renderers/vanilla"
	"github.com/goliatone/go-resourceforms/pkg/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the form and matrix pages over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	client, err := a.client()
	if err != nil {
		return err
	}
	fetcher, err := a.fetcher(ctx, client)
	if err != nil {
		return err
	}
	formPage, err := a.formPage(fetcher)
	if err != nil {
		return err
	}
	matrixPage, err := a.matrixPage(client)
	if err != nil {
		return err
	}
	registry, html, err := a.renderers()
	if err != nil {
		return err
	}
	themeCfg, err := a.theme()
	if err != nil {
		return err
	}

	srv, err := server.New(formPage, matrixPage,
		server.WithLogger(a.logger.Named("http")),
		server.WithRenderers(registry),
		server.WithTheme(themeCfg),
		server.WithAssets(a.cfg.Server.AssetsPrefix, focus.AssetsFS(), vanilla.AssetsFS()),
	)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	if a.cfg.Templates.Watch {
		watcher, err := server.NewTemplateWatcher(a.cfg.Templates.Dir, html,
			server.WithWatchLogger(a.logger.Named("templates")))
		if err != nil {
			return err
		}
		g.Go(func() error { return watcher.Run(ctx) })
	}
	g.Go(func() error {
		return srv.Run(ctx, a.cfg.Server.Addr, a.cfg.Server.ShutdownTimeout)
	})

	a.logger.Info("serving", zap.String("api", a.cfg.API.BaseURL))
	return g.Wait()
}
