package main

import (
	"context"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-resourceforms/pkg/api"
	"github.com/goliatone/go-resourceforms/pkg/loader"
	"github.com/goliatone/go-resourceforms/pkg/page/form"
	"github.com/goliatone/go-resourceforms/pkg/page/matrix"
	"github.com/goliatone/go-resourceforms/pkg/render"
	"github.com/goliatone/go-resourceforms/pkg/renderers/jsonview"
	"github.com/goliatone/go-resourceforms/pkg/renderers/vanilla"
	"github.com/goliatone/go-resourceforms/pkg/themes"
)

func (a *app) client() (*api.Client, error) {
	options := []api.Option{
		api.WithTimeout(a.cfg.API.Timeout),
		api.WithLogger(a.logger.Named("api")),
	}
	for key, value := range a.cfg.API.Headers {
		options = append(options, api.WithHeader(key, value))
	}
	return api.New(a.cfg.API.BaseURL, options...)
}

// fetcher reads schemas from the configured OpenAPI document when one is set,
// and from the metadata endpoint otherwise.
func (a *app) fetcher(ctx context.Context, client *api.Client) (loader.Fetcher, error) {
	if a.cfg.API.OpenAPI == "" {
		return client, nil
	}
	document, err := client.Document(ctx, a.cfg.API.OpenAPI)
	if err != nil {
		return nil, err
	}
	return api.NewOpenAPIFetcher(ctx, client, document)
}

func (a *app) formPage(fetcher loader.Fetcher) (*form.Page, error) {
	builder := render.NewBuilder(render.WithWidgets(a.cfg.WidgetRegistry()))
	return form.New(fetcher,
		form.WithLogger(a.logger.Named("form")),
		form.WithLayout(a.cfg.Layout),
		form.WithBuilder(builder),
		form.WithLoaderOptions(loader.WithConcurrency(a.cfg.API.Concurrency)),
		form.WithOnSettled(func(snapshot loader.Snapshot) {
			if err := snapshot.Err(); err != nil {
				a.logger.Warn("resource types failed to load", zap.Error(err))
			}
		}),
	)
}

func (a *app) matrixPage(client *api.Client) (*matrix.Page, error) {
	return matrix.New(client, matrix.DefaultAddFunc, matrix.WithLogger(a.logger.Named("matrix")))
}

// renderers registers the HTML renderer first so it is the default format.
func (a *app) renderers() (*render.Registry, *vanilla.Renderer, error) {
	var options []vanilla.Option
	if a.cfg.Templates.Dir != "" {
		options = append(options, vanilla.WithTemplatesDir(a.cfg.Templates.Dir))
	}
	html, err := vanilla.New(options...)
	if err != nil {
		return nil, nil, err
	}
	registry := render.NewRegistry()
	if err := registry.Register(html, "html"); err != nil {
		return nil, nil, err
	}
	if err := registry.Register(jsonview.New(jsonview.WithIndent("  "))); err != nil {
		return nil, nil, err
	}
	return registry, html, nil
}

// theme resolves the configured manifest. No manifests means no theme.
func (a *app) theme() (*theme.RendererConfig, error) {
	if len(a.cfg.Theme.Manifests) == 0 {
		return nil, nil
	}
	selector := themes.NewSelector(a.cfg.Theme.Name, a.cfg.Theme.Variant)
	for _, filename := range a.cfg.Theme.Manifests {
		manifest, err := themes.LoadManifest(filename)
		if err != nil {
			return nil, err
		}
		if err := selector.Register(manifest); err != nil {
			return nil, err
		}
	}
	selection, err := selector.Select(a.cfg.Theme.Name, a.cfg.Theme.Variant)
	if err != nil {
		return nil, err
	}
	a.logger.Info("theme selected",
		zap.String("theme", selection.Theme),
		zap.String("variant", selection.Variant),
	)
	return themes.RendererConfig(selection, themes.DefaultFallbacks()), nil
}

func (a *app) renderOptions(standalone bool) (render.RenderOptions, error) {
	cfg, err := a.theme()
	if err != nil {
		return render.RenderOptions{}, err
	}
	return render.RenderOptions{
		Standalone:   standalone,
		AssetsPrefix: a.cfg.Server.AssetsPrefix,
		Theme:        cfg,
	}, nil
}
